package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vincentvila/portfolio-backend/config"
	httpapi "github.com/vincentvila/portfolio-backend/internal/api/http"
	"github.com/vincentvila/portfolio-backend/internal/api/http/middleware"
	contacthttp "github.com/vincentvila/portfolio-backend/internal/contact/http"
	contactservice "github.com/vincentvila/portfolio-backend/internal/contact/service"
	"github.com/vincentvila/portfolio-backend/internal/multipart"
	projectshttp "github.com/vincentvila/portfolio-backend/internal/projects/http"
	projectsservice "github.com/vincentvila/portfolio-backend/internal/projects/service"
	"github.com/vincentvila/portfolio-backend/internal/store"
	"github.com/vincentvila/portfolio-backend/internal/store/github"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	Log         *zap.Logger
	// Store overrides the GitHub-backed content store, for tests and
	// local tooling.
	Store store.ContentStore
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RequestID(dep.Log))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version)
	healthHandler.RegisterRoutes(r)

	contentStore := dep.Store
	if contentStore == nil {
		contentStore = github.NewClient(github.Config{
			Owner:  dep.Cfg.Store.Owner,
			Repo:   dep.Cfg.Store.Repo,
			Token:  dep.Cfg.Store.Token,
			Branch: dep.Cfg.Store.Branch,
		})
	}

	api := r.Group("/api")

	uploadSvc := projectsservice.NewUploadService(contentStore, dep.Cfg.Store.Root, dep.Log)
	limits := multipart.Limits{
		MaxFileSize: dep.Cfg.Upload.MaxFileSize,
		MaxFiles:    dep.Cfg.Upload.MaxFiles,
	}
	projectshttp.NewHandler(uploadSvc, limits, dep.Log).Register(api)

	mailer := contactservice.NewMailer(dep.Cfg.Mail.ResendAPIKey, dep.Cfg.Mail.ReceiverEmail)
	contacthttp.NewHandler(mailer, dep.Log).Register(api)

	return r
}
