// The indexer rebuilds public/projects/index.json from the on-disk project
// tree. Run it once before a deploy, or with -schedule to keep rebuilding
// on a cron expression.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vincentvila/portfolio-backend/internal/indexer"
)

func main() {
	root := flag.String("root", "public/projects", "projects directory to scan")
	out := flag.String("out", "", "output file (default <root>/index.json)")
	backfill := flag.Bool("set-thumbnails", false, "write a default thumbnailIndex into metadata files missing one")
	schedule := flag.String("schedule", "", "cron expression; when set, keep rebuilding on this schedule")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	outputPath := *out
	if outputPath == "" {
		outputPath = filepath.Join(*root, "index.json")
	}

	builder := indexer.NewBuilder(logger)

	run := func() {
		if *backfill {
			updated, err := builder.BackfillThumbnails(*root)
			if err != nil {
				logger.Error("thumbnail backfill failed", zap.Error(err))
				return
			}
			if updated > 0 {
				logger.Info("backfilled thumbnails", zap.Int("updated", updated))
			}
		}

		projects, err := builder.Build(*root)
		if err != nil {
			logger.Error("index build failed", zap.Error(err))
			return
		}

		payload, err := json.MarshalIndent(projects, "", "  ")
		if err != nil {
			logger.Error("index encode failed", zap.Error(err))
			return
		}
		if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
			logger.Error("index write failed", zap.Error(err))
			return
		}
		logger.Info("index generated",
			zap.Int("projects", len(projects)),
			zap.String("output", outputPath))
	}

	if *schedule == "" {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, run); err != nil {
		logger.Fatal("invalid schedule", zap.String("schedule", *schedule), zap.Error(err))
	}
	logger.Info("indexer scheduler started", zap.String("schedule", *schedule))
	run()
	c.Run()
}
