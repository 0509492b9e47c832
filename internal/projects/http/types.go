package http

import "github.com/vincentvila/portfolio-backend/internal/projects/domain"

type uploadResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Project *domain.Project `json:"project"`
}

type errorResponse struct {
	Error string `json:"error"`
}
