package handler

import (
	"log/slog"

	"github.com/colabsdev/colabs-be/internal/api/service"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger             *slog.Logger
	JobService         *service.JobService
	ApplicationService *service.ApplicationService
	PaymentService     *service.PaymentService
}

// JobHandler handles job lifecycle HTTP requests
type JobHandler struct {
	logger *slog.Logger
	jobs   *service.JobService
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		jobs:   deps.JobService,
	}
}

// ApplicationHandler handles job application HTTP requests
type ApplicationHandler struct {
	logger       *slog.Logger
	applications *service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger:       deps.Logger,
		applications: deps.ApplicationService,
	}
}

// PaymentHandler handles payment settlement HTTP requests
type PaymentHandler struct {
	logger   *slog.Logger
	payments *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler instance
func NewPaymentHandler(deps *Dependencies) *PaymentHandler {
	return &PaymentHandler{
		logger:   deps.Logger,
		payments: deps.PaymentService,
	}
}
