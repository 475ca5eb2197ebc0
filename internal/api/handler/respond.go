package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/api/dto"
	"github.com/colabsdev/colabs-be/internal/api/model"
	"github.com/gin-gonic/gin"
)

// actorIDKey is where the actor middleware stores the resolved caller id.
const actorIDKey = "actorID"

// ActorID returns the authenticated caller's id from the request context.
func ActorID(c *gin.Context) string {
	return c.GetString(actorIDKey)
}

// respondError maps a domain error kind onto an HTTP status and writes the
// JSON error body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	c.JSON(status, gin.H{"error": domain.MessageOf(err)})
}

func toJobDTO(job *model.Job) dto.JobDTO {
	return dto.JobDTO{
		JobID:           job.JobID,
		OwnerID:         job.OwnerID,
		Title:           job.Title,
		Description:     job.Description,
		Earnings:        job.Earnings,
		Requirements:    job.Requirements,
		Workers:         job.Workers,
		PendingWorkers:  job.PendingWorkers,
		FilesReady:      job.FilesReady,
		Status:          job.Status,
		PaymentVerified: job.PaymentVerified,
		CreatedAt:       job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       job.UpdatedAt.Format(time.RFC3339),
	}
}

func toApplicationDTO(app *model.JobApplication) dto.ApplicationDTO {
	return dto.ApplicationDTO{
		ApplicationID: app.ApplicationID,
		JobID:         app.JobID,
		WorkerID:      app.WorkerID,
		CoverLetter:   app.CoverLetter,
		Status:        app.Status,
		CreatedAt:     app.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentDTO(p *model.Payment) dto.PaymentDTO {
	return dto.PaymentDTO{
		PaymentID:    p.PaymentID,
		TxRef:        p.TxRef,
		JobID:        p.JobID,
		FreelancerID: p.FreelancerID,
		EmployerID:   p.EmployerID,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
