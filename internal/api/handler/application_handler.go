package handler

import (
	"net/http"

	"github.com/colabsdev/colabs-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// Apply handles POST /api/v1/jobs/apply/:jobId
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dto.ApplyJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	app, err := h.applications.Submit(c.Request.Context(), ActorID(c), c.Param("jobId"), req.CoverLetter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Your proposal has been sent and is pending for approval",
		"application": toApplicationDTO(app),
	})
}

// Decide handles PUT /api/v1/jobs/applications/:applicationId
func (h *ApplicationHandler) Decide(c *gin.Context) {
	var req dto.DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	app, err := h.applications.Decide(c.Request.Context(), ActorID(c), c.Param("applicationId"), req.Action)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Job application " + app.Status + ".",
		"application": toApplicationDTO(app),
	})
}

// ListForJob handles GET /api/v1/jobs/applications/:jobId
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	apps, err := h.applications.ListForJob(c.Request.Context(), ActorID(c), c.Param("jobId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = toApplicationDTO(&apps[i])
	}

	c.JSON(http.StatusOK, dto.ListApplicationsResponse{Applications: out})
}

// ListOwn handles GET /api/v1/jobs/applications
func (h *ApplicationHandler) ListOwn(c *gin.Context) {
	apps, err := h.applications.ListOwn(c.Request.Context(), ActorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = toApplicationDTO(&apps[i])
	}

	c.JSON(http.StatusOK, dto.ListApplicationsResponse{Applications: out})
}
