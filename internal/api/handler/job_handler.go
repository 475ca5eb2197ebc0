package handler

import (
	"log/slog"
	"net/http"

	"github.com/colabsdev/colabs-be/internal/api/dto"
	"github.com/colabsdev/colabs-be/internal/api/service"
	"github.com/gin-gonic/gin"
)

// PostJob handles POST /api/v1/jobs
func (h *JobHandler) PostJob(c *gin.Context) {
	var req dto.PostJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.PostJob(c.Request.Context(), ActorID(c), service.PostJobParams{
		Title:        req.Title,
		Description:  req.Description,
		Earnings:     req.Earnings,
		Requirements: req.Requirements,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "The " + job.Title + " job is successfully posted.",
		"job":     toJobDTO(job),
	})
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	jobs, total, err := h.jobs.ListAvailable(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		out[i] = toJobDTO(&jobs[i])
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:  out,
		Total: total,
	})
}

// MarkReady handles PUT /api/v1/jobs/ready/:jobId
func (h *JobHandler) MarkReady(c *gin.Context) {
	var req dto.JobReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	_, err := h.jobs.MarkReady(c.Request.Context(), c.Param("jobId"), req.ProjectShas)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "The job is ready to be viewed by the owner.",
	})
}

// CompleteJob handles PUT /api/v1/jobs/complete/:jobId
func (h *JobHandler) CompleteJob(c *gin.Context) {
	job, err := h.jobs.Complete(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": job.Title + " completed successfully.",
	})
}

// AddTeamMembers handles PUT /api/v1/jobs/team/:jobId
func (h *JobHandler) AddTeamMembers(c *gin.Context) {
	var req dto.AddTeamMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	_, err := h.jobs.AddTeamMembers(c.Request.Context(), ActorID(c), c.Param("jobId"), req.Team)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "You have added new members to the job.",
	})
}

// DeleteJob handles DELETE /api/v1/jobs/delete/:jobId
func (h *JobHandler) DeleteJob(c *gin.Context) {
	job, err := h.jobs.Delete(c.Request.Context(), ActorID(c), c.Param("jobId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": job.Title + " is successfully deleted.",
	})
}
