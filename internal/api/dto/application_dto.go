package dto

type ApplyJobRequest struct {
	CoverLetter string `json:"coverLetter" binding:"required"`
}

type DecideApplicationRequest struct {
	Action string `json:"action" binding:"required"`
}

type ApplicationDTO struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	WorkerID      string `json:"workerId"`
	CoverLetter   string `json:"coverLetter"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

type ListApplicationsResponse struct {
	Applications []ApplicationDTO `json:"applications"`
}
