package dto

type PostJobRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Earnings     int64    `json:"earnings" binding:"required,gt=0"`
	Requirements []string `json:"requirements"`
}

type JobReadyRequest struct {
	ProjectShas []string `json:"projectShas" binding:"required,min=1"`
}

type AddTeamMembersRequest struct {
	Team []string `json:"team" binding:"required,min=1"`
}

type ListJobsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type JobDTO struct {
	JobID           string   `json:"jobId"`
	OwnerID         string   `json:"ownerId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Earnings        int64    `json:"earnings"`
	Requirements    []string `json:"requirements"`
	Workers         []string `json:"workers"`
	PendingWorkers  []string `json:"pendingWorkers"`
	FilesReady      []string `json:"filesReady"`
	Status          string   `json:"status"`
	PaymentVerified bool     `json:"paymentVerified"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

type ListJobsResponse struct {
	Jobs  []JobDTO `json:"jobs"`
	Total int      `json:"total"`
}
