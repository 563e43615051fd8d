package project

type CreateProjectRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type ProjectResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type ProjectCostResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Amount      int64   `json:"amount"`
	SourceRef   *string `json:"source_ref,omitempty"`
}
