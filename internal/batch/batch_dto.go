package batch

type BatchEntryInput struct {
	EmployeeID   string `json:"employee_id" binding:"required,uuid"`
	EmployeeName string `json:"employee_name" binding:"required"`
	IDNumber     string `json:"id_number"`
	Salary       int64  `json:"salary" binding:"required,gt=0"`
}

type CreateBatchRequest struct {
	ProjectID   string            `json:"project_id" binding:"required,uuid"`
	ProjectName string            `json:"project_name" binding:"required"`
	ForemanID   string            `json:"foreman_id" binding:"required,uuid"`
	ForemanName string            `json:"foreman_name" binding:"required"`
	PeriodDate  string            `json:"period_date" binding:"required"`
	Entries     []BatchEntryInput `json:"entries" binding:"required,min=1,dive"`
}

type UpdateBatchRequest struct {
	ProjectID   string            `json:"project_id" binding:"required,uuid"`
	ProjectName string            `json:"project_name" binding:"required"`
	ForemanID   string            `json:"foreman_id" binding:"required,uuid"`
	ForemanName string            `json:"foreman_name" binding:"required"`
	PeriodDate  string            `json:"period_date" binding:"required"`
	Entries     []BatchEntryInput `json:"entries" binding:"required,min=1,dive"`
}

type BatchEntryResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	IDNumber     string `json:"id_number,omitempty"`
	Salary       int64  `json:"salary"`
	Status       string `json:"status"`
}

type BatchResponse struct {
	ID          string               `json:"id"`
	ProjectID   string               `json:"project_id"`
	ProjectName string               `json:"project_name"`
	ForemanID   string               `json:"foreman_id"`
	ForemanName string               `json:"foreman_name"`
	PeriodDate  string               `json:"period_date"`
	Entries     []BatchEntryResponse `json:"entries"`
}

type HistoryFilterRequest struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	From       string `form:"from" binding:"omitempty"`
	To         string `form:"to" binding:"omitempty"`
}

// HistoryEntryResponse is one employee's sub-entry projected out of a batch.
type HistoryEntryResponse struct {
	BatchID     string `json:"batch_id"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ForemanID   string `json:"foreman_id"`
	ForemanName string `json:"foreman_name"`
	PeriodDate  string `json:"period_date"`
	Salary      int64  `json:"salary"`
	Status      string `json:"status"`
}
