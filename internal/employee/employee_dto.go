package employee

type CreateEmployeeRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	IDNumber   string `json:"id_number" binding:"required"`
	BaseSalary int64  `json:"base_salary" binding:"required,gt=0"`
}

type EmployeeResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	IDNumber   string `json:"id_number"`
	CrewNumber string `json:"crew_number"`
	BaseSalary int64  `json:"base_salary"`
}
