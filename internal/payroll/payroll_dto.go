package payroll

type ManualExpenseInput struct {
	Description string `json:"description" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
}

type LinkedDeductionInput struct {
	InstrumentID string `json:"instrument_id" binding:"required,uuid"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
}

type CreatePayrollPeriodRequest struct {
	EmployeeID       string                 `json:"employee_id" binding:"required,uuid"`
	FromDate         string                 `json:"from_date" binding:"required"`
	ToDate           string                 `json:"to_date" binding:"required"`
	BaseSalary       int64                  `json:"base_salary" binding:"required,gt=0"`
	Allowances       int64                  `json:"allowances" binding:"omitempty,gte=0"`
	AbsentDays       int                    `json:"absent_days" binding:"omitempty,gte=0"`
	FixedDeductions  int64                  `json:"fixed_deductions" binding:"omitempty,gte=0"`
	ManualExpenses   []ManualExpenseInput   `json:"manual_expenses" binding:"omitempty,dive"`
	LinkedDeductions []LinkedDeductionInput `json:"linked_deductions" binding:"omitempty,dive"`
	Status           string                 `json:"status" binding:"omitempty,oneof=PENDING PAID"`
	PaidDate         string                 `json:"paid_date" binding:"omitempty"`
	BatchID          string                 `json:"batch_id" binding:"omitempty,uuid"`
}

type SetPayrollStatusRequest struct {
	Status   string `json:"status" binding:"required,oneof=PENDING PAID"`
	PaidDate string `json:"paid_date" binding:"omitempty"`
}

type ManualExpenseResponse struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type LinkedDeductionResponse struct {
	InstrumentID string `json:"instrument_id"`
	Amount       int64  `json:"amount"`
}

type PayrollPeriodResponse struct {
	ID               string                    `json:"id"`
	EmployeeID       string                    `json:"employee_id"`
	FromDate         string                    `json:"from_date"`
	ToDate           string                    `json:"to_date"`
	BaseSalary       int64                     `json:"base_salary"`
	Allowances       int64                     `json:"allowances"`
	AbsentDays       int                       `json:"absent_days"`
	AbsentDeduction  int64                     `json:"absent_deduction"`
	FixedDeductions  int64                     `json:"fixed_deductions"`
	ManualExpenses   []ManualExpenseResponse   `json:"manual_expenses"`
	LinkedDeductions []LinkedDeductionResponse `json:"linked_deductions"`

	ManualExpensesTotal int64 `json:"manual_expenses_total"`
	LinkedExpensesTotal int64 `json:"linked_expenses_total"`
	TotalDeductions     int64 `json:"total_deductions"`
	NetSalary           int64 `json:"net_salary"`

	Status   string  `json:"status"`
	PaidDate *string `json:"paid_date,omitempty"`
	BatchID  *string `json:"batch_id,omitempty"`

	// Warnings reports partial failures of the settlement and roster mirror
	// steps; the primary write has already succeeded when these appear.
	Warnings []string `json:"warnings,omitempty"`
}
