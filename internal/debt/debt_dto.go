package debt

type CreateDebtRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required,uuid"`
	Kind        string `json:"kind" binding:"required,oneof=LOAN REIMBURSEMENT ADVANCE OTHER"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
}

type SettleDebtRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Direction string `json:"direction" binding:"required,oneof=apply revert"`
}

type DebtInstrumentResponse struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	PaidAmount  int64  `json:"paid_amount"`
	Status      string `json:"status"`
}

type DebtListFilterRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL COMPLETED"`
}
