package foreman

type AssignForemanRequest struct {
	ForemanID       string `json:"foreman_id" binding:"required,uuid"`
	ForemanName     string `json:"foreman_name" binding:"required"`
	ProjectID       string `json:"project_id" binding:"required,uuid"`
	ProjectName     string `json:"project_name" binding:"required"`
	ProjectLocation string `json:"project_location"`
}

type CashAdvanceRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Mode        string `json:"mode" binding:"required"`
	ReferenceNo string `json:"reference_no"`
	Remarks     string `json:"remarks"`
	Date        string `json:"date" binding:"required"`
}

type InvoiceLineRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	InvoiceNo string `json:"invoice_no"`
	Category  string `json:"category"`
	Remarks   string `json:"remarks"`
	Date      string `json:"date" binding:"required"`
}

type CashAdvanceResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      int64  `json:"amount"`
	Mode        string `json:"mode"`
	ReferenceNo string `json:"reference_no,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

type InvoiceLineResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`
	InvoiceNo string `json:"invoice_no,omitempty"`
	Category  string `json:"category,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
}

type LedgerResponse struct {
	ID              string `json:"id"`
	ForemanID       string `json:"foreman_id"`
	ForemanName     string `json:"foreman_name"`
	ProjectID       string `json:"project_id"`
	ProjectName     string `json:"project_name"`
	ProjectLocation string `json:"project_location,omitempty"`

	CashAdvances []CashAdvanceResponse `json:"cash_advances"`
	InvoiceLines []InvoiceLineResponse `json:"invoice_lines"`

	TotalSent        int64 `json:"total_sent"`
	TotalInvoiced    int64 `json:"total_invoiced"`
	RemainingBalance int64 `json:"remaining_balance"`

	// Warnings reports a failed cost mirror step; the ledger write itself
	// has already succeeded when these appear.
	Warnings []string `json:"warnings,omitempty"`
}
