package events

import "time"

const PayrollPeriodStatusTopic = "construction.payroll.period.v1"

type PayrollPeriodStatusEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	PeriodID   string    `json:"period_id"`
	EmployeeID string    `json:"employee_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
