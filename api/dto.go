/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Bills, payees, and
  options travel as the store wire records; this file holds the types with
  no storage counterpart: projection results, share reports, and errors.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - store: the wire records reused as bill/payee/options bodies
*/
package api

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// ScheduleItemDTO is one income payment's required contribution.
type ScheduleItemDTO struct {
	PayeeName              string  `json:"payee_name"`
	ScheduleDescription    string  `json:"schedule_description"`
	IncomeAmount           float64 `json:"income_amount"`
	RequiredContribution   float64 `json:"required_contribution"`
	ContributionPercentage float64 `json:"contribution_percentage"`
	PaymentDate            string  `json:"payment_date"`
	IsBeforeCutoff         bool    `json:"is_before_cutoff"`
}

// BillDueDTO is one bill's contribution to a monthly total.
type BillDueDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// MonthlyTotalDTO is the bills due in one projected month.
type MonthlyTotalDTO struct {
	Month      int          `json:"month"`
	Year       int          `json:"year"`
	TotalBills float64      `json:"total_bills"`
	BillsDue   []BillDueDTO `json:"bills_due,omitempty"`
}

// WeekendAdjustmentDTO is a payment displaced across a month boundary.
type WeekendAdjustmentDTO struct {
	PayeeName           string  `json:"payee_name"`
	ScheduleDescription string  `json:"schedule_description"`
	OriginalDate        string  `json:"original_date"`
	AdjustedDate        string  `json:"adjusted_date"`
	IncomeAmount        float64 `json:"income_amount"`
}

// ScheduleResponse is the full projection result.
type ScheduleResponse struct {
	StartMonth         int                    `json:"start_month"`
	StartYear          int                    `json:"start_year"`
	MonthsAhead        int                    `json:"months_ahead"`
	ScheduleItems      []ScheduleItemDTO      `json:"schedule_items"`
	MonthlyTotals      []MonthlyTotalDTO      `json:"monthly_totals"`
	WeekendAdjustments []WeekendAdjustmentDTO `json:"weekend_adjustments,omitempty"`
}

// =============================================================================
// SHARE TYPES
// =============================================================================

// BillSharesDTO is the resolved cost split of one bill across all payees.
type BillSharesDTO struct {
	Bill   string             `json:"bill"`
	Shares map[string]float64 `json:"shares"`
	Valid  bool               `json:"valid"`
	Error  string             `json:"error,omitempty"`
}

// SharesResponse reports every bill's resolved split and whether any of
// them fails validation.
type SharesResponse struct {
	Bills []BillSharesDTO `json:"bills"`
	Valid bool            `json:"valid"`
}
