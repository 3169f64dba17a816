package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the DD/MM/YYYY format used for report dates.
const DateLayout = "02/01/2006"

// Report is one stored valuation.
type Report struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
	FormData  FormPayload     `json:"formData"`
	Result    ValuationResult `json:"result"`
}

// NewReport stamps a result with a fresh ID and today's date.
func NewReport(payload FormPayload, result ValuationResult, now time.Time) Report {
	return Report{
		ID:        uuid.NewString(),
		Date:      now.Format(DateLayout),
		CreatedAt: now.UTC(),
		FormData:  payload,
		Result:    result,
	}
}
