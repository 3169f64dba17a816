// Package repository stores each user's valuation reports as one JSON list,
// newest first, under the key reports_<email>.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"avalia_backend/internal/valuation/domain"
)

const keyPrefix = "reports_"

// Repository is implemented by every report list backend.
type Repository interface {
	// List returns the user's reports, newest first. Unknown users get an
	// empty list.
	List(ctx context.Context, email string) ([]domain.Report, error)
	// Append puts report at the head of the user's list.
	Append(ctx context.Context, email string, report domain.Report) error
}

// StorageKey is the key a user's list is stored under.
func StorageKey(email string) string {
	return keyPrefix + email
}

// decodeList reads a stored list. Legacy results and Portuguese enum values
// are upgraded on the way out; free text comes back exactly as stored.
func decodeList(raw []byte) ([]domain.Report, error) {
	if len(raw) == 0 {
		return []domain.Report{}, nil
	}
	var reports []domain.Report
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("decode report list: %w", err)
	}
	if reports == nil {
		return []domain.Report{}, nil
	}
	for i := range reports {
		reports[i].FormData = reports[i].FormData.UpgradeLegacy()
	}
	return reports, nil
}

func prepend(list []domain.Report, report domain.Report) []domain.Report {
	out := make([]domain.Report, 0, len(list)+1)
	out = append(out, report)
	return append(out, list...)
}
