// Package service exposes a signed-in user's stored valuation reports.
package service

import (
	"context"
	"strings"

	"avalia_backend/internal/reports/repository"
	"avalia_backend/internal/valuation/domain"
	"avalia_backend/platform/apperr"
	"avalia_backend/platform/logger"
)

const msgReportNotFound = "report not found"

// Service reads and appends report lists.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns the user's reports, newest first.
func (s *Service) List(ctx context.Context, email string) ([]domain.Report, error) {
	reports, err := s.repo.List(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperr.Internal("could not load reports", err)
	}
	return reports, nil
}

// Get returns one report of the user.
func (s *Service) Get(ctx context.Context, email, id string) (domain.Report, error) {
	reports, err := s.List(ctx, email)
	if err != nil {
		return domain.Report{}, err
	}
	for _, r := range reports {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Report{}, apperr.NotFound(msgReportNotFound)
}

// Append stores report at the head of the user's list.
func (s *Service) Append(ctx context.Context, email string, report domain.Report) error {
	if err := s.repo.Append(ctx, normalizeEmail(email), report); err != nil {
		return err
	}
	s.log.WithContext(ctx).Debug("report stored", "report_id", report.ID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
