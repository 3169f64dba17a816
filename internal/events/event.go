// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"avalia_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedIn is published after a Google credential was exchanged for a session.
type UserSignedIn struct {
	BaseEvent
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (e UserSignedIn) EventName() string { return "auth.user.signed_in" }

// =============================================================================
// Valuation Domain Events
// =============================================================================

// ValuationCompleted is published when the generative model returned a valid
// report. Persisted is false for anonymous users or when the store failed.
type ValuationCompleted struct {
	BaseEvent
	ReportID           uuid.UUID `json:"reportId"`
	Email              string    `json:"email,omitempty"`
	City               string    `json:"city"`
	EstimatedSalePrice float64   `json:"estimatedSalePrice"`
	Persisted          bool      `json:"persisted"`
}

func (e ValuationCompleted) EventName() string { return "valuation.completed" }

// WizardSubmitted is published when a wizard session handed its payload to
// the orchestrator successfully and was discarded.
type WizardSubmitted struct {
	BaseEvent
	WizardID uuid.UUID `json:"wizardId"`
	ReportID uuid.UUID `json:"reportId"`
}

func (e WizardSubmitted) EventName() string { return "wizard.submitted" }
