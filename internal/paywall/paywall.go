// Package paywall talks to the subscription service. The tracker and reminder packages never
// depend on it; only CLI gating does, through a Gate created once at startup.
package paywall

import (
	"context"
	"errors"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	// ErrNotInitialized is returned when the service is used before Initialize succeeded.
	ErrNotInitialized = errors.New("subscription service not initialized")
	// ErrNotConfigured is returned when no service URL is configured.
	ErrNotConfigured = errors.New("subscription service not configured")
)

// Service is the subscription facility.
type Service interface {
	Initialize(ctx context.Context) error
	SubscriptionStatus(ctx context.Context) (Status, error)
	// PresentPaywall shows the paywall registered for trigger.
	PresentPaywall(ctx context.Context, trigger string) error
}
