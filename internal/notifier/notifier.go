// Package notifier is the local notification facility: a persistent outbox of pending
// notifications and the senders that actually put them in front of the user.
package notifier

import (
	"context"
	"errors"
	"time"
)

// ErrSenderUnavailable is returned when no sender can deliver notifications right now.
var ErrSenderUnavailable = errors.New("notification sender unavailable")

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Content is what the user sees. Kind names the reminder the notification belongs to.
type Content struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Trigger is either a one-shot instant or a daily hour/minute recurrence.
type Trigger struct {
	At     time.Time `json:"at,omitempty"`
	Daily  bool      `json:"daily,omitempty"`
	Hour   int       `json:"hour,omitempty"`
	Minute int       `json:"minute,omitempty"`
}

// At returns a one-shot trigger.
func At(t time.Time) Trigger {
	return Trigger{At: t}
}

// Daily returns a trigger repeating every day at hour:minute local time.
func Daily(hour, minute int) Trigger {
	return Trigger{Daily: true, Hour: hour, Minute: minute}
}

// MinuteOfDay returns the daily trigger's time as minutes after midnight.
func (t Trigger) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Facility schedules and cancels notifications.
type Facility interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Schedule(ctx context.Context, content Content, trigger Trigger) (string, error)
	CancelAll(ctx context.Context) error
}

// Sender delivers a single notification immediately.
type Sender interface {
	Send(ctx context.Context, content Content) error
	// Available returns nil when Send is expected to succeed.
	Available(ctx context.Context) error
}

// Claimer de-duplicates deliveries per reminder kind and slot. Claim reports whether the
// caller won the slot; Release hands it back after a failed delivery.
type Claimer interface {
	Claim(kind string, slot time.Time) bool
	Release(kind string, slot time.Time)
}

// Delivered describes a notification that reached the sender.
type Delivered struct {
	ID          string
	Content     Content
	Trigger     Trigger
	Slot        time.Time
	DeliveredAt time.Time
}

// Listener is told about every delivered notification.
type Listener func(d Delivered)
