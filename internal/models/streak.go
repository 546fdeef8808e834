package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// StreakRecord holds one completed-habit count per weekday, Monday first.
type StreakRecord [7]int

// Tier is the visual tier of a streak day.
type Tier int

const (
	TierEmpty Tier = iota
	TierBase
	TierSilver
	TierGold
)

// WeekdayIndex maps a date onto the Monday-first streak index (Monday=0 .. Sunday=6).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StreakTier picks the visual tier for a completed-habit count.
func StreakTier(count int) Tier {
	switch {
	case count <= 0:
		return TierEmpty
	case count <= len(MandatoryHabits):
		return TierBase
	case count == len(MandatoryHabits)+1:
		return TierSilver
	default:
		return TierGold
	}
}

// CompletedDays returns how many weekdays hold a non-zero entry.
func (s StreakRecord) CompletedDays() int {
	n := 0
	for _, c := range s {
		if c > 0 {
			n++
		}
	}
	return n
}

// UnmarshalJSON accepts the current integer form and the legacy boolean form,
// where a completed day is read as the mandatory habit count.
func (s *StreakRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing streak: %w", err)
	}

	var rec StreakRecord
	for i, item := range raw {
		if i >= len(rec) {
			break
		}
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			rec[i] = n
			continue
		}
		var b bool
		if err := json.Unmarshal(item, &b); err != nil {
			return fmt.Errorf("parsing streak entry %d: %w", i, err)
		}
		if b {
			rec[i] = len(MandatoryHabits)
		}
	}
	*s = rec
	return nil
}
