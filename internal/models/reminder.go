package models

import (
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
)

// ReminderKind identifies a bedtime-relative reminder.
type ReminderKind string

const (
	ReminderBlueLight  ReminderKind = "blueLight"
	ReminderRoomTemp   ReminderKind = "roomTemp"
	ReminderCaffeine   ReminderKind = "caffeine"
	ReminderLateEating ReminderKind = "lateEating"
	ReminderWindDown   ReminderKind = "windDown"
)

// OffsetKinds are the user-configurable reminders, in display order.
var OffsetKinds = []ReminderKind{ReminderBlueLight, ReminderRoomTemp, ReminderCaffeine, ReminderLateEating}

// ParseReminderKind resolves a user-configurable reminder kind.
func ParseReminderKind(s string) (ReminderKind, bool) {
	for _, k := range OffsetKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// OffsetUnit is the unit of a reminder offset.
type OffsetUnit string

const (
	UnitMinutes OffsetUnit = "minutes"
	UnitHours   OffsetUnit = "hours"
)

// OffsetReminder fires Offset units before bedtime when enabled.
type OffsetReminder struct {
	Enabled bool       `json:"enabled"`
	Offset  int        `json:"offset" validate:"gte=0"`
	Unit    OffsetUnit `json:"unit" validate:"oneof=minutes hours"`
}

// Minutes returns the offset converted to minutes.
func (r OffsetReminder) Minutes() int {
	if r.Unit == UnitHours {
		return r.Offset * 60
	}
	return r.Offset
}

// Active reports whether the reminder should be scheduled. A zero hour offset counts as
// disabled; zero minutes fires at bedtime.
func (r OffsetReminder) Active() bool {
	return r.Enabled && (r.Unit != UnitHours || r.Offset > 0)
}

// ReminderConfig is the bedtime plus every offset reminder.
type ReminderConfig struct {
	Bedtime       time.Time      `json:"bedtime" validate:"required"`
	BlueLight     OffsetReminder `json:"blue_light"`
	RoomTemp      OffsetReminder `json:"room_temp"`
	Caffeine      OffsetReminder `json:"caffeine"`
	LateEating    OffsetReminder `json:"late_eating"`
	WindDownHabit bool           `json:"wind_down_habit"`
}

// DefaultReminderConfig returns the factory settings with bedtime at 22:00 on ref's date.
func DefaultReminderConfig(ref time.Time) ReminderConfig {
	return ReminderConfig{
		Bedtime: time.Date(ref.Year(), ref.Month(), ref.Day(),
			constants.DefaultBedtimeHour, constants.DefaultBedtimeMinute, 0, 0, ref.Location()),
		BlueLight:     OffsetReminder{Enabled: constants.DefaultBlueLightEnabled, Offset: constants.DefaultBlueLightMinutes, Unit: UnitMinutes},
		RoomTemp:      OffsetReminder{Enabled: constants.DefaultRoomTempEnabled, Offset: constants.DefaultRoomTempMinutes, Unit: UnitMinutes},
		Caffeine:      OffsetReminder{Enabled: constants.DefaultCaffeineEnabled, Offset: constants.DefaultCaffeineHours, Unit: UnitHours},
		LateEating:    OffsetReminder{Enabled: constants.DefaultLateEatingEnabled, Offset: constants.DefaultLateEatingHours, Unit: UnitHours},
		WindDownHabit: constants.DefaultWindDownHabit,
	}
}

// Reminder returns the offset reminder for kind.
func (c ReminderConfig) Reminder(kind ReminderKind) (OffsetReminder, bool) {
	switch kind {
	case ReminderBlueLight:
		return c.BlueLight, true
	case ReminderRoomTemp:
		return c.RoomTemp, true
	case ReminderCaffeine:
		return c.Caffeine, true
	case ReminderLateEating:
		return c.LateEating, true
	}
	return OffsetReminder{}, false
}

// SetReminder replaces the offset reminder for kind. Unknown kinds are ignored.
func (c *ReminderConfig) SetReminder(kind ReminderKind, r OffsetReminder) {
	switch kind {
	case ReminderBlueLight:
		c.BlueLight = r
	case ReminderRoomTemp:
		c.RoomTemp = r
	case ReminderCaffeine:
		c.Caffeine = r
	case ReminderLateEating:
		c.LateEating = r
	}
}

// Bonus derives which bonus habits are on the checklist.
func (c ReminderConfig) Bonus() BonusSettings {
	return BonusSettings{
		WindDown:   c.WindDownHabit,
		Caffeine:   c.Caffeine.Active(),
		LateEating: c.LateEating.Active(),
	}
}

// BedtimeMinutes returns bedtime as minutes after midnight.
func (c ReminderConfig) BedtimeMinutes() int {
	return c.Bedtime.Hour()*60 + c.Bedtime.Minute()
}
