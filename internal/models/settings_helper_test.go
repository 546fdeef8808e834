package models

import (
	"testing"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
)

func TestMapToReminderConfig_Defaults(t *testing.T) {
	ref := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	cfg, err := MapToReminderConfig(map[string]string{}, ref)
	if err != nil {
		t.Fatalf("MapToReminderConfig failed: %v", err)
	}

	if cfg.BedtimeMinutes() != 22*60 {
		t.Errorf("default bedtime = %d minutes", cfg.BedtimeMinutes())
	}
	if !cfg.BlueLight.Active() || cfg.BlueLight.Minutes() != 60 {
		t.Errorf("unexpected blue light default %+v", cfg.BlueLight)
	}
	if !cfg.RoomTemp.Active() || cfg.RoomTemp.Minutes() != 15 {
		t.Errorf("unexpected room temp default %+v", cfg.RoomTemp)
	}
	if cfg.Caffeine.Active() || cfg.Caffeine.Minutes() != 360 {
		t.Errorf("unexpected caffeine default %+v", cfg.Caffeine)
	}
	if cfg.LateEating.Active() || cfg.LateEating.Minutes() != 180 {
		t.Errorf("unexpected late eating default %+v", cfg.LateEating)
	}
	if cfg.Bonus() != (BonusSettings{}) {
		t.Errorf("no bonus habits expected by default, got %+v", cfg.Bonus())
	}
}

func TestMapToReminderConfig_RoundTripsStoredValues(t *testing.T) {
	ref := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	data := map[string]string{
		constants.KeyBedtime:            "23:30",
		constants.KeyBlueLightReminder:  "false",
		constants.KeyCaffeineReminder:   "true",
		constants.KeyCaffeineHours:      "8",
		constants.KeyLateEatingReminder: "true",
		constants.KeyLateEatingHours:    "0",
		constants.KeyWindDownHabit:      "true",
	}

	cfg, err := MapToReminderConfig(data, ref)
	if err != nil {
		t.Fatalf("MapToReminderConfig failed: %v", err)
	}
	if cfg.Bedtime.Hour() != 23 || cfg.Bedtime.Minute() != 30 || cfg.Bedtime.Day() != 3 {
		t.Errorf("bedtime = %v", cfg.Bedtime)
	}
	if cfg.BlueLight.Active() {
		t.Error("blue light should be disabled")
	}

	// A zero hour offset counts as disabled.
	want := BonusSettings{WindDown: true, Caffeine: true, LateEating: false}
	if cfg.Bonus() != want {
		t.Errorf("Bonus() = %+v, want %+v", cfg.Bonus(), want)
	}

	back, err := MapToReminderConfig(ReminderConfigToMap(cfg), ref)
	if err != nil {
		t.Fatalf("re-reading map: %v", err)
	}
	if !back.Bedtime.Equal(cfg.Bedtime) {
		t.Errorf("bedtime changed after round trip: %v vs %v", back.Bedtime, cfg.Bedtime)
	}
	back.Bedtime = cfg.Bedtime
	if back != cfg {
		t.Errorf("config changed after round trip:\n got %+v\nwant %+v", back, cfg)
	}
}

func TestMapToReminderConfig_InvalidValue(t *testing.T) {
	ref := time.Now()
	if _, err := MapToReminderConfig(map[string]string{constants.KeyRoomTempMinutes: "abc"}, ref); err == nil {
		t.Error("expected error for non-numeric offset")
	}
	if _, err := MapToReminderConfig(map[string]string{constants.KeyBedtime: "late"}, ref); err == nil {
		t.Error("expected error for bad bedtime")
	}
}

func TestOffsetReminderActive(t *testing.T) {
	tests := []struct {
		name string
		r    OffsetReminder
		want bool
	}{
		{"disabled", OffsetReminder{Enabled: false, Offset: 30, Unit: UnitMinutes}, false},
		{"minutes", OffsetReminder{Enabled: true, Offset: 30, Unit: UnitMinutes}, true},
		{"zero minutes fires at bedtime", OffsetReminder{Enabled: true, Offset: 0, Unit: UnitMinutes}, true},
		{"hours", OffsetReminder{Enabled: true, Offset: 6, Unit: UnitHours}, true},
		{"zero hours is off", OffsetReminder{Enabled: true, Offset: 0, Unit: UnitHours}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}
