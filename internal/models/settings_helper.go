package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/utils"
)

// ReminderConfigKeys lists every store key read by MapToReminderConfig.
var ReminderConfigKeys = []string{
	constants.KeyBedtime,
	constants.KeyBlueLightReminder,
	constants.KeyBlueLightMinutes,
	constants.KeyRoomTempReminder,
	constants.KeyRoomTempMinutes,
	constants.KeyCaffeineReminder,
	constants.KeyCaffeineHours,
	constants.KeyLateEatingReminder,
	constants.KeyLateEatingHours,
	constants.KeyWindDownHabit,
}

// MapToReminderConfig converts stored key-value pairs into a ReminderConfig.
// Missing keys keep their defaults; ref anchors the bedtime's date and location.
func MapToReminderConfig(data map[string]string, ref time.Time) (ReminderConfig, error) {
	cfg := DefaultReminderConfig(ref)

	for key, value := range data {
		var err error
		switch key {
		case constants.KeyBedtime:
			cfg.Bedtime, err = utils.ParseBedtime(value, ref)
		case constants.KeyBlueLightReminder:
			cfg.BlueLight.Enabled = value == "true"
		case constants.KeyBlueLightMinutes:
			cfg.BlueLight.Offset, err = strconv.Atoi(value)
		case constants.KeyRoomTempReminder:
			cfg.RoomTemp.Enabled = value == "true"
		case constants.KeyRoomTempMinutes:
			cfg.RoomTemp.Offset, err = strconv.Atoi(value)
		case constants.KeyCaffeineReminder:
			cfg.Caffeine.Enabled = value == "true"
		case constants.KeyCaffeineHours:
			cfg.Caffeine.Offset, err = strconv.Atoi(value)
		case constants.KeyLateEatingReminder:
			cfg.LateEating.Enabled = value == "true"
		case constants.KeyLateEatingHours:
			cfg.LateEating.Offset, err = strconv.Atoi(value)
		case constants.KeyWindDownHabit:
			cfg.WindDownHabit = value == "true"
		}
		if err != nil {
			return ReminderConfig{}, fmt.Errorf("parsing %s: %w", key, err)
		}
	}
	return cfg, nil
}

// ReminderConfigToMap converts a ReminderConfig to key-value pairs.
func ReminderConfigToMap(cfg ReminderConfig) map[string]string {
	return map[string]string{
		constants.KeyBedtime:            utils.FormatBedtime(cfg.Bedtime),
		constants.KeyBlueLightReminder:  strconv.FormatBool(cfg.BlueLight.Enabled),
		constants.KeyBlueLightMinutes:   strconv.Itoa(cfg.BlueLight.Offset),
		constants.KeyRoomTempReminder:   strconv.FormatBool(cfg.RoomTemp.Enabled),
		constants.KeyRoomTempMinutes:    strconv.Itoa(cfg.RoomTemp.Offset),
		constants.KeyCaffeineReminder:   strconv.FormatBool(cfg.Caffeine.Enabled),
		constants.KeyCaffeineHours:      strconv.Itoa(cfg.Caffeine.Offset),
		constants.KeyLateEatingReminder: strconv.FormatBool(cfg.LateEating.Enabled),
		constants.KeyLateEatingHours:    strconv.Itoa(cfg.LateEating.Offset),
		constants.KeyWindDownHabit:      strconv.FormatBool(cfg.WindDownHabit),
	}
}
