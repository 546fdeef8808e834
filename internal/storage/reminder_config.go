package storage

import (
	"time"

	"github.com/julianstephens/sleepr/internal/models"
)

// LoadReminderConfig reads bedtime and reminder settings. Missing keys fall back to defaults,
// with the bedtime anchored on ref's date.
func LoadReminderConfig(p Provider, ref time.Time) (models.ReminderConfig, error) {
	data, err := GetMany(p, models.ReminderConfigKeys)
	if err != nil {
		return models.DefaultReminderConfig(ref), err
	}
	return models.MapToReminderConfig(data, ref)
}

// SaveReminderConfig writes every reminder setting.
func SaveReminderConfig(p Provider, cfg models.ReminderConfig) error {
	return SetMany(p, models.ReminderConfigToMap(cfg))
}
