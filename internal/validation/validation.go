package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/utils"
)

const (
	// MaxOffsetMinutes bounds minute-based reminders.
	MaxOffsetMinutes = 120
	// MaxOffsetHours bounds hour-based reminders.
	MaxOffsetHours = 12
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		return utils.ValidateTimezone(fl.Field().String())
	})

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(models.OffsetReminder)
		switch r.Unit {
		case models.UnitMinutes:
			if r.Offset > MaxOffsetMinutes {
				sl.ReportError(r.Offset, "Offset", "Offset", "max", fmt.Sprint(MaxOffsetMinutes))
			}
		case models.UnitHours:
			if r.Offset > MaxOffsetHours {
				sl.ReportError(r.Offset, "Offset", "Offset", "max", fmt.Sprint(MaxOffsetHours))
			}
		}
	}, models.OffsetReminder{})
}

// ValidateReminderConfig checks offsets and units of every reminder.
func ValidateReminderConfig(cfg models.ReminderConfig) error {
	return toError(validate.Struct(cfg))
}

// ValidateStruct runs the validate tags of any struct.
func ValidateStruct(v any) error {
	return toError(validate.Struct(v))
}

// ValidateTimezone checks an IANA timezone name (or "Local").
func ValidateTimezone(tz string) error {
	return toError(validate.Var(tz, "timezone"))
}

func toError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fieldName(fe), message(fe)))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return "value"
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "timezone":
		return "must be a valid IANA timezone"
	default:
		return "is invalid"
	}
}
