package reminder

import (
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/notifier"
	"github.com/julianstephens/sleepr/internal/utils"
)

// Notification is one entry of the derived schedule.
type Notification struct {
	Kind   models.ReminderKind
	Title  string
	Body   string
	FireAt time.Time
	Hour   int
	Minute int
}

// Content returns the notification as facility content.
func (n Notification) Content() notifier.Content {
	return notifier.Content{Kind: string(n.Kind), Title: n.Title, Body: n.Body}
}

// MinuteOfDay returns the fire time as minutes after midnight.
func (n Notification) MinuteOfDay() int {
	return n.Hour*60 + n.Minute
}

var copyByKind = map[models.ReminderKind][2]string{
	models.ReminderBlueLight:  {constants.BlueLightTitle, constants.BlueLightBody},
	models.ReminderRoomTemp:   {constants.RoomTempTitle, constants.RoomTempBody},
	models.ReminderCaffeine:   {constants.CaffeineTitle, constants.CaffeineBody},
	models.ReminderLateEating: {constants.LateEatingTitle, constants.LateEatingBody},
	models.ReminderWindDown:   {constants.WindDownTitle, constants.WindDownBody},
}

// ComputeFireTime returns the next instant offset units before bedtime's time of day, using
// the default grace window.
func ComputeFireTime(bedtime time.Time, offset int, unit models.OffsetUnit, now time.Time) time.Time {
	r := models.OffsetReminder{Offset: offset, Unit: unit}
	return fireTime(bedtimeMinutes(bedtime, now.Location())-r.Minutes(), now, constants.DefaultGraceWindow)
}

func fireTime(minuteOfDay int, now time.Time, grace time.Duration) time.Time {
	return utils.NextOccurrence(now, minuteOfDay, grace)
}

func bedtimeMinutes(bedtime time.Time, loc *time.Location) int {
	bt := bedtime.In(loc)
	return bt.Hour()*60 + bt.Minute()
}

// Plan derives the notifications cfg asks for. Offset reminders appear when active; the
// wind-down reminder is always present.
func Plan(cfg models.ReminderConfig, now time.Time) []Notification {
	return plan(cfg, now, constants.DefaultGraceWindow)
}

func plan(cfg models.ReminderConfig, now time.Time, grace time.Duration) []Notification {
	bed := bedtimeMinutes(cfg.Bedtime, now.Location())

	var out []Notification
	add := func(kind models.ReminderKind, lead int) {
		m := utils.WrapMinutes(bed - lead)
		c := copyByKind[kind]
		out = append(out, Notification{
			Kind:   kind,
			Title:  c[0],
			Body:   c[1],
			FireAt: fireTime(m, now, grace),
			Hour:   m / 60,
			Minute: m % 60,
		})
	}

	for _, kind := range models.OffsetKinds {
		r, _ := cfg.Reminder(kind)
		if r.Active() {
			add(kind, r.Minutes())
		}
	}
	add(models.ReminderWindDown, constants.WindDownLead)
	return out
}
