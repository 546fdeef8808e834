package constants

const (
	// Habit/streak keys
	KeyHabits             = "habits"
	KeyHabitsDate         = "habitsDate"
	KeyStreak             = "streak"
	KeyLastCompletionDate = "lastCompletionDate"

	// Reminder keys
	KeyBedtime            = "bedtime"
	KeyBlueLightReminder  = "blueLightReminder"
	KeyBlueLightMinutes   = "blueLightMinutes"
	KeyRoomTempReminder   = "roomTempReminder"
	KeyRoomTempMinutes    = "roomTempMinutes"
	KeyCaffeineReminder   = "caffeineReminder"
	KeyCaffeineHours      = "caffeineHours"
	KeyLateEatingReminder = "lateEatingReminder"
	KeyLateEatingHours    = "lateEatingHours"
	KeyWindDownHabit      = "windDownHabit"

	// Notification facility keys
	KeyNotificationPermission = "notificationPermission"
	KeyScheduledNotifications = "scheduledNotifications"
	KeyDeliveredReminders     = "deliveredReminders"

	// Default values
	DefaultBedtimeHour       = 22
	DefaultBedtimeMinute     = 0
	DefaultBlueLightMinutes  = 60
	DefaultRoomTempMinutes   = 15
	DefaultCaffeineHours     = 6
	DefaultLateEatingHours   = 3
	DefaultBlueLightEnabled  = true
	DefaultRoomTempEnabled   = true
	DefaultCaffeineEnabled   = false
	DefaultLateEatingEnabled = false
	DefaultWindDownHabit     = false

	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)
