package constants

// Notification copy, keyed by reminder kind.
const (
	WindDownTitle = "Time to Wind Down"
	WindDownBody  = "Start winding down and avoid blue light to prepare for bed."

	BlueLightTitle = "Screens Off Soon"
	BlueLightBody  = "Put away phones, tablets and bright lights before bed."

	RoomTempTitle = "Prepare Your Room"
	RoomTempBody  = "Set your room temperature to 60-67°F / 15-19°C for optimal sleep."

	CaffeineTitle = "Last Call for Caffeine"
	CaffeineBody  = "Skip caffeine, nicotine and alcohol from now until bedtime."

	LateEatingTitle = "Kitchen's Closed"
	LateEatingBody  = "Finish your last meal now so digestion doesn't keep you up."
)
