package models

// HabitKey identifies one checklist item.
type HabitKey string

const (
	HabitGoToBed         HabitKey = "goToBed"
	HabitAvoidBlueLight  HabitKey = "avoidBlueLight"
	HabitRoomTemp        HabitKey = "roomTemp"
	HabitDidWindDown     HabitKey = "didWindDown"
	HabitAvoidCaffeine   HabitKey = "avoidCaffeine"
	HabitAvoidLateEating HabitKey = "avoidLateEating"
)

// MandatoryHabits must all be checked before a day can be completed.
var MandatoryHabits = []HabitKey{HabitGoToBed, HabitAvoidBlueLight, HabitRoomTemp}

// BonusHabits count towards the streak tier but never gate completion.
var BonusHabits = []HabitKey{HabitDidWindDown, HabitAvoidCaffeine, HabitAvoidLateEating}

var habitLabels = map[HabitKey]string{
	HabitGoToBed:         "Go to bed on time",
	HabitAvoidBlueLight:  "Avoided blue light before bed",
	HabitRoomTemp:        "Set room temperature to 60-67°F / 15-19°C",
	HabitDidWindDown:     "Wound down for an hour",
	HabitAvoidCaffeine:   "No caffeine, nicotine or alcohol late",
	HabitAvoidLateEating: "No late eating",
}

// Label returns the checklist text for a habit.
func (k HabitKey) Label() string {
	if l, ok := habitLabels[k]; ok {
		return l
	}
	return string(k)
}

// IsMandatory reports whether k is one of the mandatory habits.
func (k HabitKey) IsMandatory() bool {
	for _, m := range MandatoryHabits {
		if m == k {
			return true
		}
	}
	return false
}

// ParseHabitKey resolves a known habit key.
func ParseHabitKey(s string) (HabitKey, bool) {
	k := HabitKey(s)
	_, ok := habitLabels[k]
	return k, ok
}

// BonusSettings says which bonus habits are currently on the checklist.
type BonusSettings struct {
	WindDown   bool
	Caffeine   bool
	LateEating bool
}

// EnabledHabits returns the ordered checklist: mandatory habits first, then enabled bonus habits.
func EnabledHabits(b BonusSettings) []HabitKey {
	keys := append([]HabitKey{}, MandatoryHabits...)
	if b.WindDown {
		keys = append(keys, HabitDidWindDown)
	}
	if b.Caffeine {
		keys = append(keys, HabitAvoidCaffeine)
	}
	if b.LateEating {
		keys = append(keys, HabitAvoidLateEating)
	}
	return keys
}

// HabitSet maps each checklist habit to its completion flag.
type HabitSet map[HabitKey]bool

// NewHabitSet returns a set with every key unchecked.
func NewHabitSet(keys []HabitKey) HabitSet {
	return FilledHabitSet(keys, false)
}

// FilledHabitSet returns a set with every key set to value.
func FilledHabitSet(keys []HabitKey, value bool) HabitSet {
	h := make(HabitSet, len(keys))
	for _, k := range keys {
		h[k] = value
	}
	return h
}

// Clone returns an independent copy.
func (h HabitSet) Clone() HabitSet {
	c := make(HabitSet, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}

// MandatoryComplete reports whether every mandatory habit is checked.
func (h HabitSet) MandatoryComplete() bool {
	for _, k := range MandatoryHabits {
		if !h[k] {
			return false
		}
	}
	return true
}

// CountTrue returns the number of checked habits.
func (h HabitSet) CountTrue() int {
	n := 0
	for _, v := range h {
		if v {
			n++
		}
	}
	return n
}

// Restrict returns a set containing exactly keys, keeping existing values.
func (h HabitSet) Restrict(keys []HabitKey) HabitSet {
	r := make(HabitSet, len(keys))
	for _, k := range keys {
		r[k] = h[k]
	}
	return r
}
