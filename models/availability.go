package models

// Weekdays lists the availability keys in display order.
var Weekdays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// Slot is a bookable window on a weekday.
type Slot struct {
	Start string `json:"start" bson:"start"` // Format "HH:MM" in 24h
	End   string `json:"end" bson:"end"`     // Format "HH:MM" in 24h
}

// Availability maps each weekday key to its ordered slots.
type Availability map[string][]Slot

// EmptyWeek returns an availability with every weekday present and no slots.
// The slices are non-nil so they encode as [] rather than null.
func EmptyWeek() Availability {
	a := make(Availability, len(Weekdays))
	for _, day := range Weekdays {
		a[day] = []Slot{}
	}
	return a
}
