// Package validation checks DiningSuggestionsIntent slots. The rules are pure
// functions of the slot values, the configured time zone and the injected clock.
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/dialog"
)

const dateLayout = "2006-01-02"

var (
	// Locations served, lower case
	Locations = []string{"manhattan"}

	// Cuisines offered, lower case
	Cuisines = []string{"chinese", "indian", "italian", "mexican", "thai"}

	// Prefix match: anything after the domain's first dot is accepted
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)
)

// Violation messages
const (
	MsgLocation       = "We are currently only serving Manhattan."
	MsgCuisineFmt     = "We don't offer suggestions for %s yet. Please try another cuisine."
	MsgNumberOfPeople = "The number of people should be between 1 and 10 (inclusive)."
	MsgInvalidDate    = "Please provide a valid date"
	MsgPastDate       = "Date must be >= tomorrow"
	MsgInvalidTime    = "Please provide a valid time"
	MsgInvalidEmail   = "Please provide a valid email"
)

// Result is either valid, or invalid with the offending slot and a message for the user.
type Result struct {
	Valid        bool
	ViolatedSlot string
	Message      string
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(slot, message string) Result {
	return Result{ViolatedSlot: slot, Message: message}
}

// Clock returns the current time.
type Clock func() time.Time

// Validator applies the slot rules relative to a time zone and clock.
type Validator struct {
	loc *time.Location
	now Clock
}

// New returns a Validator. A nil loc means UTC and a nil now means time.Now.
func New(loc *time.Location, now Clock) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{loc: loc, now: now}
}

// Validate checks the filled slots in order Location, Cuisine, NumberOfPeople, Date,
// Time, Email and returns the first violation. Unset slots are not checked.
func (v *Validator) Validate(slots dialog.SlotSet) Result {
	checks := []struct {
		value *string
		check func(string) Result
	}{
		{slots.Location, checkLocation},
		{slots.Cuisine, checkCuisine},
		{slots.NumberOfPeople, checkNumberOfPeople},
		{slots.Date, v.checkDate},
		{slots.Time, checkTime},
		{slots.Email, checkEmail},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if r := c.check(*c.value); !r.Valid {
			return r
		}
	}
	return valid()
}

func checkLocation(location string) Result {
	if !slices.Contains(Locations, strings.ToLower(location)) {
		return invalid(dialog.SlotLocation, MsgLocation)
	}
	return valid()
}

func checkCuisine(cuisine string) Result {
	if !slices.Contains(Cuisines, strings.ToLower(cuisine)) {
		return invalid(dialog.SlotCuisine, fmt.Sprintf(MsgCuisineFmt, cuisine))
	}
	return valid()
}

func checkNumberOfPeople(raw string) Result {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 10 {
		return invalid(dialog.SlotNumberOfPeople, MsgNumberOfPeople)
	}
	return valid()
}

// checkDate requires a calendar date strictly after today in v.loc.
func (v *Validator) checkDate(raw string) Result {
	date, err := time.ParseInLocation(dateLayout, raw, v.loc)
	if err != nil {
		return invalid(dialog.SlotDate, MsgInvalidDate)
	}
	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	if !date.After(today) {
		return invalid(dialog.SlotDate, MsgPastDate)
	}
	return valid()
}

// checkTime accepts any five characters shaped like HH:MM with integer halves.
// Hour and minute ranges are not checked.
func checkTime(raw string) Result {
	if len(raw) != 5 {
		return invalid(dialog.SlotTime, MsgInvalidTime)
	}
	hour, minute, ok := strings.Cut(raw, ":")
	if !ok {
		return invalid(dialog.SlotTime, MsgInvalidTime)
	}
	if _, err := strconv.Atoi(hour); err != nil {
		return invalid(dialog.SlotTime, MsgInvalidTime)
	}
	if _, err := strconv.Atoi(minute); err != nil {
		return invalid(dialog.SlotTime, MsgInvalidTime)
	}
	return valid()
}

func checkEmail(raw string) Result {
	if !emailPattern.MatchString(raw) {
		return invalid(dialog.SlotEmail, MsgInvalidEmail)
	}
	return valid()
}
