// Package dialog models the Lex V1 code-hook exchange: the turn request Lex sends
// and the dialog actions the hook can answer with.
package dialog

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/mitchellh/mapstructure"
)

// Invocation sources
const (
	SourceDialogCodeHook      = "DialogCodeHook"
	SourceFulfillmentCodeHook = "FulfillmentCodeHook"
)

// Intent names
const (
	IntentGreeting          = "GreetingIntent"
	IntentDiningSuggestions = "DiningSuggestionsIntent"
	IntentThankYou          = "ThankYouIntent"
)

// Slot names of DiningSuggestionsIntent
const (
	SlotLocation       = "Location"
	SlotCuisine        = "Cuisine"
	SlotDate           = "Date"
	SlotTime           = "Time"
	SlotNumberOfPeople = "NumberOfPeople"
	SlotEmail          = "Email"
)

// Request is one dialog turn sent by Lex to the code hook.
type Request struct {
	events.LexEvent
}

// IntentName returns the intent Lex matched for this turn.
func (r Request) IntentName() string {
	if r.CurrentIntent == nil {
		return ""
	}
	return r.CurrentIntent.Name
}

// Slots returns the raw slot map of the current intent.
func (r Request) Slots() events.Slots {
	if r.CurrentIntent == nil {
		return events.Slots{}
	}
	return r.CurrentIntent.Slots
}

// SlotSet decodes the current intent's slots.
func (r Request) SlotSet() (SlotSet, error) {
	return DecodeSlots(r.Slots())
}

// SlotSet holds the DiningSuggestionsIntent slots. A nil field is unset.
type SlotSet struct {
	Location       *string `mapstructure:"Location"`
	Cuisine        *string `mapstructure:"Cuisine"`
	Date           *string `mapstructure:"Date"`
	Time           *string `mapstructure:"Time"`
	NumberOfPeople *string `mapstructure:"NumberOfPeople"`
	Email          *string `mapstructure:"Email"`
}

// DecodeSlots maps a Lex slot map onto a SlotSet. Unknown slots are ignored.
func DecodeSlots(slots events.Slots) (SlotSet, error) {
	var set SlotSet
	if err := mapstructure.Decode(slots, &set); err != nil {
		return SlotSet{}, fmt.Errorf("failed to decode slots: %w", err)
	}
	return set, nil
}

// ToMap returns all six slots keyed by name, unset slots as nil.
func (s SlotSet) ToMap() events.Slots {
	return events.Slots{
		SlotLocation:       s.Location,
		SlotCuisine:        s.Cuisine,
		SlotDate:           s.Date,
		SlotTime:           s.Time,
		SlotNumberOfPeople: s.NumberOfPeople,
		SlotEmail:          s.Email,
	}
}

// WithoutSlot returns a copy of slots with name set to nil. Every other slot,
// including ones outside SlotSet, is kept as is.
func WithoutSlot(slots events.Slots, name string) events.Slots {
	out := make(events.Slots, len(slots)+1)
	for k, v := range slots {
		out[k] = v
	}
	out[name] = nil
	return out
}

// Value returns the slot's value or "" when unset.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Filled returns the names of the slots that carry a value.
func (s SlotSet) Filled() []string {
	var names []string
	for _, name := range []string{SlotLocation, SlotCuisine, SlotNumberOfPeople, SlotDate, SlotTime, SlotEmail} {
		if s.ToMap()[name] != nil {
			names = append(names, name)
		}
	}
	return names
}

// Response is a dialog action the code hook returns to Lex.
type Response interface {
	LexResponse() events.LexResponse
	json.Marshaler
}

// Fulfillment states for Close
const (
	Fulfilled = "Fulfilled"
	Failed    = "Failed"
)

func plainText(content string) map[string]string {
	return map[string]string{"contentType": "PlainText", "content": content}
}

func attributesOrEmpty(attrs map[string]string) events.SessionAttributes {
	if attrs == nil {
		return events.SessionAttributes{}
	}
	return attrs
}

// ElicitSlot asks the user to provide SlotToElicit again.
type ElicitSlot struct {
	SessionAttributes map[string]string
	IntentName        string
	Slots             events.Slots
	SlotToElicit      string
	Message           string
}

func (e ElicitSlot) LexResponse() events.LexResponse {
	return events.LexResponse{
		SessionAttributes: attributesOrEmpty(e.SessionAttributes),
		DialogAction: events.LexDialogAction{
			Type:         "ElicitSlot",
			IntentName:   e.IntentName,
			Slots:        e.Slots,
			SlotToElicit: e.SlotToElicit,
			Message:      plainText(e.Message),
		},
	}
}

func (e ElicitSlot) MarshalJSON() ([]byte, error) { return json.Marshal(e.LexResponse()) }

// Delegate hands the next step back to Lex.
type Delegate struct {
	SessionAttributes map[string]string
	Slots             events.Slots
}

func (d Delegate) LexResponse() events.LexResponse {
	return events.LexResponse{
		SessionAttributes: attributesOrEmpty(d.SessionAttributes),
		DialogAction: events.LexDialogAction{
			Type:  "Delegate",
			Slots: d.Slots,
		},
	}
}

func (d Delegate) MarshalJSON() ([]byte, error) { return json.Marshal(d.LexResponse()) }

// Close ends the conversation with a final message.
type Close struct {
	SessionAttributes map[string]string
	FulfillmentState  string
	Message           string
}

func (c Close) LexResponse() events.LexResponse {
	return events.LexResponse{
		SessionAttributes: attributesOrEmpty(c.SessionAttributes),
		DialogAction: events.LexDialogAction{
			Type:             "Close",
			FulfillmentState: c.FulfillmentState,
			Message:          plainText(c.Message),
		},
	}
}

func (c Close) MarshalJSON() ([]byte, error) { return json.Marshal(c.LexResponse()) }

// ElicitIntent asks the user what they want to do next.
type ElicitIntent struct {
	SessionAttributes map[string]string
	Message           string
}

func (e ElicitIntent) LexResponse() events.LexResponse {
	return events.LexResponse{
		SessionAttributes: attributesOrEmpty(e.SessionAttributes),
		DialogAction: events.LexDialogAction{
			Type:    "ElicitIntent",
			Message: plainText(e.Message),
		},
	}
}

func (e ElicitIntent) MarshalJSON() ([]byte, error) { return json.Marshal(e.LexResponse()) }
