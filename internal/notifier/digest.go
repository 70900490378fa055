package notifier

import (
	"fmt"
	"strings"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/queue"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/restaurants"
)

// Digest texts
const (
	digestHeaderFmt  = "Hello! Here are my %s restaurant suggestions for %s people, for %s at %s:"
	digestEntryFmt   = "%d. %s, located at %s"
	digestFooter     = "Enjoy your meal!"
	digestNoResults  = "Sorry, we could not find any matching restaurants."
	digestSubjectFmt = "Your %s dining suggestions"
)

// Digest is the email built for one dining request.
type Digest struct {
	Subject string
	Body    string
	Entries []restaurants.Record
}

// BuildDigest formats the suggestions for req. Entries are numbered in the order given.
func BuildDigest(req queue.DiningRequest, entries []restaurants.Record) Digest {
	var b strings.Builder
	fmt.Fprintf(&b, digestHeaderFmt, req.Cuisine, req.NumberOfPeople, req.Date, req.Time)
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(digestNoResults)
	} else {
		for i, r := range entries {
			fmt.Fprintf(&b, digestEntryFmt, i+1, r.Name, r.Address)
			b.WriteString("\n")
		}
		b.WriteString(digestFooter)
	}

	return Digest{
		Subject: fmt.Sprintf(digestSubjectFmt, req.Cuisine),
		Body:    b.String(),
		Entries: entries,
	}
}
