package service

import (
	"fmt"
	"time"
)

// ComposeNote builds the human-readable audit line recorded on a cancelled
// service and its addons. Pure.
func ComposeNote(actor string, date time.Time, ticketRef string) string {
	note := fmt.Sprintf("Service cancelled by %s on %s", actor, date.Format("2006-01-02"))
	if ticketRef != "" {
		note += fmt.Sprintf(" through ticket %s", ticketRef)
	}
	return note
}

// appendNote attaches a note to existing free-text notes on its own line.
func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
