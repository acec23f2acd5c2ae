// Package event provides types and functions for calendar events.
//
// The event package decodes the raw per-day structures the calendar page keeps
// in its script state, normalizes impact labels, converts event times to
// absolute UTC instants, and flattens days into intermediate rows. Time
// conversion depends only on the document and the configured source timezone,
// never on the process environment.
package event
