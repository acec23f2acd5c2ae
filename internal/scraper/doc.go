// Package scraper collects raw ForexFactory calendar months.
//
// The Collector walks a range of month keys in chronological order. A month
// whose document already exists is skipped without touching the browser.
// Otherwise the month's calendar page is loaded, the page-level
// window.calendarComponentStates object is polled until its day list appears,
// and the day list is written verbatim through storage.
//
// When the data never appears and the page carries a Cloudflare challenge, a
// screenshot is saved and the Collector blocks on a Prompter until a human has
// passed the check in the browser, then tries the extraction once more. A
// timeout without a challenge fails only that month; a state object whose
// shape no longer matches fails the whole run with ErrContractDrift.
package scraper
