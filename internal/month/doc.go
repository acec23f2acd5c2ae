// Package month identifies units of scrape work.
//
// A Key is a (year, month) pair. It names one calendar page on the source site
// (via its month token, e.g. "jan.2021") and one raw document on disk
// (days_2021_01.json). Keys are iterated chronologically over a date range.
package month
