// Package storage provides file-based persistence for raw month documents.
//
// Each scraped month is stored as days_YYYY_MM.json in the output directory,
// holding the page's day list verbatim. The existence of that file is the
// resume check: a month with a document is never fetched again. Documents and
// pipeline outputs are written through a temporary file and renamed into
// place, so an interrupted write never leaves a partial file behind.
package storage
