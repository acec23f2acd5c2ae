// Package pipeline turns raw month documents into the final Parquet dataset.
//
// Three stages run in order. Parse flattens every days_YYYY_MM.json document
// into rows with UTC timestamps and writes them as CSV. Sanitize drops speech
// annotations. The parquet stage applies the currency and impact keep-sets,
// removes duplicate events, sorts by time and writes a zstd-compressed Parquet
// file with a fixed schema.
//
// Each stage can run on its own over the previous stage's CSV, or Run can
// execute all three in memory. Both paths produce the same bytes.
package pipeline
