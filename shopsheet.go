// Package shopsheet maintains a tabular shop-photo register in a single xlsx
// file. Each row is keyed by (shop, region) and carries an embedded photo
// whose cell is sized to exactly fit the image: the shared image-column width
// and the per-row height track the photo's pixel dimensions.
//
// The package assumes a single writer; one upsert is load → mutate → persist
// with a full-file overwrite, and concurrent upserts against the same file
// may lose a write entirely.
package shopsheet

import "io"

// Upsert writes one (key, photo) pair using a one-shot Engine.
func Upsert(shopID, region string, photo io.Reader, opts ...Option) Result {
	return NewEngine(opts...).Upsert(shopID, region, photo)
}

// ListRecords reads all persisted records in storage order.
func ListRecords(opts ...Option) ([]Record, error) {
	return NewEngine(opts...).ListRecords()
}
