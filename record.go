package shopsheet

import (
	"sort"
	"strings"
)

// Record is one persisted row: a shop photo entry keyed by (ShopID, Region).
// The embedded photo itself is a positioned overlay on the row, not a field.
// Row is the record's actual 1-based sheet row; rows the loader skips leave
// gaps, so it cannot be derived from a record's position in a slice.
type Record struct {
	Row         int
	ShopID      string
	Region      string
	LastUpdated string
}

// Key returns the composite key identifying this record.
func (r Record) Key() Key {
	return Key{ShopID: r.ShopID, Region: r.Region}
}

// Key is the composite (shop, region) identifier. It is unique across rows;
// the engine never appends a second row for an existing key.
type Key struct {
	ShopID string
	Region string
}

func (k Key) String() string {
	return k.ShopID + "/" + k.Region
}

// Valid reports whether both key parts are non-empty after trimming.
func (k Key) Valid() bool {
	return strings.TrimSpace(k.ShopID) != "" && strings.TrimSpace(k.Region) != ""
}

// FindRow scans records in storage order and returns the sheet row of the
// first record matching key. The first match wins: duplicate keys left behind
// by external edits are never updated past the first.
func FindRow(records []Record, key Key) (int, bool) {
	for _, rec := range records {
		if rec.ShopID == key.ShopID && rec.Region == key.Region {
			return rec.Row, true
		}
	}
	return 0, false
}

// Regions returns the distinct regions across records, sorted, for picker
// population.
func Regions(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if !seen[rec.Region] {
			seen[rec.Region] = true
			out = append(out, rec.Region)
		}
	}
	sort.Strings(out)
	return out
}

// ShopIDs returns the distinct shop identifiers across records, sorted. With
// a non-empty region, only shops in that region are included.
func ShopIDs(records []Record, region string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if region != "" && rec.Region != region {
			continue
		}
		if !seen[rec.ShopID] {
			seen[rec.ShopID] = true
			out = append(out, rec.ShopID)
		}
	}
	sort.Strings(out)
	return out
}
