package ingest

import (
	"time"

	"github.com/lotfolio/lotfolio/internal/model"
)

// ISODate is the only date layout the analysis core sorts correctly.
const ISODate = "2006-01-02"

// Day-first layouts seen in older hand-maintained ledgers.
var dayFirstLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"02-01-06",
	"02 Jan 2006",
}

// FixDate normalizes a day-first date string to ISO YYYY-MM-DD.
// Returns the (possibly rewritten) date and whether it changed.
// Strings already in ISO form, and strings matching no known layout,
// come back unchanged.
func FixDate(s string) (string, bool) {
	if _, err := time.Parse(ISODate, s); err == nil {
		return s, false
	}
	for _, layout := range dayFirstLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(ISODate), true
		}
	}
	return s, false
}

// FixDates repairs transaction dates in place and returns how many
// entries were rewritten.
func FixDates(transactions []model.Transaction) int {
	fixed := 0
	for i := range transactions {
		if transactions[i].Date == "" {
			continue
		}
		date, changed := FixDate(transactions[i].Date)
		if changed {
			transactions[i].Date = date
			fixed++
		}
	}
	return fixed
}
