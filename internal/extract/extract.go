// Package extract defines the boundary to the scheduling platform's
// journal. The real scraper lives behind the Extractor interface; the
// engine only ever sees validated RawBooking values and the date range
// a cycle actually covered.
package extract

import "context"

// RawBooking is one journal record as scraped, before normalization.
type RawBooking struct {
	ClientName    string
	Phone         string
	Date          string
	Time          string
	Duration      string
	VisitLabel    string
	Staff         string
	Service       string
	ReferenceLink string
}

// Result is the outcome of one scrape cycle. CoveredFrom/CoveredTo (in
// canonical DD.MM.YYYY form) bound the journal range that was actually
// read; reconciliation only cancels bookings inside that range. A zero
// range means the coverage is unknown and absence alone cancels.
type Result struct {
	Bookings    []RawBooking
	CoveredFrom string
	CoveredTo   string
}

// Extractor performs one login+scrape cycle against the platform.
type Extractor interface {
	Scrape(ctx context.Context) (Result, error)
}

// Func adapts a plain function to the Extractor interface.
type Func func(ctx context.Context) (Result, error)

func (f Func) Scrape(ctx context.Context) (Result, error) {
	return f(ctx)
}
