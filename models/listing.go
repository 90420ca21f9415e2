package models

// DateLayout is the calendar-date format used for FirstSeen.
const DateLayout = "2006-01-02"

// RawListing holds the fields extracted for one catalog entry, before any
// fallback text is applied. A record without ID cannot be tracked.
type RawListing struct {
	ID           string
	Description  string
	Neighborhood string
	Price        string
	Link         string
	Detail       string
}

// Listing is one tracked advertisement inside a Snapshot.
type Listing struct {
	ID           string `json:"-"`
	Description  string `json:"description"`
	Detail       string `json:"detail"`
	Neighborhood string `json:"nbhd"`
	Price        string `json:"price"`
	Link         string `json:"link"`
	Status       Status `json:"status"`
	FirstSeen    string `json:"first_seen_date"`
}

// ExportHeader is the column order of a listing row in tabular exports.
var ExportHeader = []string{"id", "description", "detail", "nbhd", "price", "link", "status", "first_seen_date"}

// Row returns the listing as a tabular export row matching ExportHeader.
func (l Listing) Row() []string {
	return []string{l.ID, l.Description, l.Detail, l.Neighborhood, l.Price, l.Link, string(l.Status), l.FirstSeen}
}

// Removal reports a listing that was no longer found in the catalog.
type Removal struct {
	ID      string
	Listing Listing
}

// StatusReport holds per-status counts for one snapshot.
type StatusReport struct {
	SearchKey       string
	TotalListings   int
	ByStatus        map[Status]int
	FirstSeenToday  int
	OldestFirstSeen *Listing
}
