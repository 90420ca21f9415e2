package services

import (
	"fmt"
	"io"

	"house-finder/models"
	"house-finder/utils"
)

// LinkOpener opens listing links outside the terminal.
type LinkOpener interface {
	OpenWindow(url string) error
	OpenTab(url string) error
}

// Presenter prints the listings of a snapshot that match a status set.
type Presenter struct {
	out       io.Writer
	opener    LinkOpener // nil prints links instead of opening them
	unitType  string
	operation string
	logger    *utils.Logger
}

// NewPresenter creates a Presenter. unitType and operation come from the
// search filters and only feed the headlines.
func NewPresenter(out io.Writer, opener LinkOpener, unitType, operation string, logger *utils.Logger) *Presenter {
	if unitType == "" {
		unitType = "property"
	}
	return &Presenter{
		out:       out,
		opener:    opener,
		unitType:  unitType,
		operation: operation,
		logger:    logger,
	}
}

// Headline is the one-line summary printed for l.
func (p *Presenter) Headline(l models.Listing) string {
	return fmt.Sprintf("Listing %s: %s for %s in %s at %s", l.ID, p.unitType, p.operation, l.Neighborhood, l.Price)
}

// Show prints every listing of snap whose status is in shown, in snapshot
// order, numbered from 1. With an opener the first link opens a new window
// and the rest open tabs. It returns how many listings were shown.
func (p *Presenter) Show(snap *models.Snapshot, shown models.StatusSet) int {
	n := 0
	for _, l := range snap.Listings() {
		if !shown.Has(l.Status) {
			continue
		}
		n++
		fmt.Fprintf(p.out, "%d- %s\n", n, p.Headline(l))
		fmt.Fprintf(p.out, "\t%s\n", l.Description)

		if p.opener == nil {
			fmt.Fprintf(p.out, "\t%s\n", l.Link)
			continue
		}
		open := p.opener.OpenTab
		if n == 1 {
			open = p.opener.OpenWindow
		}
		if err := open(l.Link); err != nil {
			p.logger.Warn("[presenter] Could not open %s: %v", l.Link, err)
			fmt.Fprintf(p.out, "\t%s\n", l.Link)
		}
	}
	return n
}

// ShowRemovals prints a notice for every listing that left the catalog.
func (p *Presenter) ShowRemovals(removed []models.Removal) {
	for _, r := range removed {
		fmt.Fprintf(p.out, "Listing %s is no longer listed\n", r.ID)
		fmt.Fprintf(p.out, "\t%s | %s | %s\n", r.Listing.Description, r.Listing.Price, r.Listing.Link)
	}
}
