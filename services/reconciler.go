package services

import (
	"errors"
	"fmt"
	"time"

	"house-finder/models"
)

// ErrUnknownListing is returned when an explicit removal names a listing
// that is not in the snapshot.
var ErrUnknownListing = errors.New("listing not found")

// Outcome describes what an observation did to the snapshot.
type Outcome int

const (
	// OutcomeDropped means the record had no id and was ignored.
	OutcomeDropped Outcome = iota
	// OutcomeInserted means the listing was seen for the first time.
	OutcomeInserted
	// OutcomeConfirmed means a known listing was seen again and is active.
	OutcomeConfirmed
	// OutcomeDiscarded means the listing was discarded by the operator and
	// stays that way.
	OutcomeDiscarded
)

// Reconciler is the listing lifecycle state machine. It is the only
// component that writes Listing.Status.
//
// A run is BeginRun, then Observe for every discovered record, then EndRun.
// BeginRun hands back a private copy, so the snapshot passed in keeps its
// pre-run state if the run is abandoned. Observe and EndRun mutate that copy
// and must only be given snapshots returned by BeginRun.
type Reconciler struct {
	now func() time.Time
}

// NewReconciler creates a Reconciler. A nil clock defaults to time.Now.
func NewReconciler(now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{now: now}
}

// Today returns the current calendar date in models.DateLayout.
func (r *Reconciler) Today() string {
	return r.now().Format(models.DateLayout)
}

// BeginRun returns a copy of prior with every listing that is not discarded
// marked tainted.
func (r *Reconciler) BeginRun(prior *models.Snapshot) *models.Snapshot {
	run := prior.Clone()
	for _, l := range run.Listings() {
		if l.Status == models.StatusDiscarded {
			continue
		}
		run.Update(l.ID, func(l *models.Listing) { l.Status = models.StatusTainted })
	}
	return run
}

// Observe applies one discovered record to the run snapshot. Display fields
// are refreshed on known listings; FirstSeen never changes.
func (r *Reconciler) Observe(run *models.Snapshot, raw models.RawListing) Outcome {
	if raw.ID == "" {
		return OutcomeDropped
	}

	existing, ok := run.Get(raw.ID)
	if !ok {
		run.Put(models.Listing{
			ID:           raw.ID,
			Description:  raw.Description,
			Detail:       raw.Detail,
			Neighborhood: raw.Neighborhood,
			Price:        raw.Price,
			Link:         raw.Link,
			Status:       models.StatusNew,
			FirstSeen:    r.Today(),
		})
		return OutcomeInserted
	}

	if existing.Status == models.StatusDiscarded {
		return OutcomeDiscarded
	}

	// BeginRun taints every listing that predates the run, so a listing that
	// is still new here was inserted by this run and stays new.
	status := models.StatusActive
	if existing.Status == models.StatusNew {
		status = models.StatusNew
	}

	run.Update(raw.ID, func(l *models.Listing) {
		l.Description = raw.Description
		l.Detail = raw.Detail
		l.Neighborhood = raw.Neighborhood
		l.Price = raw.Price
		l.Link = raw.Link
		l.Status = status
	})
	return OutcomeConfirmed
}

// EndRun moves every listing still tainted to removed and returns them.
func (r *Reconciler) EndRun(run *models.Snapshot) []models.Removal {
	var removed []models.Removal
	for _, l := range run.Listings() {
		if l.Status != models.StatusTainted {
			continue
		}
		run.Update(l.ID, func(l *models.Listing) { l.Status = models.StatusRemoved })
		l.Status = models.StatusRemoved
		removed = append(removed, models.Removal{ID: l.ID, Listing: l})
	}
	return removed
}

// Discard marks the listing as explicitly removed by the operator. It works
// outside of a run and returns ErrUnknownListing when id is absent.
func (r *Reconciler) Discard(s *models.Snapshot, id string) (models.Listing, error) {
	if _, ok := s.Get(id); !ok {
		return models.Listing{}, fmt.Errorf("discard %s: %w", id, ErrUnknownListing)
	}
	s.Update(id, func(l *models.Listing) { l.Status = models.StatusDiscarded })
	l, _ := s.Get(id)
	return l, nil
}
