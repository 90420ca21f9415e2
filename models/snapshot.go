package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is the set of listings tracked for one search key. Listings keep
// the order in which they were first discovered, and that order survives a
// JSON round trip.
type Snapshot struct {
	order    []string
	listings map[string]*Listing
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{listings: make(map[string]*Listing)}
}

// Len returns the number of listings.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// Get returns a copy of the listing with the given id.
func (s *Snapshot) Get(id string) (Listing, bool) {
	l, ok := s.listings[id]
	if !ok {
		return Listing{}, false
	}
	return *l, true
}

// Put inserts l at the end of the snapshot, or replaces the existing listing
// with the same ID in place.
func (s *Snapshot) Put(l Listing) {
	if s.listings == nil {
		s.listings = make(map[string]*Listing)
	}
	if existing, ok := s.listings[l.ID]; ok {
		*existing = l
		return
	}
	s.order = append(s.order, l.ID)
	s.listings[l.ID] = &l
}

// Update applies fn to the listing with the given id and reports whether it
// exists. fn must not change the listing ID.
func (s *Snapshot) Update(id string, fn func(*Listing)) bool {
	l, ok := s.listings[id]
	if !ok {
		return false
	}
	fn(l)
	l.ID = id
	return true
}

// Listings returns copies of all listings in snapshot order.
func (s *Snapshot) Listings() []Listing {
	out := make([]Listing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.listings[id])
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		order:    make([]string, len(s.order)),
		listings: make(map[string]*Listing, len(s.listings)),
	}
	copy(c.order, s.order)
	for id, l := range s.listings {
		cp := *l
		c.listings[id] = &cp
	}
	return c
}

// MarshalJSON encodes the snapshot as an object keyed by listing id, in
// snapshot order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.listings[id])
		if err != nil {
			return nil, fmt.Errorf("snapshot: encode listing %s: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// listingRecord is the persisted shape of a listing. Date is the field name
// used by older history files.
type listingRecord struct {
	Description  string `json:"description"`
	Detail       string `json:"detail"`
	Neighborhood string `json:"nbhd"`
	Price        string `json:"price"`
	Link         string `json:"link"`
	Status       string `json:"status"`
	FirstSeen    string `json:"first_seen_date"`
	Date         string `json:"date"`
}

func (r listingRecord) listing(id string) (Listing, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return Listing{}, err
	}
	if status == StatusTainted {
		return Listing{}, fmt.Errorf("status %q is never persisted", status)
	}
	firstSeen := r.FirstSeen
	if firstSeen == "" {
		firstSeen = r.Date
	}
	return Listing{
		ID:           id,
		Description:  r.Description,
		Detail:       r.Detail,
		Neighborhood: r.Neighborhood,
		Price:        r.Price,
		Link:         r.Link,
		Status:       status,
		FirstSeen:    firstSeen,
	}, nil
}

// UnmarshalJSON decodes an object keyed by listing id, keeping key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot: expected object, got %v", tok)
	}

	fresh := NewSnapshot()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		id, _ := tok.(string)
		if id == "" {
			return fmt.Errorf("snapshot: empty listing id")
		}
		if _, dup := fresh.listings[id]; dup {
			return fmt.Errorf("snapshot: duplicate listing id %s", id)
		}

		var rec listingRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("snapshot: listing %s: %w", id, err)
		}
		l, err := rec.listing(id)
		if err != nil {
			return fmt.Errorf("snapshot: listing %s: %w", id, err)
		}
		fresh.Put(l)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	*s = *fresh
	return nil
}

// History maps a search key to its snapshot. Snapshots of distinct keys never
// share listings.
type History map[string]*Snapshot

// Snapshot returns the snapshot stored for key, or an empty one.
func (h History) Snapshot(key string) *Snapshot {
	if s, ok := h[key]; ok && s != nil {
		return s
	}
	return NewSnapshot()
}
