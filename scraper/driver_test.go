package scraper

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"house-finder/models"
	"house-finder/utils"
)

// fakeFetcher serves "page=N" as the content of page N and fails on the
// pages listed in failOn.
type fakeFetcher struct {
	mu      sync.Mutex
	failOn  map[int]error
	fetched []int
}

func (f *fakeFetcher) FetchPage(_ context.Context, page int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, page)
	if err := f.failOn[page]; err != nil {
		return nil, err
	}
	return []byte("page=" + strconv.Itoa(page)), nil
}

func (f *fakeFetcher) Close() error { return nil }

// fakeExtractor reports a fixed page count and yields ids "<page>-a" and
// "<page>-b" for every page, plus a repeated id "shared".
type fakeExtractor struct {
	pages int
}

func (e fakeExtractor) PageCount([]byte) (int, error) { return e.pages, nil }

func (e fakeExtractor) Listings(content []byte) ([]models.RawListing, error) {
	page := strings.TrimPrefix(string(content), "page=")
	return []models.RawListing{{ID: page + "-a"}, {ID: page + "-b"}, {ID: "shared"}}, nil
}

func newTestDriver(f PageFetcher, e Extractor, concurrency int) *Driver {
	return NewDriver(f, e, Options{MaxConcurrency: concurrency, MaxAttempts: 1}, utils.NewLogger(io.Discard, false))
}

func TestWalkVisitsPagesInOrder(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		d := newTestDriver(&fakeFetcher{}, fakeExtractor{pages: 5}, concurrency)

		var pages []int
		var ids []string
		stats, err := d.Walk(context.Background(), func(page int, listings []models.RawListing) {
			pages = append(pages, page)
			for _, l := range listings {
				ids = append(ids, l.ID)
			}
		})
		if err != nil {
			t.Fatalf("concurrency %d: Walk: %v", concurrency, err)
		}

		for i, p := range pages {
			if p != i+1 {
				t.Errorf("concurrency %d: pages[%d] = %d, want %d", concurrency, i, p, i+1)
			}
		}
		if ids[0] != "1-a" || ids[len(ids)-3] != "5-a" {
			t.Errorf("concurrency %d: unexpected id order %v", concurrency, ids)
		}
		want := Stats{Pages: 5, Listings: 15, Unique: 11, Repeated: 4}
		if stats != want {
			t.Errorf("concurrency %d: stats: got %+v, want %+v", concurrency, stats, want)
		}
	}
}

func TestWalkSinglePage(t *testing.T) {
	f := &fakeFetcher{}
	d := newTestDriver(f, fakeExtractor{pages: 0}, 1)

	calls := 0
	if _, err := d.Walk(context.Background(), func(int, []models.RawListing) { calls++ }); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if calls != 1 {
		t.Errorf("callback calls: got %d, want 1", calls)
	}
	if len(f.fetched) != 1 {
		t.Errorf("fetched: got %v, want only page 1", f.fetched)
	}
}

func TestWalkFirstPageFailure(t *testing.T) {
	boom := errors.New("connection refused")
	d := newTestDriver(&fakeFetcher{failOn: map[int]error{1: boom}}, fakeExtractor{pages: 3}, 1)

	calls := 0
	_, err := d.Walk(context.Background(), func(int, []models.RawListing) { calls++ })
	if !errors.Is(err, ErrFetch) || !errors.Is(err, boom) {
		t.Fatalf("err: got %v, want ErrFetch wrapping the transport error", err)
	}
	if calls != 0 {
		t.Errorf("callback calls: got %d, want 0", calls)
	}
}

func TestWalkLaterPageFailureDeliversNothing(t *testing.T) {
	boom := errors.New("502 bad gateway")
	for _, concurrency := range []int{1, 3} {
		d := newTestDriver(&fakeFetcher{failOn: map[int]error{3: boom}}, fakeExtractor{pages: 4}, concurrency)

		calls := 0
		_, err := d.Walk(context.Background(), func(int, []models.RawListing) { calls++ })
		if !errors.Is(err, boom) {
			t.Errorf("concurrency %d: err: got %v, want %v", concurrency, err, boom)
		}
		if calls != 0 {
			t.Errorf("concurrency %d: callback ran %d times before the failure surfaced", concurrency, calls)
		}
	}
}

func TestWalkPageLimit(t *testing.T) {
	tests := []struct {
		name     string
		pages    int
		maxPages int
		wantErr  bool
	}{
		{name: "default limit", pages: DefaultMaxPages + 1, wantErr: true},
		{name: "huge count", pages: 1 << 30, wantErr: true},
		{name: "custom limit", pages: 4, maxPages: 3, wantErr: true},
		{name: "at limit", pages: 3, maxPages: 3},
	}

	for _, tt := range tests {
		f := &fakeFetcher{}
		d := NewDriver(f, fakeExtractor{pages: tt.pages}, Options{MaxConcurrency: 2, MaxAttempts: 1, MaxPages: tt.maxPages}, utils.NewLogger(io.Discard, false))

		calls := 0
		_, err := d.Walk(context.Background(), func(int, []models.RawListing) { calls++ })
		if !tt.wantErr {
			if err != nil {
				t.Errorf("%s: Walk: %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, ErrTooManyPages) {
			t.Errorf("%s: err: got %v, want ErrTooManyPages", tt.name, err)
		}
		if calls != 0 {
			t.Errorf("%s: callback calls: got %d, want 0", tt.name, calls)
		}
		if len(f.fetched) != 1 {
			t.Errorf("%s: fetched: got %v, want only page 1", tt.name, f.fetched)
		}
	}
}
