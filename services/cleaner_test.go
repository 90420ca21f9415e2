package services

import (
	"io"
	"testing"

	"house-finder/models"
	"house-finder/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger(io.Discard, false) }

func TestCleanerFillsPlaceholders(t *testing.T) {
	c := NewCleaner(newTestLogger())
	out := c.Clean([]models.RawListing{{ID: "10", Link: "https://example.com/avisos/casas/10"}})

	if len(out) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(out))
	}
	got := out[0]
	if got.Description != MissingDescription {
		t.Errorf("Description: got %q, want %q", got.Description, MissingDescription)
	}
	if got.Neighborhood != MissingNeighborhood {
		t.Errorf("Neighborhood: got %q, want %q", got.Neighborhood, MissingNeighborhood)
	}
	if got.Price != MissingPrice {
		t.Errorf("Price: got %q, want %q", got.Price, MissingPrice)
	}
	if got.Detail != MissingDetail {
		t.Errorf("Detail: got %q, want %q", got.Detail, MissingDetail)
	}
}

func TestCleanerDropsMissingID(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawListing{
		{ID: "", Description: "No id"},
		{ID: "  ", Description: "Blank id"},
		{ID: "11", Description: "Has id"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after dropping missing ids, got %d", len(cleaned))
	}
	if cleaned[0].ID != "11" {
		t.Errorf("ID: got %q, want %q", cleaned[0].ID, "11")
	}
}

func TestCleanerNormalisesWhitespace(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cleaned := c.Clean([]models.RawListing{{
		ID:          " 12 ",
		Description: "  Casa   3 dormitorios\n\tcon patio ",
		Price:       "$ 60.000 ",
	}})

	if cleaned[0].ID != "12" {
		t.Errorf("ID: got %q", cleaned[0].ID)
	}
	if cleaned[0].Description != "Casa 3 dormitorios con patio" {
		t.Errorf("Description: got %q", cleaned[0].Description)
	}
	if cleaned[0].Price != "$ 60.000" {
		t.Errorf("Price: got %q", cleaned[0].Price)
	}
}

func TestCleanerKeepsOrderAndDuplicates(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cleaned := c.Clean([]models.RawListing{{ID: "3"}, {ID: "1"}, {ID: "3"}})

	want := []string{"3", "1", "3"}
	if len(cleaned) != len(want) {
		t.Fatalf("len: got %d, want %d", len(cleaned), len(want))
	}
	for i, id := range want {
		if cleaned[i].ID != id {
			t.Errorf("cleaned[%d].ID: got %q, want %q", i, cleaned[i].ID, id)
		}
	}
}
