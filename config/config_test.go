package config

import (
	"testing"

	"house-finder/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != CommandList {
		t.Errorf("Command: got %q, want %q", cfg.Command, CommandList)
	}
	if cfg.Category != DefaultCategory {
		t.Errorf("Category: got %q, want %q", cfg.Category, DefaultCategory)
	}
	if !cfg.Discovers() {
		t.Error("default list command should run discovery")
	}
	if got, want := cfg.Search.Key(), "cordoba_35000_70000_pesos_alquileres_3"; got != want {
		t.Errorf("Key: got %q, want %q", got, want)
	}
	if cfg.MaxPages != 500 {
		t.Errorf("MaxPages: got %d, want 500", cfg.MaxPages)
	}
}

func TestLoadMaxPages(t *testing.T) {
	cfg, err := Load([]string{"--max-pages", "40", "list"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxPages != 40 {
		t.Errorf("MaxPages: got %d, want 40", cfg.MaxPages)
	}
}

func TestLoadListCategory(t *testing.T) {
	cfg, err := Load([]string{"list", "discarded"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discovers() {
		t.Error("discarded view must not run discovery")
	}
	if !cfg.Show.Has(models.StatusDiscarded) || cfg.Show.Has(models.StatusActive) {
		t.Errorf("Show: got %v, want only discarded", cfg.Show)
	}
}

func TestLoadSpanishAliases(t *testing.T) {
	cfg, err := Load([]string{"listar", "nuevas"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != CommandList || !cfg.Show.Has(models.StatusNew) {
		t.Errorf("got command %q show %v", cfg.Command, cfg.Show)
	}
}

func TestLoadRemove(t *testing.T) {
	cfg, err := Load([]string{"remove", "4823"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != CommandRemove {
		t.Errorf("Command: got %q, want %q", cfg.Command, CommandRemove)
	}
	if cfg.RemoveID != "4823" {
		t.Errorf("RemoveID: got %q, want %q", cfg.RemoveID, "4823")
	}
	if cfg.Discovers() {
		t.Error("remove must not run discovery")
	}
}

func TestLoadUnknownCategory(t *testing.T) {
	if _, err := Load([]string{"list", "sold"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestLoadNormalizesPlaceNames(t *testing.T) {
	cfg, err := Load([]string{"-p", "Córdoba", "-c", "Villa Carlos Paz", "-B", "Nueva Córdoba"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Province != "cordoba" {
		t.Errorf("Province: got %q", cfg.Search.Province)
	}
	if cfg.Search.City != "villa-carlos-paz" {
		t.Errorf("City: got %q", cfg.Search.City)
	}
	if cfg.Search.Neighborhood != "nueva-cordoba" {
		t.Errorf("Neighborhood: got %q", cfg.Search.Neighborhood)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name string
		want []models.Status
	}{
		{"all", []models.Status{models.StatusNew, models.StatusActive, models.StatusRemoved}},
		{"new", []models.Status{models.StatusNew}},
		{"available", []models.Status{models.StatusNew, models.StatusActive}},
		{"removed", []models.Status{models.StatusRemoved, models.StatusDiscarded}},
		{"discarded", []models.Status{models.StatusDiscarded}},
		{"Disponibles", []models.Status{models.StatusNew, models.StatusActive}},
	}

	for _, tt := range tests {
		set, err := ParseCategory(tt.name)
		if err != nil {
			t.Errorf("ParseCategory(%q): %v", tt.name, err)
			continue
		}
		if len(set) != len(tt.want) {
			t.Errorf("ParseCategory(%q): got %d statuses, want %d", tt.name, len(set), len(tt.want))
		}
		for _, s := range tt.want {
			if !set.Has(s) {
				t.Errorf("ParseCategory(%q): missing %s", tt.name, s)
			}
		}
	}
}
