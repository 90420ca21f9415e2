package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"house-finder/models"
)

type recordingOpener struct {
	calls []string
	err   error
}

func (o *recordingOpener) OpenWindow(url string) error {
	o.calls = append(o.calls, "window "+url)
	return o.err
}

func (o *recordingOpener) OpenTab(url string) error {
	o.calls = append(o.calls, "tab "+url)
	return o.err
}

func presenterSnapshot() *models.Snapshot {
	return snapshotWith(
		models.Listing{ID: "10", Description: "Casa amplia", Neighborhood: "Centro", Price: "$ 50.000", Link: "https://x/10", Status: models.StatusActive},
		models.Listing{ID: "11", Description: "Duplex", Neighborhood: "Nueva Cordoba", Price: "consultar", Link: "https://x/11", Status: models.StatusDiscarded},
		models.Listing{ID: "12", Description: "Chalet", Neighborhood: "no especificado", Price: "$ 60.000", Link: "https://x/12", Status: models.StatusNew},
	)
}

func TestPresenterPrintsMatchingListings(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(&out, nil, "", "alquileres", newTestLogger())

	n := p.Show(presenterSnapshot(), models.NewStatusSet(models.StatusNew, models.StatusActive))
	if n != 2 {
		t.Errorf("shown: got %d, want 2", n)
	}

	want := "1- Listing 10: property for alquileres in Centro at $ 50.000\n" +
		"\tCasa amplia\n" +
		"\thttps://x/10\n" +
		"2- Listing 12: property for alquileres in no especificado at $ 60.000\n" +
		"\tChalet\n" +
		"\thttps://x/12\n"
	if out.String() != want {
		t.Errorf("output:\ngot  %q\nwant %q", out.String(), want)
	}
}

func TestPresenterUsesUnitType(t *testing.T) {
	p := NewPresenter(&bytes.Buffer{}, nil, "duplex", "ventas", newTestLogger())
	got := p.Headline(models.Listing{ID: "7", Neighborhood: "Alta Cordoba", Price: "u$s 90.000"})
	want := "Listing 7: duplex for ventas in Alta Cordoba at u$s 90.000"
	if got != want {
		t.Errorf("Headline: got %q, want %q", got, want)
	}
}

func TestPresenterOpensWindowThenTabs(t *testing.T) {
	var out bytes.Buffer
	opener := &recordingOpener{}
	p := NewPresenter(&out, opener, "", "alquileres", newTestLogger())

	p.Show(presenterSnapshot(), models.NewStatusSet(models.StatusNew, models.StatusActive, models.StatusDiscarded))

	want := []string{"window https://x/10", "tab https://x/11", "tab https://x/12"}
	if strings.Join(opener.calls, ",") != strings.Join(want, ",") {
		t.Errorf("opener calls: got %v, want %v", opener.calls, want)
	}
	if strings.Contains(out.String(), "https://") {
		t.Errorf("links should not be printed when opened: %q", out.String())
	}
}

func TestPresenterPrintsLinkWhenOpenFails(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(&out, &recordingOpener{err: errors.New("no display")}, "", "alquileres", newTestLogger())

	p.Show(presenterSnapshot(), models.NewStatusSet(models.StatusDiscarded))
	if !strings.Contains(out.String(), "\thttps://x/11\n") {
		t.Errorf("expected fallback link in %q", out.String())
	}
}

func TestPresenterNothingToShow(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(&out, nil, "", "alquileres", newTestLogger())

	if n := p.Show(presenterSnapshot(), models.NewStatusSet(models.StatusRemoved)); n != 0 {
		t.Errorf("shown: got %d, want 0", n)
	}
	if out.Len() != 0 {
		t.Errorf("output: got %q, want nothing", out.String())
	}
}

func TestShowRemovals(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(&out, nil, "", "alquileres", newTestLogger())

	p.ShowRemovals([]models.Removal{{ID: "10", Listing: models.Listing{Description: "Casa", Price: "$ 1", Link: "https://x/10"}}})
	want := "Listing 10 is no longer listed\n\tCasa | $ 1 | https://x/10\n"
	if out.String() != want {
		t.Errorf("output: got %q, want %q", out.String(), want)
	}
}
