package services

import (
	"fmt"
	"io"
	"strings"

	"house-finder/models"
	"house-finder/utils"
)

// InsightService summarises the state of one search snapshot.
type InsightService struct {
	out    io.Writer
	logger *utils.Logger
}

func NewInsightService(out io.Writer, logger *utils.Logger) *InsightService {
	return &InsightService{out: out, logger: logger}
}

// Generate counts the listings of s per status. today is a DateLayout date.
func (s *InsightService) Generate(key string, snap *models.Snapshot, today string) *models.StatusReport {
	report := &models.StatusReport{
		SearchKey: key,
		ByStatus:  make(map[models.Status]int),
	}

	for _, l := range snap.Listings() {
		report.TotalListings++
		report.ByStatus[l.Status]++
		if l.FirstSeen == today {
			report.FirstSeenToday++
		}
		// Legacy records may lack a date.
		if l.FirstSeen == "" {
			continue
		}
		if report.OldestFirstSeen == nil || l.FirstSeen < report.OldestFirstSeen.FirstSeen {
			oldest := l
			report.OldestFirstSeen = &oldest
		}
	}

	s.logger.Debug("[insights] %s: %d listings", key, report.TotalListings)
	return report
}

func (s *InsightService) Print(r *models.StatusReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(s.out, "\033[1;35m  📊 SEARCH SUMMARY\033[0m\n")
	fmt.Fprintf(s.out, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(s.out, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	fmt.Fprintf(s.out, "  Search key          : \033[1m%s\033[0m\n", truncate(r.SearchKey, 60))
	fmt.Fprintf(s.out, "  Tracked listings    : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(s.out, "  First seen today    : \033[1m%d\033[0m\n", r.FirstSeenToday)
	if r.OldestFirstSeen != nil {
		fmt.Fprintf(s.out, "  Oldest listing      : %s (since %s)\n", r.OldestFirstSeen.ID, r.OldestFirstSeen.FirstSeen)
	}
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "\033[1;33m  Listings by Status\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	if r.TotalListings == 0 {
		fmt.Fprintf(s.out, "  No listings tracked yet\n")
	} else {
		for _, st := range models.Statuses {
			cnt := r.ByStatus[st]
			if cnt == 0 {
				continue
			}
			bar := strings.Repeat("█", min(cnt, 40))
			fmt.Fprintf(s.out, "  %-12s %s (%d)\n", st, bar, cnt)
		}
	}

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
