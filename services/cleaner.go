package services

import (
	"strings"
	"unicode"

	"house-finder/models"
	"house-finder/utils"
)

// Placeholder text stored when the catalog omits a display field.
const (
	MissingDescription  = "***falta la descripcion***"
	MissingNeighborhood = "no especificado"
	MissingPrice        = "consultar"
	MissingDetail       = "Sin informacion adicional"
)

// Cleaner turns extracted records into records ready for reconciliation.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean normalises whitespace, fills missing display fields with placeholder
// text and drops records without an id. Order is preserved.
func (c *Cleaner) Clean(raw []models.RawListing) []models.RawListing {
	result := make([]models.RawListing, 0, len(raw))

	for _, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			c.logger.Debug("[cleaner] Dropping listing without id: %s", r.Link)
			continue
		}

		result = append(result, models.RawListing{
			ID:           id,
			Description:  orDefault(normaliseText(r.Description), MissingDescription),
			Neighborhood: orDefault(normaliseText(r.Neighborhood), MissingNeighborhood),
			Price:        orDefault(normaliseText(r.Price), MissingPrice),
			Link:         strings.TrimSpace(r.Link),
			Detail:       orDefault(normaliseText(r.Detail), MissingDetail),
		})
	}

	if dropped := len(raw) - len(result); dropped > 0 {
		c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d without id)",
			len(raw), len(result), dropped)
	}
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
