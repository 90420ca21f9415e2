// Package lavoz retrieves and reads the house listings of the La Voz
// classifieds catalog.
package lavoz

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"house-finder/config"
)

// BaseURL is the catalog search page every query starts from.
const BaseURL = "https://clasificados.lavoz.com.ar/inmuebles/casas/alquileres?list=true"

// SearchURL builds the first result page URL for p.
func SearchURL(p config.SearchParams) string {
	var b strings.Builder
	b.WriteString(BaseURL)
	fmt.Fprintf(&b, "&provincia=%s&precio-desde=%d&precio-hasta=%d", url.QueryEscape(p.Province), p.MinPrice, p.MaxPrice)
	fmt.Fprintf(&b, "&moneda=%s&operacion=%s", url.QueryEscape(p.Currency), url.QueryEscape(p.Operation))
	fmt.Fprintf(&b, "&cantidad-de-dormitorios%%5B1%%5D=%d-dormitorios", p.Bedrooms)

	if p.City != "" {
		b.WriteString("&ciudad=" + url.QueryEscape(p.City))
	}
	if p.NeighborhoodType != "" {
		b.WriteString("&tipo-de-barrio=" + url.QueryEscape(p.NeighborhoodType))
	}
	if p.Neighborhood != "" {
		b.WriteString("&barrio[1]=" + url.QueryEscape(p.Neighborhood))
	}
	if p.UnitType != "" {
		b.WriteString("&tipo-de-unidad=" + url.QueryEscape(p.UnitType))
	}
	return b.String()
}

// PageURL returns the URL of result page n of the search at base.
func PageURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "&page=" + strconv.Itoa(n)
}

// ListingID extracts the listing id from a listing link: the third segment
// of its path, as in /avisos/casas/4567890/casa-en-alquiler.
func ListingID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(segments) < 3 {
		return ""
	}
	return segments[2]
}
