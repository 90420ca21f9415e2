package lavoz

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"house-finder/models"
)

// Result page layout. A search with a single page lays its announcements out
// one level shallower than a paginated one.
var (
	announcementsExpr          = xpath.MustCompile("/html/body/div[3]/div/div[2]/div/div[2]/div/div[2]/*")
	paginatedAnnouncementsExpr = xpath.MustCompile("/html/body/div[3]/div/div[2]/div/div[2]/div[2]/div[2]/*")
	paginationLinksExpr        = xpath.MustCompile("/html/body/div[3]/div/div[2]/div/div[2]/div[2]/div[4]/nav/div/ul/*/a")
)

// Announcement layout, relative to one announcement node.
var (
	linkExpr         = xpath.MustCompile("div[2]/div/a")
	descriptionExpr  = xpath.MustCompile("div[2]/div/a/div/text()")
	neighborhoodExpr = xpath.MustCompile("div[2]/div/div[3]/span[2]/text()")
	priceExpr        = xpath.MustCompile("div[2]/div/div[1]/div[1]/p/text()")
	detailExpr       = xpath.MustCompile("div[2]/div/div[4]/text()")
)

// Extractor reads catalog result pages.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// PageCount reads the number of result pages from the pagination bar. A page
// without pagination is the only one.
func (e *Extractor) PageCount(content []byte) (int, error) {
	doc, err := parse(content)
	if err != nil {
		return 0, err
	}
	links := htmlquery.QuerySelectorAll(doc, paginationLinksExpr)
	if len(links) == 0 {
		return 1, nil
	}

	href := htmlquery.SelectAttr(links[len(links)-1], "href")
	value := href[strings.LastIndex(href, "=")+1:]
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("extractor: last pagination link %q: %w", href, err)
	}
	return n, nil
}

// Listings returns the announcements of a result page in document order.
// Missing fields are left empty; an announcement without a usable link gets
// an empty ID.
func (e *Extractor) Listings(content []byte) ([]models.RawListing, error) {
	doc, err := parse(content)
	if err != nil {
		return nil, err
	}

	expr := announcementsExpr
	if htmlquery.QuerySelector(doc, paginationLinksExpr) != nil {
		expr = paginatedAnnouncementsExpr
	}

	nodes := htmlquery.QuerySelectorAll(doc, expr)
	listings := make([]models.RawListing, 0, len(nodes))
	for _, n := range nodes {
		listings = append(listings, announcement(n))
	}
	return listings, nil
}

func announcement(n *html.Node) models.RawListing {
	var link string
	if a := htmlquery.QuerySelector(n, linkExpr); a != nil {
		link = strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
	}
	return models.RawListing{
		ID:           ListingID(link),
		Description:  text(n, descriptionExpr),
		Neighborhood: text(n, neighborhoodExpr),
		Price:        text(n, priceExpr),
		Link:         link,
		Detail:       text(n, detailExpr),
	}
}

func text(n *html.Node, expr *xpath.Expr) string {
	t := htmlquery.QuerySelector(n, expr)
	if t == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(t))
}

func parse(content []byte) (*html.Node, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}
	return doc, nil
}
