package client

import (
	"context"
	"math"
	"net/http"
	"strings"

	"wheelstore/internal/models"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 6

// Filter is the transient, view-only filter state.
type Filter struct {
	Search   string
	Category string // exact match, or "all"
	PriceMin float64
	PriceMax float64 // inclusive
}

// Page is one rendered catalog page.
type Page struct {
	Items     []models.Product
	Number    int
	PageCount int
}

// Catalog holds the full product list and derives the filtered, paginated
// view from it. Products are never mutated here.
type Catalog struct {
	api      *API
	products []models.Product
	filter   Filter
	page     int
}

func NewCatalog(api *API) *Catalog {
	return &Catalog{
		api:    api,
		filter: Filter{Category: "all", PriceMin: 0, PriceMax: math.MaxFloat64},
		page:   1,
	}
}

// Load fetches the full catalog and resets to the first page.
func (c *Catalog) Load(ctx context.Context) error {
	var products []models.Product
	if err := c.api.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return err
	}
	c.products = products
	c.page = 1
	return nil
}

// SetProducts replaces the product list directly (used by tests and any
// caller with a preloaded catalog).
func (c *Catalog) SetProducts(products []models.Product) {
	c.products = products
	c.page = 1
}

// Products returns the unfiltered catalog.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// SetFilter replaces the filter state and resets pagination to page 1.
func (c *Catalog) SetFilter(search, category string, priceMin, priceMax float64) {
	c.filter = Filter{
		Search:   search,
		Category: category,
		PriceMin: priceMin,
		PriceMax: priceMax,
	}
	c.page = 1
}

// Filter returns the current filter state.
func (c *Catalog) Filter() Filter { return c.filter }

// SetPage moves to page n; out-of-range values are corrected on render.
func (c *Catalog) SetPage(n int) {
	if n >= 1 {
		c.page = n
	}
}

// filtered applies the predicate: exact category (or "all"),
// case-insensitive substring on name, inclusive price range.
func (c *Catalog) filtered() []models.Product {
	search := strings.ToLower(c.filter.Search)
	var out []models.Product
	for _, p := range c.products {
		if c.filter.Category != "all" && c.filter.Category != "" && p.Type != c.filter.Category {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if p.Price < c.filter.PriceMin || p.Price > c.filter.PriceMax {
			continue
		}
		out = append(out, p)
	}
	return out
}

// VisiblePage renders the current page: at most PageSize items, plus the
// page count for the pagination buttons. A page past the end falls back to
// page 1; an empty filtered set yields an empty page and zero buttons.
func (c *Catalog) VisiblePage() Page {
	filtered := c.filtered()
	pageCount := (len(filtered) + PageSize - 1) / PageSize

	if c.page > pageCount {
		c.page = 1
	}
	if pageCount == 0 {
		return Page{Items: []models.Product{}, Number: 1, PageCount: 0}
	}

	start := (c.page - 1) * PageSize
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return Page{Items: filtered[start:end], Number: c.page, PageCount: pageCount}
}
