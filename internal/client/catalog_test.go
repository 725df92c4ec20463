package client

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelstore/internal/models"
)

func wheelFixtures() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Polyurethane Wheel Ø80mm", Price: 19.99, Type: "polyurethane"},
		{ID: 2, Name: "Nylon Wheel Ø70mm", Price: 14.50, Type: "nylon"},
		{ID: 3, Name: "Rubber Coated Wheel Ø90mm", Price: 22.00, Type: "rubber"},
		{ID: 4, Name: "Polyurethane Wheel Ø100mm", Price: 25.00, Type: "polyurethane"},
		{ID: 5, Name: "Nylon Wheel Ø85mm", Price: 17.80, Type: "nylon"},
		{ID: 6, Name: "Rubber Wheel Ø75mm", Price: 16.20, Type: "rubber"},
		{ID: 7, Name: "Polyurethane Wheel Ø110mm", Price: 28.40, Type: "polyurethane"},
		{ID: 8, Name: "Nylon Heavy Duty Ø95mm", Price: 20.00, Type: "nylon"},
		{ID: 9, Name: "Rubber Shock-Absorb Ø100mm", Price: 27.50, Type: "rubber"},
		{ID: 10, Name: "Polyurethane Silent Ø90mm", Price: 23.90, Type: "polyurethane"},
	}
}

func newTestCatalog() *Catalog {
	c := NewCatalog(nil)
	c.SetProducts(wheelFixtures())
	return c
}

func TestCatalogPagination(t *testing.T) {
	c := newTestCatalog()

	page := c.VisiblePage()
	assert.Len(t, page.Items, PageSize)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.PageCount)

	c.SetPage(2)
	page = c.VisiblePage()
	assert.Len(t, page.Items, 4)
	assert.Equal(t, 2, page.Number)
}

func TestCatalogPagesCoverFilteredSet(t *testing.T) {
	c := newTestCatalog()

	seen := map[int]bool{}
	pageCount := c.VisiblePage().PageCount
	for n := 1; n <= pageCount; n++ {
		c.SetPage(n)
		page := c.VisiblePage()
		assert.LessOrEqual(t, len(page.Items), PageSize)
		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "product %d shown twice", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, len(wheelFixtures()))
}

func TestCatalogCategoryFilter(t *testing.T) {
	c := newTestCatalog()
	c.SetFilter("", "nylon", 0, math.MaxFloat64)

	page := c.VisiblePage()
	require.Len(t, page.Items, 3)
	for _, p := range page.Items {
		assert.Equal(t, "nylon", p.Type)
	}

	c.SetFilter("", "all", 0, math.MaxFloat64)
	assert.Equal(t, 2, c.VisiblePage().PageCount)
}

func TestCatalogSearchIsCaseInsensitive(t *testing.T) {
	c := newTestCatalog()

	c.SetFilter("SILENT", "all", 0, math.MaxFloat64)
	page := c.VisiblePage()
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Polyurethane Silent Ø90mm", page.Items[0].Name)

	c.SetFilter("wheel", "all", 0, math.MaxFloat64)
	assert.Len(t, c.VisiblePage().Items, 6)
	c.SetPage(2)
	assert.Len(t, c.VisiblePage().Items, 1)
}

func TestCatalogPriceRangeIsInclusive(t *testing.T) {
	c := newTestCatalog()
	c.SetFilter("", "all", 15, 20)

	page := c.VisiblePage()
	require.Len(t, page.Items, 4)
	for _, p := range page.Items {
		assert.GreaterOrEqual(t, p.Price, 15.0)
		assert.LessOrEqual(t, p.Price, 20.0)
	}

	// Boundary value stays in.
	found := false
	for _, p := range page.Items {
		if p.Price == 20.00 {
			found = true
		}
	}
	assert.True(t, found, "price equal to the max must be included")
}

func TestCatalogFilterResetsPage(t *testing.T) {
	c := newTestCatalog()
	c.SetPage(2)
	require.Equal(t, 2, c.VisiblePage().Number)

	c.SetFilter("", "rubber", 0, math.MaxFloat64)
	assert.Equal(t, 1, c.VisiblePage().Number)
}

func TestCatalogPagePastEndFallsBack(t *testing.T) {
	c := newTestCatalog()
	c.SetPage(9)

	page := c.VisiblePage()
	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Items, PageSize)
}

func TestCatalogNoMatches(t *testing.T) {
	c := newTestCatalog()
	c.SetFilter("does-not-exist", "all", 0, math.MaxFloat64)

	page := c.VisiblePage()
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 0, page.PageCount)
}

func TestCatalogCombinedFilters(t *testing.T) {
	c := newTestCatalog()
	c.SetFilter("wheel", "polyurethane", 20, 30)

	page := c.VisiblePage()
	require.Len(t, page.Items, 2)
	for _, p := range page.Items {
		assert.Equal(t, "polyurethane", p.Type)
		assert.Contains(t, p.Name, "Wheel")
	}
}
