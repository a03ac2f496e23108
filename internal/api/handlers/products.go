package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/pagination"
	"github.com/onnwee/optimize-kit/backend/internal/respond"
)

// Product is a catalog entry.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// DemoProducts is the fixed catalog served by the demo API.
func DemoProducts() []Product {
	return []Product{
		{ID: 1, Name: "Premium Headphones", Price: 299, Category: "audio"},
		{ID: 2, Name: "Smart Watch", Price: 399, Category: "wearable"},
		{ID: 3, Name: "Laptop Stand", Price: 89, Category: "accessories"},
		{ID: 4, Name: "Mechanical Keyboard", Price: 149, Category: "peripherals"},
		{ID: 5, Name: "Wireless Mouse", Price: 69, Category: "peripherals"},
		{ID: 6, Name: "USB-C Hub", Price: 79, Category: "accessories"},
		{ID: 7, Name: "Monitor Arm", Price: 129, Category: "accessories"},
		{ID: 8, Name: "Webcam HD", Price: 89, Category: "peripherals"},
		{ID: 9, Name: "Desk Lamp", Price: 49, Category: "accessories"},
		{ID: 10, Name: "Cable Management", Price: 25, Category: "accessories"},
	}
}

// Catalog serves a read-only product list.
type Catalog struct {
	products   []Product
	categories map[string]bool
	byCategory func(string) []Product
}

// NewCatalog indexes products. Category filtering results are memoized for
// known categories only, so arbitrary query values cannot grow the memo.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products:   append([]Product(nil), products...),
		categories: make(map[string]bool),
	}
	for _, p := range c.products {
		c.categories[p.Category] = true
	}
	ttl := 5 * time.Minute
	c.byCategory = cache.Memoize(c.filter, cache.MemoOptions[string]{
		TTL:          &ttl,
		KeyGenerator: func(category string) string { return category },
	})
	return c
}

func (c *Catalog) filter(category string) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// List handles GET /api/products?page=&limit=&category=
func (c *Catalog) List(w http.ResponseWriter, r *http.Request) {
	items := c.products
	if category := r.URL.Query().Get("category"); category != "" {
		if c.categories[category] {
			items = c.byCategory(category)
		} else {
			items = nil
		}
	}

	page := pagination.Paginate(items, pagination.ParamsFromRequest(r))
	_ = respond.JSON(w, respond.Options{
		Data: page.Data,
		Meta: map[string]any{"pagination": page.Pagination},
	})
}

// Get handles GET /api/products/{id}. The product is written bare.
func (c *Catalog) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return apierr.BadRequest("Invalid product id")
	}
	for _, p := range c.products {
		if p.ID == id {
			w.Header().Set("Content-Type", "application/json")
			return json.NewEncoder(w).Encode(p)
		}
	}
	return apierr.NotFound("Product not found")
}
