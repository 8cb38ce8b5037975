package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"liftassist-backend/internal/catalog"
)

type ProductsHandler struct {
	catalog *catalog.Catalog
}

func NewProductsHandler(cat *catalog.Catalog) *ProductsHandler {
	return &ProductsHandler{catalog: cat}
}

// List returns the catalog, narrowed by any filter query parameters.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := catalog.Filters{
		PowerSource:          q.Get("powerSource"),
		OperatingEnvironment: q.Get("operatingEnvironment"),
	}
	if raw := q.Get("loadCapacity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "loadCapacity must be a number", r))
			return
		}
		filters.LoadCapacity = n
	}

	products := h.catalog.GetByFilters(filters)
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get returns a single catalog record by id.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Product not found", r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
