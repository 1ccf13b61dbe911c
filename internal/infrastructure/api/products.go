package api

import (
	"net/http"
	"strconv"

	"shopify-quantity-rules/internal/application"

	"github.com/rs/zerolog"
)

// ProductHandler searches the shop catalogue
type ProductHandler struct {
	products *application.ProductService
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *application.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// Search handles GET /api/products/search?shop=&q=&limit=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	products, err := h.products.Search(r.Context(), q.Get("shop"), q.Get("q"), limit)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to search products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}
