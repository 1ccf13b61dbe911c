package api

import (
	"net/http"

	"shopify-quantity-rules/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PrepShipmentHandler serves the prep shipment CRUD endpoints
type PrepShipmentHandler struct {
	shipments *application.PrepShipmentService
	logger    zerolog.Logger
}

// NewPrepShipmentHandler creates a new prep shipment handler
func NewPrepShipmentHandler(shipments *application.PrepShipmentService, logger zerolog.Logger) *PrepShipmentHandler {
	return &PrepShipmentHandler{
		shipments: shipments,
		logger:    logger,
	}
}

func (h *PrepShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.shipments.List(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch prep shipments")
		return
	}
	respondWithJSON(w, http.StatusOK, shipments)
}

func (h *PrepShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req prepShipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create prep shipment")
		return
	}

	shipment, err := h.shipments.Create(r.Context(), req.toInput())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create prep shipment")
		return
	}
	respondWithJSON(w, http.StatusCreated, shipment)
}

func (h *PrepShipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req prepShipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update prep shipment")
		return
	}

	shipment, err := h.shipments.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update prep shipment")
		return
	}
	respondWithJSON(w, http.StatusOK, shipment)
}

func (h *PrepShipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.shipments.Delete(r.Context(), r.URL.Query().Get("shop"), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete prep shipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
