package handlers

import (
	"fleet-trip-service/internal/api/dto"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/services"
	"net/http"
)

type StockHandler struct {
	Stock *services.StockService
}

func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.Stock.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "stock.get", err)
		return
	}
	writeJSON(w, r, http.StatusOK, stockResponse(st))
}

func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.Stock.Adjust(r.Context(), id, req.Delta, req.Reason)
	if err != nil {
		writeServiceError(w, r, "stock.adjust", err)
		return
	}
	writeJSON(w, r, http.StatusOK, stockResponse(st))
}

func stockResponse(st *domain.ProductStock) dto.StockResponse {
	return dto.StockResponse{
		ProductID:         st.ProductID,
		AvailableQuantity: st.AvailableQuantity,
		UpdatedAt:         st.UpdatedAt,
	}
}
