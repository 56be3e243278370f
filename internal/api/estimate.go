package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tutelliv/internal/workflow"
)

type estimateItemRequest struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type estimateResponse struct {
	Subtotal    float64 `json:"subtotal"`
	Margin      float64 `json:"margin"`
	DeliveryFee float64 `json:"delivery_fee"`
	TVA         float64 `json:"tva"`
	Total       float64 `json:"total"`
}

// handleEstimate prices a shopping list without touching any entity;
// it needs no auth for the same reason.
func (s *Service) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req []estimateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]workflow.EstimateItem, 0, len(req))
	for _, item := range req {
		items = append(items, workflow.EstimateItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	estimate, err := workflow.ComputeEstimate(items)
	if err != nil {
		var validation *workflow.ValidationError
		if errors.As(err, &validation) {
			s.respondDetail(w, http.StatusBadRequest, validation.Message)
			return
		}
		s.logger.WithError(err).Error("failed to compute estimate")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, estimateResponse{
		Subtotal:    estimate.Subtotal,
		Margin:      estimate.Margin,
		DeliveryFee: estimate.DeliveryFee,
		TVA:         estimate.TVA,
		Total:       estimate.Total,
	})
}
