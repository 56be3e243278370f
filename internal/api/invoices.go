package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"tutelliv/internal/events"
	"tutelliv/internal/utils"
	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-pdf/fpdf"
)

// invoiceUpdateRequest is a partial update: absent fields keep their
// stored values, and the mission reference is frozen.
type invoiceUpdateRequest struct {
	Amount          *float64                                    `json:"amount"`
	Status          *types.InvoiceStatus                        `json:"status"`
	Note            *string                                     `json:"note"`
	LinesByCategory map[types.MissionCategory]types.InvoiceLine `json:"lines_by_category"`
	DeliveryFee     *float64                                    `json:"delivery_fee"`
}

func (s *Service) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.invoices.Invoices(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list invoices")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, invoices)
}

func (s *Service) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := flow.Param(r.Context(), "id")

	invoice, err := s.invoices.Invoice(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, types.ErrInvoiceNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Invoice not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch invoice")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, invoice)
}

func (s *Service) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireDeliverer(w, r); !ok {
		return
	}

	invoiceID := flow.Param(r.Context(), "id")

	invoice, err := s.invoices.Invoice(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, types.ErrInvoiceNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Invoice not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch invoice for update")
		s.internalServerError(w)
		return
	}

	var req invoiceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.Note != nil {
		invoice.Note = req.Note
	}
	if req.LinesByCategory != nil {
		invoice.LinesByCategory = req.LinesByCategory
	}
	if req.DeliveryFee != nil {
		invoice.DeliveryFee = req.DeliveryFee
	}

	if err := s.invoices.UpdateInvoice(r.Context(), invoiceID, invoice); err != nil {
		s.logger.WithError(err).Error("failed to update invoice")
		s.internalServerError(w)
		return
	}

	s.publish(events.TypeInvoiceUpdated, invoice)

	s.respondJSON(w, http.StatusOK, invoice)
}

func (s *Service) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := flow.Param(r.Context(), "id")

	if _, err := s.invoices.Invoice(r.Context(), invoiceID); err != nil {
		if errors.Is(err, types.ErrInvoiceNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Invoice not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch invoice for delete")
		s.internalServerError(w)
		return
	}

	if err := s.invoices.DeleteInvoice(r.Context(), invoiceID); err != nil {
		s.logger.WithError(err).Error("failed to delete invoice")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Service) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	invoiceID := flow.Param(r.Context(), "id")

	invoice, err := s.invoices.Invoice(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, types.ErrInvoiceNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Invoice not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch invoice for pdf")
		s.internalServerError(w)
		return
	}

	doc := buildInvoicePDF(invoice)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice_%s.pdf"`, invoice.ID))

	if err := doc.Output(w); err != nil {
		s.logger.WithError(err).Error("failed to write invoice pdf")
	}
}

func buildInvoicePDF(invoice *types.Invoice) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Invoice %s", invoice.ID), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, fmt.Sprintf("Invoice #%s", invoice.ID))
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 7, fmt.Sprintf("Mission: %s", invoice.MissionID))
	doc.Ln(7)
	doc.Cell(0, 7, fmt.Sprintf("Status: %s", invoice.Status))
	doc.Ln(7)
	doc.Cell(0, 7, fmt.Sprintf("Issued: %s", invoice.CreatedAt.Format(time.DateOnly)))
	doc.Ln(12)

	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 8, "Detail by category")
	doc.Ln(9)

	doc.SetFont("Helvetica", "", 11)
	if len(invoice.LinesByCategory) == 0 {
		doc.Cell(0, 7, "(no detail)")
		doc.Ln(7)
	} else {
		categories := make([]string, 0, len(invoice.LinesByCategory))
		for category := range invoice.LinesByCategory {
			categories = append(categories, string(category))
		}
		sort.Strings(categories)

		for _, category := range categories {
			line := invoice.LinesByCategory[types.MissionCategory(category)]
			doc.Cell(100, 7, fmt.Sprintf("%s  %s", category, utils.PtrString(line.Note)))
			doc.CellFormat(0, 7, fmt.Sprintf("%.2f EUR", line.Amount), "", 0, "R", false, 0, "")
			doc.Ln(7)
		}
	}

	doc.Ln(3)
	doc.Cell(100, 7, "Delivery fee")
	doc.CellFormat(0, 7, fmt.Sprintf("%.2f EUR", utils.PtrFloat64(invoice.DeliveryFee)), "", 0, "R", false, 0, "")
	doc.Ln(9)

	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(100, 8, "Total")
	doc.CellFormat(0, 8, fmt.Sprintf("%.2f EUR", invoice.Amount), "", 0, "R", false, 0, "")
	doc.Ln(10)

	if note := utils.PtrString(invoice.Note); note != "" {
		doc.SetFont("Helvetica", "I", 10)
		doc.MultiCell(0, 6, fmt.Sprintf("Note: %s", note), "", "L", false)
	}

	return doc
}
