package types

import (
	"errors"
	"time"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

type InvoiceStatus string

const (
	InvoiceStatusEditing InvoiceStatus = "editing"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"

	// Legacy values accepted on read, never produced by any write path.
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
)

// DisplayBucket maps legacy statuses onto the buckets the dashboard
// groups by. draft predates editing, unpaid predates pending.
func (s InvoiceStatus) DisplayBucket() InvoiceStatus {
	switch s {
	case InvoiceStatusDraft:
		return InvoiceStatusEditing
	case InvoiceStatusUnpaid:
		return InvoiceStatusPending
	default:
		return s
	}
}

type InvoiceLine struct {
	Amount float64 `json:"amount"`
	Note   *string `json:"note,omitempty"`
}

type Invoice struct {
	ID              string                          `db:"id" json:"id"`
	MissionID       string                          `db:"mission_id" json:"mission_id"`
	Amount          float64                         `db:"amount" json:"amount"`
	Status          InvoiceStatus                   `db:"status" json:"status"`
	Note            *string                         `db:"note" json:"note,omitempty"`
	LinesByCategory map[MissionCategory]InvoiceLine `db:"lines_by_category" json:"lines_by_category,omitempty"` // jsonb
	DeliveryFee     *float64                        `db:"delivery_fee" json:"delivery_fee,omitempty"`
	CreatedAt       time.Time                       `db:"created_at" json:"created_at"`
}
