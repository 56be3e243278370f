package types

import (
	"errors"
	"time"
)

var ErrMissionNotFound = errors.New("mission not found")

type MissionStatus string

const (
	MissionStatusPending    MissionStatus = "pending"
	MissionStatusInProgress MissionStatus = "in_progress"
	MissionStatusDelivered  MissionStatus = "delivered"

	// Produced server-side only; accepted on read, terminal.
	MissionStatusCanceled MissionStatus = "canceled"
)

type MissionCategory string

const (
	CategoryFood           MissionCategory = "FOOD"
	CategoryHygiene        MissionCategory = "HYGIENE"
	CategoryTobaccoMandate MissionCategory = "TOBACCO_MANDATE"
	CategoryCashDelivery   MissionCategory = "CASH_DELIVERY"
	CategoryOther          MissionCategory = "OTHER"
)

var MissionCategories = []MissionCategory{
	CategoryFood,
	CategoryHygiene,
	CategoryTobaccoMandate,
	CategoryCashDelivery,
	CategoryOther,
}

func ValidCategory(c MissionCategory) bool {
	for _, known := range MissionCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Mission struct {
	ID                 string                     `db:"id" json:"id"`
	BeneficiaryID      string                     `db:"beneficiary_id" json:"beneficiary_id"`
	Categories         []MissionCategory          `db:"categories" json:"categories"`
	CommentsByCategory map[MissionCategory]string `db:"comments_by_category" json:"comments_by_category,omitempty"`
	GeneralComment     *string                    `db:"general_comment" json:"general_comment,omitempty"`

	// Legacy single-value shape, emitted for older consumers and folded
	// back into the canonical fields by Normalize on ingestion.
	Category *MissionCategory `db:"-" json:"category,omitempty"`
	Comment  *string          `db:"-" json:"comment,omitempty"`

	Status        MissionStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	CalendarStart *time.Time    `db:"calendar_start" json:"calendar_start,omitempty"`
	CalendarEnd   *time.Time    `db:"calendar_end" json:"calendar_end,omitempty"`
}

// Normalize folds the legacy single category/comment shape into the
// canonical list shape. Core logic only ever sees the canonical fields.
func (m *Mission) Normalize() {
	if len(m.Categories) == 0 && m.Category != nil {
		m.Categories = []MissionCategory{*m.Category}
	}
	if m.GeneralComment == nil && m.Comment != nil {
		m.GeneralComment = m.Comment
	}
	m.Category = nil
	m.Comment = nil
}

// Denormalize fills the legacy fields from the canonical shape for
// responses read by older consumers.
func (m *Mission) Denormalize() {
	if len(m.Categories) > 0 {
		first := m.Categories[0]
		m.Category = &first
	}
	m.Comment = m.GeneralComment
}
