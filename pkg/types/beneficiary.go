package types

import (
	"errors"
	"time"
)

var ErrBeneficiaryNotFound = errors.New("beneficiary not found")

type Beneficiary struct {
	ID         string    `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Address    string    `db:"address" json:"address"`
	City       *string   `db:"city" json:"city,omitempty"`
	PostalCode *string   `db:"postal_code" json:"postal_code,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	PhotoURL   *string   `db:"photo_url" json:"photo_url,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (b *Beneficiary) FullName() string {
	return b.FirstName + " " + b.LastName
}
