package types

import "time"

type Stats struct {
	MissionsInProgress  int       `json:"missions_in_progress"`
	BeneficiariesActive int       `json:"beneficiaries_active"`
	InvoicesPending     int       `json:"invoices_pending"`
	GeneratedAt         time.Time `json:"generated_at"`
}
