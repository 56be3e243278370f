package workflow

import (
	"context"
	"errors"
	"fmt"

	"tutelliv/pkg/types"
)

// MissionService is the slice of the remote API the workflow needs. The
// dashboard passes its API client; tests pass a fake.
type MissionService interface {
	UpdateMission(ctx context.Context, mission *types.Mission) (*types.Mission, error)
	InvoiceByMission(ctx context.Context, missionID string) (*types.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceID string, invoice *types.Invoice) (*types.Invoice, error)
}

// Accept moves a pending mission to in_progress. Categories and comments
// travel unchanged; anything not pending is rejected before the call.
func Accept(ctx context.Context, svc MissionService, mission *types.Mission) (*types.Mission, error) {
	if mission.Status != types.MissionStatusPending {
		return nil, validationErrorf("mission %s is %s, only pending missions can be accepted", mission.ID, mission.Status)
	}

	next := *mission
	next.Status = types.MissionStatusInProgress

	updated, err := svc.UpdateMission(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("accept mission %s: %w", mission.ID, err)
	}

	return updated, nil
}

// Deliver moves an in_progress mission to delivered and finalizes the
// linked invoice with the validated detail: status pending (awaiting
// payment), the computed amount, line items, fee and note.
//
// The two effects run strictly in sequence, mission first. A mission
// without an invoice is an accepted degraded path: the transition stands
// and the finalization is skipped, reported through the returned flag.
func Deliver(ctx context.Context, svc MissionService, mission *types.Mission, fin *Finalization) (*types.Mission, bool, error) {
	if mission.Status != types.MissionStatusInProgress {
		return nil, false, validationErrorf("mission %s is %s, only in_progress missions can be delivered", mission.ID, mission.Status)
	}
	if fin == nil {
		return nil, false, validationErrorf("delivery requires a finalized invoice detail")
	}

	next := *mission
	next.Status = types.MissionStatusDelivered

	updated, err := svc.UpdateMission(ctx, &next)
	if err != nil {
		return nil, false, fmt.Errorf("deliver mission %s: %w", mission.ID, err)
	}

	invoice, err := svc.InvoiceByMission(ctx, mission.ID)
	if err != nil {
		if errors.Is(err, types.ErrInvoiceNotFound) {
			return updated, false, nil
		}
		return updated, false, fmt.Errorf("locate invoice for mission %s: %w", mission.ID, err)
	}

	invoice.Status = types.InvoiceStatusPending
	invoice.Amount = fin.Amount
	invoice.LinesByCategory = fin.Lines
	invoice.DeliveryFee = &fin.DeliveryFee
	invoice.Note = fin.Note

	if _, err := svc.UpdateInvoice(ctx, invoice.ID, invoice); err != nil {
		return updated, false, fmt.Errorf("finalize invoice %s: %w", invoice.ID, err)
	}

	return updated, true, nil
}
