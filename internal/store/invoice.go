package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutelliv/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceTableName = "tutelliv.invoices"

type invoiceRow struct {
	ID              string    `db:"id"`
	MissionID       string    `db:"mission_id"`
	Amount          float64   `db:"amount"`
	Status          string    `db:"status"`
	Note            *string   `db:"note"`
	LinesByCategory []byte    `db:"lines_by_category"`
	DeliveryFee     *float64  `db:"delivery_fee"`
	CreatedAt       time.Time `db:"created_at"`
}

var invoiceColumns = []string{
	"id", "mission_id", "amount", "status", "note", "lines_by_category",
	"delivery_fee", "created_at",
}

type InvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

func (row *invoiceRow) toInvoice() (*types.Invoice, error) {
	invoice := &types.Invoice{
		ID:          row.ID,
		MissionID:   row.MissionID,
		Amount:      row.Amount,
		Status:      types.InvoiceStatus(row.Status),
		Note:        row.Note,
		DeliveryFee: row.DeliveryFee,
		CreatedAt:   row.CreatedAt,
	}

	if len(row.LinesByCategory) > 0 {
		if err := json.Unmarshal(row.LinesByCategory, &invoice.LinesByCategory); err != nil {
			return nil, fmt.Errorf("failed to decode invoice lines: %w", err)
		}
	}

	return invoice, nil
}

func invoiceToMap(invoice *types.Invoice) (map[string]any, error) {
	var lines any
	if invoice.LinesByCategory != nil {
		encoded, err := json.Marshal(invoice.LinesByCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to encode invoice lines: %w", err)
		}
		lines = encoded
	}

	return map[string]any{
		"id":                invoice.ID,
		"mission_id":        invoice.MissionID,
		"amount":            invoice.Amount,
		"status":            string(invoice.Status),
		"note":              invoice.Note,
		"lines_by_category": lines,
		"delivery_fee":      invoice.DeliveryFee,
		"created_at":        invoice.CreatedAt,
	}, nil
}

func (r *InvoiceRepository) Invoice(ctx context.Context, invoiceID string) (*types.Invoice, error) {
	query, args, err := psql().
		Select(invoiceColumns...).
		From(invoiceTableName).
		Where(sq.Eq{"id": invoiceID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice query: %w", err)
	}

	var row invoiceRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}

	return row.toInvoice()
}

func (r *InvoiceRepository) InvoiceByMission(ctx context.Context, missionID string) (*types.Invoice, error) {
	query, args, err := psql().
		Select(invoiceColumns...).
		From(invoiceTableName).
		Where(sq.Eq{"mission_id": missionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice by mission query: %w", err)
	}

	var row invoiceRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice by mission: %w", err)
	}

	return row.toInvoice()
}

func (r *InvoiceRepository) Invoices(ctx context.Context) ([]*types.Invoice, error) {
	query, args, err := psql().
		Select(invoiceColumns...).
		From(invoiceTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoices query: %w", err)
	}

	rows := make([]*invoiceRow, 0)
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	invoices := make([]*types.Invoice, 0, len(rows))
	for _, row := range rows {
		invoice, err := row.toInvoice()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	return invoices, nil
}

func (r *InvoiceRepository) CreateInvoice(ctx context.Context, invoice *types.Invoice) error {

	invoice.ID = uuid.NewString()
	invoice.CreatedAt = time.Now()

	invoiceMap, err := invoiceToMap(invoice)
	if err != nil {
		return err
	}

	query, args, err := psql().Insert(invoiceTableName).SetMap(invoiceMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert invoice query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

func (r *InvoiceRepository) UpdateInvoice(ctx context.Context, invoiceID string, invoice *types.Invoice) error {

	invoice.ID = invoiceID

	invoiceMap, err := invoiceToMap(invoice)
	if err != nil {
		return err
	}
	delete(invoiceMap, "created_at")
	delete(invoiceMap, "mission_id") // mission reference is frozen

	query, args, err := psql().Update(invoiceTableName).SetMap(invoiceMap).Where(sq.Eq{"id": invoiceID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update invoice query for invoice %s: %w", invoiceID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	return nil
}

func (r *InvoiceRepository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	query, args, err := psql().Delete(invoiceTableName).Where(sq.Eq{"id": invoiceID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete invoice query for invoice %s: %w", invoiceID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	return nil
}

func (r *InvoiceRepository) PendingInvoiceCount(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(invoiceTableName).
		Where(sq.Eq{"status": string(types.InvoiceStatusPending)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate pending invoice count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count pending invoices: %w", err)
	}

	return count, nil
}
