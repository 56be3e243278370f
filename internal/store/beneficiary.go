package store

import (
	"context"
	"fmt"
	"time"

	"tutelliv/internal/utils"
	"tutelliv/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const beneficiaryTableName = "tutelliv.beneficiaries"

var beneficiaryColumns = utils.StructTagValues(types.Beneficiary{})

type BeneficiaryRepository struct {
	pool *pgxpool.Pool
}

func NewBeneficiaryRepository(pool *pgxpool.Pool) *BeneficiaryRepository {
	return &BeneficiaryRepository{pool: pool}
}

func (r *BeneficiaryRepository) Beneficiary(ctx context.Context, beneficiaryID string) (*types.Beneficiary, error) {
	query, args, err := psql().
		Select(beneficiaryColumns...).
		From(beneficiaryTableName).
		Where(sq.Eq{"id": beneficiaryID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate beneficiary query: %w", err)
	}

	var beneficiary types.Beneficiary
	err = pgxscan.Get(ctx, r.pool, &beneficiary, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrBeneficiaryNotFound
		}
		return nil, fmt.Errorf("failed to fetch beneficiary: %w", err)
	}

	return &beneficiary, nil
}

func (r *BeneficiaryRepository) Beneficiaries(ctx context.Context) ([]*types.Beneficiary, error) {
	query, args, err := psql().
		Select(beneficiaryColumns...).
		From(beneficiaryTableName).
		OrderBy("last_name asc, first_name asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate beneficiaries query: %w", err)
	}

	beneficiaries := make([]*types.Beneficiary, 0)
	if err := pgxscan.Select(ctx, r.pool, &beneficiaries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch beneficiaries: %w", err)
	}

	return beneficiaries, nil
}

func (r *BeneficiaryRepository) CreateBeneficiary(ctx context.Context, beneficiary *types.Beneficiary) error {

	beneficiary.ID = utils.NanoID()
	beneficiary.CreatedAt = time.Now()

	beneficiaryMap := utils.StructToMap(beneficiary)

	query, args, err := psql().Insert(beneficiaryTableName).SetMap(beneficiaryMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert beneficiary query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create beneficiary")
}

// ActiveBeneficiaryCount counts distinct beneficiaries with a mission
// created inside the window ending now.
func (r *BeneficiaryRepository) ActiveBeneficiaryCount(ctx context.Context, window time.Duration) (int, error) {
	query, args, err := psql().
		Select("count(distinct beneficiary_id)").
		From(missionTableName).
		Where(sq.GtOrEq{"created_at": time.Now().Add(-window)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate active beneficiary count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count active beneficiaries: %w", err)
	}

	return count, nil
}
