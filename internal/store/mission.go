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

const missionTableName = "tutelliv.missions"

// Missions carry two jsonb columns (categories, comments_by_category), so
// rows go through an explicit row struct instead of the reflection helpers.
type missionRow struct {
	ID                 string     `db:"id"`
	BeneficiaryID      string     `db:"beneficiary_id"`
	Categories         []byte     `db:"categories"`
	CommentsByCategory []byte     `db:"comments_by_category"`
	GeneralComment     *string    `db:"general_comment"`
	Status             string     `db:"status"`
	CreatedAt          time.Time  `db:"created_at"`
	CalendarStart      *time.Time `db:"calendar_start"`
	CalendarEnd        *time.Time `db:"calendar_end"`
}

var missionColumns = []string{
	"id", "beneficiary_id", "categories", "comments_by_category",
	"general_comment", "status", "created_at", "calendar_start", "calendar_end",
}

type MissionRepository struct {
	pool *pgxpool.Pool
}

func NewMissionRepository(pool *pgxpool.Pool) *MissionRepository {
	return &MissionRepository{pool: pool}
}

func (row *missionRow) toMission() (*types.Mission, error) {
	mission := &types.Mission{
		ID:             row.ID,
		BeneficiaryID:  row.BeneficiaryID,
		GeneralComment: row.GeneralComment,
		Status:         types.MissionStatus(row.Status),
		CreatedAt:      row.CreatedAt,
		CalendarStart:  row.CalendarStart,
		CalendarEnd:    row.CalendarEnd,
	}

	if len(row.Categories) > 0 {
		if err := json.Unmarshal(row.Categories, &mission.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode mission categories: %w", err)
		}
	}
	if len(row.CommentsByCategory) > 0 {
		if err := json.Unmarshal(row.CommentsByCategory, &mission.CommentsByCategory); err != nil {
			return nil, fmt.Errorf("failed to decode mission comments: %w", err)
		}
	}

	return mission, nil
}

func missionToMap(mission *types.Mission) (map[string]any, error) {
	categories, err := json.Marshal(mission.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mission categories: %w", err)
	}

	var comments any
	if mission.CommentsByCategory != nil {
		encoded, err := json.Marshal(mission.CommentsByCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to encode mission comments: %w", err)
		}
		comments = encoded
	}

	return map[string]any{
		"id":                   mission.ID,
		"beneficiary_id":       mission.BeneficiaryID,
		"categories":           categories,
		"comments_by_category": comments,
		"general_comment":      mission.GeneralComment,
		"status":               string(mission.Status),
		"created_at":           mission.CreatedAt,
		"calendar_start":       mission.CalendarStart,
		"calendar_end":         mission.CalendarEnd,
	}, nil
}

func (r *MissionRepository) Mission(ctx context.Context, missionID string) (*types.Mission, error) {
	query, args, err := psql().
		Select(missionColumns...).
		From(missionTableName).
		Where(sq.Eq{"id": missionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mission query: %w", err)
	}

	var row missionRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrMissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch mission: %w", err)
	}

	return row.toMission()
}

func (r *MissionRepository) Missions(ctx context.Context) ([]*types.Mission, error) {
	query, args, err := psql().
		Select(missionColumns...).
		From(missionTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate missions query: %w", err)
	}

	rows := make([]*missionRow, 0)
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch missions: %w", err)
	}

	missions := make([]*types.Mission, 0, len(rows))
	for _, row := range rows {
		mission, err := row.toMission()
		if err != nil {
			return nil, err
		}
		missions = append(missions, mission)
	}

	return missions, nil
}

func (r *MissionRepository) CreateMission(ctx context.Context, mission *types.Mission) error {

	mission.ID = uuid.NewString()
	mission.CreatedAt = time.Now()

	missionMap, err := missionToMap(mission)
	if err != nil {
		return err
	}

	query, args, err := psql().Insert(missionTableName).SetMap(missionMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert mission query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create mission: %w", err)
	}

	return nil
}

func (r *MissionRepository) UpdateMission(ctx context.Context, missionID string, mission *types.Mission) error {

	mission.ID = missionID

	missionMap, err := missionToMap(mission)
	if err != nil {
		return err
	}
	delete(missionMap, "created_at")

	query, args, err := psql().Update(missionTableName).SetMap(missionMap).Where(sq.Eq{"id": missionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update mission query for mission %s: %w", missionID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update mission: %w", err)
	}

	return nil
}

func (r *MissionRepository) DeleteMission(ctx context.Context, missionID string) error {
	query, args, err := psql().Delete(missionTableName).Where(sq.Eq{"id": missionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete mission query for mission %s: %w", missionID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete mission: %w", err)
	}

	return nil
}

// MissionsInProgressCount counts missions still moving through the
// workflow, awaiting pickup included.
func (r *MissionRepository) MissionsInProgressCount(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(missionTableName).
		Where(sq.Eq{"status": []string{
			string(types.MissionStatusPending),
			string(types.MissionStatusInProgress),
		}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate mission count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count missions in progress: %w", err)
	}

	return count, nil
}
