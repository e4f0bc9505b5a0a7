package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/util"
)

// ColonyRepository handles the append-only population log.
type ColonyRepository struct {
	db *sqlx.DB
}

// NewColonyRepository creates a new colony repository.
func NewColonyRepository(db *sqlx.DB) *ColonyRepository {
	return &ColonyRepository{db: db}
}

type colonyRow struct {
	ID                string `db:"id"`
	CurrentPopulation int    `db:"current_population"`
	UpdatedAt         string `db:"updated_at"`
}

func (r colonyRow) toModel() models.ColonyState {
	s := models.ColonyState{ID: r.ID, CurrentPopulation: r.CurrentPopulation}
	s.UpdatedAt, _ = util.ParseTimestamp(r.UpdatedAt)
	return s
}

// Latest returns the most recent colony state. ErrNotFound means the log
// is empty.
func (r *ColonyRepository) Latest(ctx context.Context, tx *sqlx.Tx) (*models.ColonyState, error) {
	var row colonyRow
	query := `
		SELECT id, current_population, updated_at
		FROM colony_state
		ORDER BY updated_at DESC, rowid DESC
		LIMIT 1`

	if err := sqlx.GetContext(ctx, r.queryer(tx), &row, query); err != nil {
		return nil, notFound(err, "getting latest colony state")
	}
	state := row.toModel()
	return &state, nil
}

// Append records a new population value.
func (r *ColonyRepository) Append(ctx context.Context, tx *sqlx.Tx, state *models.ColonyState) error {
	row := colonyRow{
		ID:                state.ID,
		CurrentPopulation: state.CurrentPopulation,
		UpdatedAt:         util.FormatTimestamp(state.UpdatedAt),
	}

	query := `
		INSERT INTO colony_state (id, current_population, updated_at)
		VALUES (:id, :current_population, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.queryer(tx), query, row); err != nil {
		return fmt.Errorf("inserting colony state: %w", err)
	}
	return nil
}

// List returns the population log newest first, at most limit rows.
// A limit of zero or less returns every row.
func (r *ColonyRepository) List(ctx context.Context, tx *sqlx.Tx, limit int) ([]models.ColonyState, error) {
	query := `
		SELECT id, current_population, updated_at
		FROM colony_state
		ORDER BY updated_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []colonyRow
	if err := sqlx.SelectContext(ctx, r.queryer(tx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing colony states: %w", err)
	}

	states := make([]models.ColonyState, 0, len(rows))
	for _, row := range rows {
		states = append(states, row.toModel())
	}
	return states, nil
}

func (r *ColonyRepository) queryer(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.db
}
