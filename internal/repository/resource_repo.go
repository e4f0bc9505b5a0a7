// Package repository implements SQLite persistence for resource kinds,
// statuses, history and the colony population log.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/util"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ResourceRepository handles resource data access.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// ============================================================================
// ROW MAPPINGS
// ============================================================================

type kindRow struct {
	ID                string          `db:"id"`
	Code              string          `db:"code"`
	DisplayName       string          `db:"display_name"`
	Unit              string          `db:"unit"`
	DefaultPerCapita  sql.NullFloat64 `db:"default_per_capita_consumption_per_hour"`
	DefaultSafeWindow sql.NullFloat64 `db:"default_safe_window_hours"`
	CreatedAt         string          `db:"created_at"`
	UpdatedAt         string          `db:"updated_at"`
}

func (r kindRow) toModel() *models.ResourceKind {
	k := &models.ResourceKind{
		ID:                              r.ID,
		Code:                            r.Code,
		DisplayName:                     r.DisplayName,
		Unit:                            r.Unit,
		DefaultPerCapitaConsumptionHour: floatPtr(r.DefaultPerCapita),
		DefaultSafeWindowHours:          floatPtr(r.DefaultSafeWindow),
	}
	k.CreatedAt, _ = util.ParseTimestamp(r.CreatedAt)
	k.UpdatedAt, _ = util.ParseTimestamp(r.UpdatedAt)
	return k
}

func newKindRow(k *models.ResourceKind) kindRow {
	return kindRow{
		ID:                k.ID,
		Code:              k.Code,
		DisplayName:       k.DisplayName,
		Unit:              k.Unit,
		DefaultPerCapita:  nullFloat(k.DefaultPerCapitaConsumptionHour),
		DefaultSafeWindow: nullFloat(k.DefaultSafeWindowHours),
		CreatedAt:         util.FormatTimestamp(k.CreatedAt),
		UpdatedAt:         util.FormatTimestamp(k.UpdatedAt),
	}
}

type statusRow struct {
	ID                 string          `db:"id"`
	KindID             string          `db:"kind_id"`
	CurrentPercentage  float64         `db:"current_percentage"`
	CriticalPercentage float64         `db:"critical_percentage"`
	CurrentQuantity    sql.NullFloat64 `db:"current_quantity"`
	MaxCapacity        sql.NullFloat64 `db:"max_capacity"`
	Population         sql.NullInt64   `db:"population"`
	PerCapita          sql.NullFloat64 `db:"per_capita_consumption_per_hour"`
	SafeWindow         sql.NullFloat64 `db:"safe_window_hours"`
	IsCritical         bool            `db:"is_critical"`
	LastUpdated        string          `db:"last_updated"`

	Kind kindRow `db:"kind"`
}

func (r statusRow) toModel() *models.ResourceStatus {
	s := &models.ResourceStatus{
		ID:                          r.ID,
		KindID:                      r.KindID,
		CurrentPercentage:           r.CurrentPercentage,
		CriticalPercentage:          r.CriticalPercentage,
		CurrentQuantity:             floatPtr(r.CurrentQuantity),
		MaxCapacity:                 floatPtr(r.MaxCapacity),
		PerCapitaConsumptionPerHour: floatPtr(r.PerCapita),
		SafeWindowHours:             floatPtr(r.SafeWindow),
		IsCritical:                  r.IsCritical,
		Kind:                        r.Kind.toModel(),
	}
	if r.Population.Valid {
		p := int(r.Population.Int64)
		s.Population = &p
	}
	s.LastUpdated, _ = util.ParseTimestamp(r.LastUpdated)
	return s
}

func newStatusRow(s *models.ResourceStatus) statusRow {
	row := statusRow{
		ID:                 s.ID,
		KindID:             s.KindID,
		CurrentPercentage:  s.CurrentPercentage,
		CriticalPercentage: s.CriticalPercentage,
		CurrentQuantity:    nullFloat(s.CurrentQuantity),
		MaxCapacity:        nullFloat(s.MaxCapacity),
		PerCapita:          nullFloat(s.PerCapitaConsumptionPerHour),
		SafeWindow:         nullFloat(s.SafeWindowHours),
		IsCritical:         s.IsCritical,
		LastUpdated:        util.FormatTimestamp(s.LastUpdated),
	}
	if s.Population != nil {
		row.Population = sql.NullInt64{Int64: int64(*s.Population), Valid: true}
	}
	return row
}

type historyRow struct {
	ID         string         `db:"id"`
	StatusID   string         `db:"status_id"`
	MeasuredAt string         `db:"measured_at"`
	Percentage float64        `db:"percentage"`
	IsCritical bool           `db:"is_critical"`
	EventType  string         `db:"event_type"`
	Note       sql.NullString `db:"note"`
}

func (r historyRow) toModel() models.ResourceHistory {
	h := models.ResourceHistory{
		ID:         r.ID,
		StatusID:   r.StatusID,
		Percentage: r.Percentage,
		IsCritical: r.IsCritical,
		EventType:  models.EventType(r.EventType),
	}
	if r.Note.Valid {
		h.Note = &r.Note.String
	}
	h.MeasuredAt, _ = util.ParseTimestamp(r.MeasuredAt)
	return h
}

// ============================================================================
// KINDS
// ============================================================================

const kindColumns = `id, code, display_name, unit,
	default_per_capita_consumption_per_hour, default_safe_window_hours,
	created_at, updated_at`

// GetKindByCode retrieves a kind by its canonical code.
func (r *ResourceRepository) GetKindByCode(ctx context.Context, tx *sqlx.Tx, code string) (*models.ResourceKind, error) {
	var row kindRow
	query := `SELECT ` + kindColumns + ` FROM resource_kinds WHERE code = ?`
	if err := sqlx.GetContext(ctx, r.queryer(tx), &row, query, code); err != nil {
		return nil, notFound(err, "getting kind")
	}
	return row.toModel(), nil
}

// ListKinds retrieves all kinds ordered by code.
func (r *ResourceRepository) ListKinds(ctx context.Context, tx *sqlx.Tx) ([]*models.ResourceKind, error) {
	var rows []kindRow
	query := `SELECT ` + kindColumns + ` FROM resource_kinds ORDER BY code`
	if err := sqlx.SelectContext(ctx, r.queryer(tx), &rows, query); err != nil {
		return nil, fmt.Errorf("listing kinds: %w", err)
	}

	kinds := make([]*models.ResourceKind, 0, len(rows))
	for _, row := range rows {
		kinds = append(kinds, row.toModel())
	}
	return kinds, nil
}

// CreateKind inserts a new resource kind.
func (r *ResourceRepository) CreateKind(ctx context.Context, tx *sqlx.Tx, kind *models.ResourceKind) error {
	if kind.CreatedAt.IsZero() {
		kind.CreatedAt = time.Now().UTC()
	}
	if kind.UpdatedAt.IsZero() {
		kind.UpdatedAt = kind.CreatedAt
	}

	query := `
		INSERT INTO resource_kinds (` + kindColumns + `)
		VALUES (:id, :code, :display_name, :unit,
			:default_per_capita_consumption_per_hour, :default_safe_window_hours,
			:created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.queryer(tx), query, newKindRow(kind)); err != nil {
		return fmt.Errorf("inserting kind: %w", err)
	}
	return nil
}

// UpdateKind saves display name, unit and defaults of an existing kind.
func (r *ResourceRepository) UpdateKind(ctx context.Context, tx *sqlx.Tx, kind *models.ResourceKind) error {
	if kind.UpdatedAt.IsZero() {
		kind.UpdatedAt = time.Now().UTC()
	}

	query := `
		UPDATE resource_kinds SET
			display_name = :display_name,
			unit = :unit,
			default_per_capita_consumption_per_hour = :default_per_capita_consumption_per_hour,
			default_safe_window_hours = :default_safe_window_hours,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, r.queryer(tx), query, newKindRow(kind))
	if err != nil {
		return fmt.Errorf("updating kind: %w", err)
	}
	return requireRow(result, "updating kind")
}

// ============================================================================
// STATUSES
// ============================================================================

const statusSelect = `
	SELECT s.id, s.kind_id, s.current_percentage, s.critical_percentage,
		s.current_quantity, s.max_capacity, s.population,
		s.per_capita_consumption_per_hour, s.safe_window_hours,
		s.is_critical, s.last_updated,
		k.id AS "kind.id", k.code AS "kind.code",
		k.display_name AS "kind.display_name", k.unit AS "kind.unit",
		k.default_per_capita_consumption_per_hour AS "kind.default_per_capita_consumption_per_hour",
		k.default_safe_window_hours AS "kind.default_safe_window_hours",
		k.created_at AS "kind.created_at", k.updated_at AS "kind.updated_at"
	FROM resource_status s
	JOIN resource_kinds k ON k.id = s.kind_id`

// GetStatusByCode retrieves the status owned by the kind with code.
func (r *ResourceRepository) GetStatusByCode(ctx context.Context, tx *sqlx.Tx, code string) (*models.ResourceStatus, error) {
	var row statusRow
	if err := sqlx.GetContext(ctx, r.queryer(tx), &row, statusSelect+` WHERE k.code = ?`, code); err != nil {
		return nil, notFound(err, "getting status by code")
	}
	return row.toModel(), nil
}

// GetStatusByID retrieves a status by its ID.
func (r *ResourceRepository) GetStatusByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.ResourceStatus, error) {
	var row statusRow
	if err := sqlx.GetContext(ctx, r.queryer(tx), &row, statusSelect+` WHERE s.id = ?`, id); err != nil {
		return nil, notFound(err, "getting status by id")
	}
	return row.toModel(), nil
}

// ListStatuses retrieves all statuses ordered by kind code.
func (r *ResourceRepository) ListStatuses(ctx context.Context, tx *sqlx.Tx) ([]*models.ResourceStatus, error) {
	var rows []statusRow
	if err := sqlx.SelectContext(ctx, r.queryer(tx), &rows, statusSelect+` ORDER BY k.code`); err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}

	statuses := make([]*models.ResourceStatus, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, row.toModel())
	}
	return statuses, nil
}

// CreateStatus inserts a new resource status.
func (r *ResourceRepository) CreateStatus(ctx context.Context, tx *sqlx.Tx, status *models.ResourceStatus) error {
	query := `
		INSERT INTO resource_status (
			id, kind_id, current_percentage, critical_percentage,
			current_quantity, max_capacity, population,
			per_capita_consumption_per_hour, safe_window_hours,
			is_critical, last_updated
		) VALUES (
			:id, :kind_id, :current_percentage, :critical_percentage,
			:current_quantity, :max_capacity, :population,
			:per_capita_consumption_per_hour, :safe_window_hours,
			:is_critical, :last_updated
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.queryer(tx), query, newStatusRow(status)); err != nil {
		return fmt.Errorf("inserting status: %w", err)
	}
	return nil
}

// UpdateStatus saves all mutable fields of a status.
func (r *ResourceRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, status *models.ResourceStatus) error {
	query := `
		UPDATE resource_status SET
			current_percentage = :current_percentage,
			critical_percentage = :critical_percentage,
			current_quantity = :current_quantity,
			max_capacity = :max_capacity,
			population = :population,
			per_capita_consumption_per_hour = :per_capita_consumption_per_hour,
			safe_window_hours = :safe_window_hours,
			is_critical = :is_critical,
			last_updated = :last_updated
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, r.queryer(tx), query, newStatusRow(status))
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return requireRow(result, "updating status")
}

// DeleteStatus removes a status. Its history rows cascade.
func (r *ResourceRepository) DeleteStatus(ctx context.Context, tx *sqlx.Tx, id string) error {
	result, err := r.queryer(tx).ExecContext(ctx, `DELETE FROM resource_status WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting status: %w", err)
	}
	return requireRow(result, "deleting status")
}

// ============================================================================
// HISTORY
// ============================================================================

// InsertHistory appends a history entry.
func (r *ResourceRepository) InsertHistory(ctx context.Context, tx *sqlx.Tx, entry *models.ResourceHistory) error {
	if !entry.EventType.Valid() {
		return fmt.Errorf("inserting history: invalid event type %q", entry.EventType)
	}

	row := historyRow{
		ID:         entry.ID,
		StatusID:   entry.StatusID,
		MeasuredAt: util.FormatTimestamp(entry.MeasuredAt),
		Percentage: entry.Percentage,
		IsCritical: entry.IsCritical,
		EventType:  string(entry.EventType),
	}
	if entry.Note != nil {
		row.Note = sql.NullString{String: *entry.Note, Valid: true}
	}

	query := `
		INSERT INTO resource_history (id, status_id, measured_at, percentage, is_critical, event_type, note)
		VALUES (:id, :status_id, :measured_at, :percentage, :is_critical, :event_type, :note)`

	if _, err := sqlx.NamedExecContext(ctx, r.queryer(tx), query, row); err != nil {
		return fmt.Errorf("inserting history: %w", err)
	}
	return nil
}

// ListHistory returns a status's history in ascending time order. Both
// bounds are optional and inclusive.
func (r *ResourceRepository) ListHistory(ctx context.Context, tx *sqlx.Tx, statusID string, from, to *time.Time) ([]models.ResourceHistory, error) {
	query := `
		SELECT id, status_id, measured_at, percentage, is_critical, event_type, note
		FROM resource_history
		WHERE status_id = ?`
	args := []any{statusID}

	if from != nil {
		query += ` AND measured_at >= ?`
		args = append(args, util.FormatTimestamp(*from))
	}
	if to != nil {
		query += ` AND measured_at <= ?`
		args = append(args, util.FormatTimestamp(*to))
	}
	query += ` ORDER BY measured_at ASC, rowid ASC`

	var rows []historyRow
	if err := sqlx.SelectContext(ctx, r.queryer(tx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	entries := make([]models.ResourceHistory, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}

// DeleteHistoryByStatusID removes all history rows of a status.
func (r *ResourceRepository) DeleteHistoryByStatusID(ctx context.Context, tx *sqlx.Tx, statusID string) (int64, error) {
	result, err := r.queryer(tx).ExecContext(ctx, `DELETE FROM resource_history WHERE status_id = ?`, statusID)
	if err != nil {
		return 0, fmt.Errorf("deleting history: %w", err)
	}
	return result.RowsAffected()
}

// ============================================================================
// HELPERS
// ============================================================================

func (r *ResourceRepository) queryer(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.db
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
