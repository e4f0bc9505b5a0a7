// Package resources provides the habitat resource simulation: profile
// defaults, derived metrics, lifecycle operations and consumption decay.
package resources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/habmon/habmon/internal/apperr"
	"github.com/habmon/habmon/internal/database"
	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/repository"
	"github.com/habmon/habmon/internal/util"
)

// Service provides resource management operations.
type Service struct {
	db        *database.DB
	resources *repository.ResourceRepository
	colony    *repository.ColonyRepository
	clock     util.Clock
	logger    *slog.Logger
	notify    *Dispatcher

	// defaultPopulation is used while the colony log is empty.
	defaultPopulation int
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for history and update timestamps.
func WithClock(c util.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNotifiers registers notifiers for changed resources.
func WithNotifiers(n ...Notifier) Option {
	return func(s *Service) {
		for _, notifier := range n {
			s.notify.Add(notifier)
		}
	}
}

// WithDefaultPopulation sets the population assumed before any colony
// state has been recorded.
func WithDefaultPopulation(p int) Option {
	return func(s *Service) {
		if p >= 1 {
			s.defaultPopulation = p
		}
	}
}

// NewService creates a new resource service.
func NewService(db *database.DB, opts ...Option) *Service {
	s := &Service{
		db:                db,
		resources:         repository.NewResourceRepository(db.DB),
		colony:            repository.NewColonyRepository(db.DB),
		clock:             util.SystemClock{},
		logger:            slog.Default(),
		notify:            NewDispatcher(nil),
		defaultPopulation: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "resources")
	s.notify.logger = s.logger
	return s
}

// ============================================================================
// READS
// ============================================================================

// Population returns the latest colony population.
func (s *Service) Population(ctx context.Context) (int, error) {
	return s.population(ctx, nil)
}

func (s *Service) population(ctx context.Context, tx *sqlx.Tx) (int, error) {
	state, err := s.colony.Latest(ctx, tx)
	if errors.Is(err, repository.ErrNotFound) {
		return s.defaultPopulation, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting colony population: %w", err)
	}
	return state.CurrentPopulation, nil
}

// MaxPopulationLog caps the number of entries PopulationLog returns.
const MaxPopulationLog = 500

// PopulationLog returns the population log newest first. A limit outside
// 1..MaxPopulationLog is clamped to that range.
func (s *Service) PopulationLog(ctx context.Context, limit int) ([]models.ColonyState, error) {
	states, err := s.colony.List(ctx, nil, min(max(limit, 1), MaxPopulationLog))
	if err != nil {
		return nil, fmt.Errorf("getting population log: %w", err)
	}
	return states, nil
}

// Kinds returns every resource kind ordered by code, including kinds whose
// resource has been deleted.
func (s *Service) Kinds(ctx context.Context) ([]*models.ResourceKind, error) {
	kinds, err := s.resources.ListKinds(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing resource kinds: %w", err)
	}
	return kinds, nil
}

// GetByCode returns the card for the resource with code.
func (s *Service) GetByCode(ctx context.Context, code string) (*models.ResourceCard, error) {
	code = models.NormalizeCode(code)
	status, err := s.resources.GetStatusByCode(ctx, nil, code)
	if err != nil {
		return nil, lookupError(err, code)
	}
	return s.readCard(ctx, status)
}

// GetByStatusID returns the card for the resource with status id.
func (s *Service) GetByStatusID(ctx context.Context, id string) (*models.ResourceCard, error) {
	status, err := s.resources.GetStatusByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	return s.readCard(ctx, status)
}

// ListForDashboard returns cards for every resource ordered by code.
func (s *Service) ListForDashboard(ctx context.Context) ([]models.ResourceCard, error) {
	statuses, err := s.resources.ListStatuses(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	pop, err := s.population(ctx, nil)
	if err != nil {
		return nil, err
	}

	cards := make([]models.ResourceCard, 0, len(statuses))
	for _, status := range statuses {
		cards = append(cards, readCard(status, pop))
	}
	return cards, nil
}

// Stats summarizes every resource for the overview panel.
func (s *Service) Stats(ctx context.Context) (models.ResourceStats, error) {
	cards, err := s.ListForDashboard(ctx)
	if err != nil {
		return models.ResourceStats{}, err
	}
	pop, err := s.population(ctx, nil)
	if err != nil {
		return models.ResourceStats{}, err
	}
	return models.SummarizeCards(cards, pop), nil
}

// History returns the history of the resource with code in ascending time
// order. Both bounds are optional and inclusive.
func (s *Service) History(ctx context.Context, code string, from, to *time.Time) ([]models.HistoryPoint, error) {
	code = models.NormalizeCode(code)
	if from != nil && to != nil && from.After(*to) {
		return nil, apperr.Invalid("from %s is after to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	status, err := s.resources.GetStatusByCode(ctx, nil, code)
	if err != nil {
		return nil, lookupError(err, code)
	}

	entries, err := s.resources.ListHistory(ctx, nil, status.ID, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]models.HistoryPoint, 0, len(entries))
	for _, e := range entries {
		p := models.HistoryPoint{
			Timestamp:  e.MeasuredAt,
			Percentage: e.Percentage,
			IsCritical: e.IsCritical,
			EventType:  e.EventType,
		}
		if e.Note != nil {
			p.Note = *e.Note
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *Service) readCard(ctx context.Context, status *models.ResourceStatus) (*models.ResourceCard, error) {
	pop, err := s.population(ctx, nil)
	if err != nil {
		return nil, err
	}
	card := readCard(status, pop)
	return &card, nil
}

// ============================================================================
// WRITES
// ============================================================================

// Create creates a resource, creating or updating its kind as needed.
// Capacity is raised to hold the safety stock of the current population.
func (s *Service) Create(ctx context.Context, input CreateResourceInput) (*models.ResourceCard, error) {
	code := models.NormalizeCode(input.Code)
	if code == "" {
		return nil, apperr.Invalid("code is required").WithMeta("field", "code")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var card models.ResourceCard
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		pop, err := s.population(ctx, tx)
		if err != nil {
			return err
		}

		kind, err := s.upsertKind(ctx, tx, code, input)
		if err != nil {
			return err
		}

		if _, err := s.resources.GetStatusByCode(ctx, tx, code); err == nil {
			return apperr.Conflict("resource %s already exists", code).WithMeta("target", code)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		profile := GetProfile(code, kind.Unit)
		perCapita := firstOf(input.PerCapitaConsumptionPerHour, kind.DefaultPerCapitaConsumptionHour, &profile.PerCapitaConsumptionPerHour)
		safeWindow := firstOf(input.SafeWindowHours, kind.DefaultSafeWindowHours, &profile.SafetyWindowHours)
		capacity := math.Max(
			firstOf(input.MaxCapacity, &profile.MaxCapacity),
			MinimumCapacity(perCapita, pop, safeWindow),
		)
		quantity := firstOf(input.CurrentAmount)

		status := &models.ResourceStatus{
			ID:                          util.NewID(),
			KindID:                      kind.ID,
			CurrentQuantity:             &quantity,
			MaxCapacity:                 &capacity,
			Population:                  &pop,
			PerCapitaConsumptionPerHour: &perCapita,
			SafeWindowHours:             &safeWindow,
			LastUpdated:                 s.clock.Now(),
			Kind:                        kind,
		}
		m := applyMetrics(status, pop, input.IsCritical)

		if err := s.resources.CreateStatus(ctx, tx, status); err != nil {
			return err
		}
		if err := s.recordHistory(ctx, tx, status, models.EventCreate, nil); err != nil {
			return err
		}

		card = buildCard(status, m, pop)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource created", "code", code, "capacity", card.MaxCapacity, "critical", card.IsCritical)
	s.notify.Publish(ctx, card)
	return &card, nil
}

// upsertKind returns the kind for code, creating it or applying the
// supplied overrides.
func (s *Service) upsertKind(ctx context.Context, tx *sqlx.Tx, code string, input CreateResourceInput) (*models.ResourceKind, error) {
	kind, err := s.resources.GetKindByCode(ctx, tx, code)
	if errors.Is(err, repository.ErrNotFound) {
		profile := GetProfile(code, input.Unit)
		now := s.clock.Now()
		kind = &models.ResourceKind{
			ID:                              util.NewID(),
			Code:                            code,
			DisplayName:                     orDefault(input.DisplayName, profile.DisplayName),
			Unit:                            orDefault(input.Unit, profile.Unit),
			DefaultPerCapitaConsumptionHour: copyFloat(input.PerCapitaConsumptionPerHour),
			DefaultSafeWindowHours:          copyFloat(input.SafeWindowHours),
			CreatedAt:                       now,
			UpdatedAt:                       now,
		}
		if err := s.resources.CreateKind(ctx, tx, kind); err != nil {
			return nil, err
		}
		return kind, nil
	}
	if err != nil {
		return nil, err
	}

	changed := false
	if input.DisplayName != "" && input.DisplayName != kind.DisplayName {
		kind.DisplayName = input.DisplayName
		changed = true
	}
	if input.Unit != "" && input.Unit != kind.Unit {
		kind.Unit = input.Unit
		changed = true
	}
	if input.PerCapitaConsumptionPerHour != nil {
		kind.DefaultPerCapitaConsumptionHour = copyFloat(input.PerCapitaConsumptionPerHour)
		changed = true
	}
	if input.SafeWindowHours != nil {
		kind.DefaultSafeWindowHours = copyFloat(input.SafeWindowHours)
		changed = true
	}
	if !changed {
		return kind, nil
	}

	kind.UpdatedAt = s.clock.Now()
	if err := s.resources.UpdateKind(ctx, tx, kind); err != nil {
		return nil, err
	}
	return kind, nil
}

// Update applies the supplied fields to the resource with code.
func (s *Service) Update(ctx context.Context, code string, input UpdateResourceInput) (*models.ResourceCard, error) {
	code = models.NormalizeCode(code)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var card models.ResourceCard
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		status, err := s.resources.GetStatusByCode(ctx, tx, code)
		if err != nil {
			return lookupError(err, code)
		}

		if input.DisplayName != nil || input.Unit != nil {
			kind := status.Kind
			if input.DisplayName != nil {
				kind.DisplayName = *input.DisplayName
			}
			if input.Unit != nil {
				kind.Unit = *input.Unit
			}
			kind.UpdatedAt = s.clock.Now()
			if err := s.resources.UpdateKind(ctx, tx, kind); err != nil {
				return err
			}
		}

		if input.CurrentAmount != nil {
			status.CurrentQuantity = copyFloat(input.CurrentAmount)
		}
		if input.MaxCapacity != nil {
			status.MaxCapacity = copyFloat(input.MaxCapacity)
		}
		if input.PerCapitaConsumptionPerHour != nil {
			status.PerCapitaConsumptionPerHour = copyFloat(input.PerCapitaConsumptionPerHour)
		}
		if input.SafeWindowHours != nil {
			status.SafeWindowHours = copyFloat(input.SafeWindowHours)
		}

		pop, err := s.population(ctx, tx)
		if err != nil {
			return err
		}
		status.LastUpdated = s.clock.Now()
		m := applyMetrics(status, pop, input.IsCritical)

		if err := s.resources.UpdateStatus(ctx, tx, status); err != nil {
			return err
		}
		if err := s.recordHistory(ctx, tx, status, models.EventAdminUpdate, nil); err != nil {
			return err
		}

		card = buildCard(status, m, pop)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource updated", "code", code, "percentage", card.CurrentPercentage, "critical", card.IsCritical)
	s.notify.Publish(ctx, card)
	return &card, nil
}

// Delete removes the resource with code and its history. The kind and its
// defaults are kept.
func (s *Service) Delete(ctx context.Context, code string) error {
	code = models.NormalizeCode(code)

	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		status, err := s.resources.GetStatusByCode(ctx, tx, code)
		if err != nil {
			return lookupError(err, code)
		}
		if _, err := s.resources.DeleteHistoryByStatusID(ctx, tx, status.ID); err != nil {
			return err
		}
		return s.resources.DeleteStatus(ctx, tx, status.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("resource deleted", "code", code)
	s.notify.PublishDeleted(ctx, code)
	return nil
}

// UpdatePopulation records a new colony population and recomputes every
// resource for it. Capacities only grow on this path. Each resource is
// saved on its own; on partial failure the result holds the resources that
// were saved and the error joins the individual failures.
func (s *Service) UpdatePopulation(ctx context.Context, requested float64) (*models.PopulationUpdate, error) {
	pop, err := ClampPopulation(requested)
	if err != nil {
		return nil, err
	}

	state := &models.ColonyState{
		ID:                util.NewID(),
		CurrentPopulation: pop,
		UpdatedAt:         s.clock.Now(),
	}
	if err := s.colony.Append(ctx, nil, state); err != nil {
		return nil, err
	}

	statuses, err := s.resources.ListStatuses(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	result := &models.PopulationUpdate{
		Population: pop,
		UpdatedAt:  state.UpdatedAt,
		Resources:  make([]models.ResourceCard, 0, len(statuses)),
	}

	var errs []error
	for _, st := range statuses {
		card, err := s.applyPopulation(ctx, st.ID, pop)
		if err != nil {
			s.logger.Error("population update failed", "code", st.Code(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", st.Code(), err))
			continue
		}
		result.Resources = append(result.Resources, card)
	}

	s.logger.Info("population updated", "population", pop, "resources", len(result.Resources))
	s.notify.Publish(ctx, result.Resources...)
	return result, errors.Join(errs...)
}

func (s *Service) applyPopulation(ctx context.Context, statusID string, pop int) (models.ResourceCard, error) {
	var card models.ResourceCard
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		status, err := s.resources.GetStatusByID(ctx, tx, statusID)
		if err != nil {
			return err
		}

		status.Population = &pop
		perCapita := deref(status.PerCapitaConsumptionPerHour)
		safeWindow := deref(status.SafeWindowHours)
		if perCapita > 0 && safeWindow > 0 {
			if minCap := MinimumCapacity(perCapita, pop, safeWindow); minCap > deref(status.MaxCapacity) {
				status.MaxCapacity = &minCap
			}
		}

		status.LastUpdated = s.clock.Now()
		m := applyMetrics(status, pop, nil)

		if err := s.resources.UpdateStatus(ctx, tx, status); err != nil {
			return err
		}
		note := fmt.Sprintf("population %d", pop)
		if err := s.recordHistory(ctx, tx, status, models.EventPopulationUpdate, &note); err != nil {
			return err
		}

		card = buildCard(status, m, pop)
		return nil
	})
	return card, err
}

// ============================================================================
// DECAY
// ============================================================================

// ApplyConsumptionDecay consumes tickSeconds worth of every resource at its
// current total rate and returns the resources whose quantity changed.
// Resources are saved one at a time; failures are logged, joined into the
// returned error and do not stop the rest of the batch.
func (s *Service) ApplyConsumptionDecay(ctx context.Context, tickSeconds float64) ([]models.ResourceCard, error) {
	if tickSeconds <= 0 || math.IsNaN(tickSeconds) || math.IsInf(tickSeconds, 0) {
		return nil, apperr.Invalid("tick seconds must be a positive number, got %v", tickSeconds)
	}

	statuses, err := s.resources.ListStatuses(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	factor := tickSeconds / 3600
	batch := make([]models.ResourceCard, 0, len(statuses))
	var errs []error

	for _, st := range statuses {
		card, changed, err := s.decay(ctx, st.ID, factor)
		if err != nil {
			s.logger.Error("decay failed", "code", st.Code(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", st.Code(), err))
			continue
		}
		if changed {
			batch = append(batch, card)
		}
	}

	if len(batch) > 0 {
		s.logger.Debug("decay tick applied", "changed", len(batch), "seconds", tickSeconds)
	}
	s.notify.PublishBatch(ctx, batch)
	return batch, errors.Join(errs...)
}

func (s *Service) decay(ctx context.Context, statusID string, factor float64) (models.ResourceCard, bool, error) {
	var card models.ResourceCard
	changed := false

	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		status, err := s.resources.GetStatusByID(ctx, tx, statusID)
		if errors.Is(err, repository.ErrNotFound) {
			// deleted since the batch was listed
			return nil
		}
		if err != nil {
			return err
		}

		pop, err := s.population(ctx, tx)
		if err != nil {
			return err
		}

		total := TotalConsumptionPerHour(InputsFromStatus(status, pop))
		if total == 0 {
			return nil
		}

		current := deref(status.CurrentQuantity)
		next := math.Max(0, current-total*factor)
		if next == current {
			return nil
		}

		status.CurrentQuantity = &next
		status.LastUpdated = s.clock.Now()
		m := applyMetrics(status, pop, nil)

		if err := s.resources.UpdateStatus(ctx, tx, status); err != nil {
			return err
		}
		if err := s.recordHistory(ctx, tx, status, models.EventDecay, nil); err != nil {
			return err
		}

		card = buildCard(status, m, pop)
		changed = true
		return nil
	})
	if err != nil {
		return models.ResourceCard{}, false, err
	}
	return card, changed, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Service) recordHistory(ctx context.Context, tx *sqlx.Tx, status *models.ResourceStatus, event models.EventType, note *string) error {
	return s.resources.InsertHistory(ctx, tx, &models.ResourceHistory{
		ID:         util.NewID(),
		StatusID:   status.ID,
		MeasuredAt: status.LastUpdated,
		Percentage: status.CurrentPercentage,
		IsCritical: status.IsCritical,
		EventType:  event,
		Note:       note,
	})
}

// applyMetrics recomputes status and stores the derived fields on it. An
// explicit override replaces the computed critical flag.
func applyMetrics(status *models.ResourceStatus, fallbackPopulation int, override *bool) Metrics {
	m := ComputeMetrics(InputsFromStatus(status, fallbackPopulation))
	status.CurrentPercentage = m.CurrentPercentage
	status.CriticalPercentage = m.CriticalPercentage
	status.IsCritical = m.IsCritical
	if override != nil {
		status.IsCritical = *override
	}
	return m
}

// readCard recomputes metrics for display. The critical flag is the stored
// one so overrides survive reads.
func readCard(status *models.ResourceStatus, fallbackPopulation int) models.ResourceCard {
	m := ComputeMetrics(InputsFromStatus(status, fallbackPopulation))
	card := buildCard(status, m, fallbackPopulation)
	card.IsCritical = status.IsCritical
	return card
}

func buildCard(status *models.ResourceStatus, m Metrics, fallbackPopulation int) models.ResourceCard {
	card := models.ResourceCard{
		Code:                        status.Code(),
		StatusID:                    status.ID,
		CurrentPercentage:           m.CurrentPercentage,
		CurrentQuantity:             deref(status.CurrentQuantity),
		MaxCapacity:                 deref(status.MaxCapacity),
		CriticalPercentage:          m.CriticalPercentage,
		IsCritical:                  status.IsCritical,
		AutonomyHours:               m.AutonomyHours,
		TotalConsumptionPerHour:     m.TotalConsumptionPerHour,
		PerCapitaConsumptionPerHour: m.PerCapitaConsumptionPerHour,
		SafeWindowHours:             m.SafeWindowHours,
		SafetyStockAmount:           m.SafetyStockAmount,
		Population:                  fallbackPopulation,
		LastUpdated:                 status.LastUpdated,
	}
	if status.Population != nil {
		card.Population = *status.Population
	}
	if status.Kind != nil {
		card.Name = status.Kind.DisplayName
		card.Unit = status.Kind.Unit
	}
	return card
}

func lookupError(err error, target string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("resource " + target)
	}
	return err
}

// firstOf returns the first non-nil value, or zero.
func firstOf(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
