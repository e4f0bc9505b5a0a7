// Package seed populates a fresh habitat database with the built-in
// life-support resources and an initial colony population.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/habmon/habmon/internal/apperr"
	"github.com/habmon/habmon/internal/database"
	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/repository"
	"github.com/habmon/habmon/internal/services/resources"
	"github.com/habmon/habmon/internal/util"
)

// Config configures the seed data generator.
type Config struct {
	// Population is written to the colony log when it is empty.
	Population int
	// FillPercentage is the starting level of every seeded resource.
	FillPercentage float64
	Profiles       []resources.Profile
}

// DefaultConfig returns a seed configuration that stocks every known
// resource to capacity.
func DefaultConfig(population int) Config {
	return Config{
		Population:     population,
		FillPercentage: 100,
		Profiles:       resources.KnownProfiles(),
	}
}

// Result reports what a seed run changed.
type Result struct {
	Population int
	Created    []string
	Skipped    []string
}

// Generator seeds a habitat database.
type Generator struct {
	db     *database.DB
	colony *repository.ColonyRepository
	cfg    Config
	clock  util.Clock
	logger *slog.Logger
}

// NewGenerator creates a new seed data generator.
func NewGenerator(db *database.DB, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		db:     db,
		colony: repository.NewColonyRepository(db.DB),
		cfg:    cfg,
		clock:  util.SystemClock{},
		logger: logger,
	}
}

// Generate seeds the colony population and every configured profile that
// is not already monitored. Running it twice changes nothing.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	if g.cfg.FillPercentage < 0 || g.cfg.FillPercentage > 100 {
		return nil, apperr.Invalid("fill percentage must be within 0..100, got %v", g.cfg.FillPercentage)
	}

	g.logger.Info("starting seed data generation",
		"population", g.cfg.Population,
		"resources", len(g.cfg.Profiles),
	)

	pop, err := g.seedPopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("seeding population: %w", err)
	}
	result := &Result{Population: pop}

	svc := resources.NewService(g.db,
		resources.WithClock(g.clock),
		resources.WithLogger(g.logger),
		resources.WithDefaultPopulation(pop),
	)

	for _, p := range g.cfg.Profiles {
		amount := p.MaxCapacity * g.cfg.FillPercentage / 100
		_, err := svc.Create(ctx, resources.CreateResourceInput{
			Code:                        p.Code,
			DisplayName:                 p.DisplayName,
			Unit:                        p.Unit,
			CurrentAmount:               &amount,
			MaxCapacity:                 &p.MaxCapacity,
			PerCapitaConsumptionPerHour: &p.PerCapitaConsumptionPerHour,
			SafeWindowHours:             &p.SafetyWindowHours,
		})
		switch {
		case apperr.IsCode(err, apperr.CodeConflict):
			result.Skipped = append(result.Skipped, p.Code)
		case err != nil:
			return result, fmt.Errorf("seeding %s: %w", p.Code, err)
		default:
			result.Created = append(result.Created, p.Code)
		}
	}

	g.logger.Info("seed data generation complete",
		"population", result.Population,
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)

	return result, nil
}

// seedPopulation records the configured population unless the colony log
// already has an entry, and returns the population in effect.
func (g *Generator) seedPopulation(ctx context.Context) (int, error) {
	latest, err := g.colony.Latest(ctx, nil)
	if err == nil {
		return latest.CurrentPopulation, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	pop := max(g.cfg.Population, 1)
	state := &models.ColonyState{
		ID:                util.NewID(),
		CurrentPopulation: pop,
		UpdatedAt:         g.clock.Now(),
	}
	if err := g.colony.Append(ctx, nil, state); err != nil {
		return 0, err
	}
	return pop, nil
}
