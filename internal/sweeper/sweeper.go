package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Sweeper defines the interface for sweeper implementations
// Sweepers are long-running background tasks that perform periodic maintenance
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start schedules the sweeper and blocks until the context is canceled
	// or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the sweeper
	// This should wait for any in-progress work to complete
	Stop(ctx context.Context) error

	// RunOnce runs a single cycle immediately
	RunOnce(ctx context.Context) (*RunSummary, error)

	// Name returns the sweeper's name for logging and identification
	Name() string
}

// Source is the store surface the sweepers read and write
type Source interface {
	ListActiveProperties(ctx context.Context) ([]schema.Property, error)
	GetGeneralSettings(ctx context.Context, propertyID uuid.UUID) (*schema.GeneralSettings, error)
	SetKeyValue(ctx context.Context, key string, value string) error
}

// CoverageChecker raises coverage notifications
type CoverageChecker interface {
	CheckCoverage(ctx context.Context, property *schema.Property, days int) (*notification.Report, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// Recalculator recomputes recommended prices
type Recalculator interface {
	Recalculate(ctx context.Context, property *schema.Property, days int) (*pricing.Result, error)
}

// Config holds configuration shared by the sweepers
type Config struct {
	Schedule       string // cron spec, e.g. "@every 1h"
	HorizonDays    int
	WorkerPoolSize int
	QueueSize      int
}

// RunSummary is stored as the run marker of a sweeper
type RunSummary struct {
	Sweeper    string    `json:"sweeper"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Properties int       `json:"properties"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Purged     int64     `json:"purged,omitempty"`
}

// RunMarkerKey is the key_value_store key holding a sweeper's last run
func RunMarkerKey(name string) string {
	return "sweeper." + name + ".last_run"
}
