package sweeper_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/mocks"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
	"github.com/pricepilot/dynamic-pricing/internal/sweeper"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

// fakeSource is an in-memory sweeper.Source
type fakeSource struct {
	mu         sync.Mutex
	properties []schema.Property
	settings   map[uuid.UUID]*schema.GeneralSettings
	kv         map[string]string
	kvErrors   int
}

func newFakeSource(properties ...schema.Property) *fakeSource {
	return &fakeSource{
		properties: properties,
		settings:   map[uuid.UUID]*schema.GeneralSettings{},
		kv:         map[string]string{},
	}
}

func (f *fakeSource) ListActiveProperties(context.Context) ([]schema.Property, error) {
	return append([]schema.Property(nil), f.properties...), nil
}

func (f *fakeSource) GetGeneralSettings(_ context.Context, propertyID uuid.UUID) (*schema.GeneralSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[propertyID], nil
}

func (f *fakeSource) SetKeyValue(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kvErrors > 0 {
		f.kvErrors--
		return errors.New("connection reset")
	}
	f.kv[key] = value
	return nil
}

// fakeEngine records recalculated properties
type fakeEngine struct {
	mu     sync.Mutex
	days   map[uuid.UUID]int
	failOn uuid.UUID
}

func (f *fakeEngine) Recalculate(_ context.Context, property *schema.Property, days int) (*pricing.Result, error) {
	if property.ID == f.failOn {
		return nil, errors.New("competitor prices unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days[property.ID] = days
	return &pricing.Result{PropertyID: property.ID}, nil
}

// fakeChecker records coverage checks
type fakeChecker struct {
	mu      sync.Mutex
	checked []uuid.UUID
	purged  int64
}

func (f *fakeChecker) CheckCoverage(_ context.Context, property *schema.Property, days int) (*notification.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, property.ID)
	return &notification.Report{
		PropertyID: property.ID,
		Gaps:       []notification.Gap{{Category: domain.NotificationMSPMissing, MissingDays: days}},
		Created:    1,
	}, nil
}

func (f *fakeChecker) PurgeExpired(context.Context) (int64, error) {
	return f.purged, nil
}

func newClock(t *testing.T) *mocks.MockClock {
	clock := mocks.NewMockClock(gomock.NewController(t))
	clock.EXPECT().Now().Return(testNow).AnyTimes()
	return clock
}

func TestPricingSweeper_RunOnce(t *testing.T) {
	online := schema.Property{ID: uuid.New(), Name: "Online"}
	offline := schema.Property{ID: uuid.New(), Name: "Offline"}
	noSettings := schema.Property{ID: uuid.New(), Name: "No settings"}
	failing := schema.Property{ID: uuid.New(), Name: "Failing"}

	source := newFakeSource(online, offline, noSettings, failing)
	source.settings[online.ID] = &schema.GeneralSettings{PropertyID: online.ID, IsPricingOnline: true}
	source.settings[offline.ID] = &schema.GeneralSettings{PropertyID: offline.ID, IsPricingOnline: false}
	source.settings[failing.ID] = &schema.GeneralSettings{PropertyID: failing.ID, IsPricingOnline: true}

	engine := &fakeEngine{days: map[uuid.UUID]int{}, failOn: failing.ID}
	s := sweeper.NewPricingSweeper(sweeper.Config{Schedule: "@every 1h", WorkerPoolSize: 2}, source, engine, newClock(t))
	assert.Equal(t, "pricing", s.Name())

	summary, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Properties)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)

	assert.Equal(t, map[uuid.UUID]int{online.ID: 365}, engine.days)

	var marker sweeper.RunSummary
	require.NoError(t, json.Unmarshal([]byte(source.kv[sweeper.RunMarkerKey("pricing")]), &marker))
	assert.Equal(t, testNow, marker.StartedAt.UTC())
	assert.Equal(t, 1, marker.Properties)
}

func TestCoverageSweeper_RunOnce(t *testing.T) {
	first := schema.Property{ID: uuid.New()}
	second := schema.Property{ID: uuid.New()}
	source := newFakeSource(first, second)
	source.kvErrors = 1

	checker := &fakeChecker{purged: 3}
	s := sweeper.NewCoverageSweeper(sweeper.Config{Schedule: "@every 1h", HorizonDays: 90}, source, checker, newClock(t))

	summary, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Properties)
	assert.Equal(t, int64(3), summary.Purged)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, checker.checked)

	// The marker write is retried after a transient failure
	assert.Contains(t, source.kv, sweeper.RunMarkerKey("coverage"))
}

func TestSweeper_StartStop(t *testing.T) {
	source := newFakeSource()
	s := sweeper.NewCoverageSweeper(sweeper.Config{Schedule: "@every 1h"}, source, &fakeChecker{}, newClock(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(ctx)
	}()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}

	// Stopping an idle sweeper is a no-op
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
}

func TestSweeper_InvalidSchedule(t *testing.T) {
	s := sweeper.NewPricingSweeper(sweeper.Config{Schedule: "every now and then"}, newFakeSource(), &fakeEngine{}, newClock(t))
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}
