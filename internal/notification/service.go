package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Source is the part of the store coverage checks need
type Source interface {
	ListPropertyOwners(ctx context.Context, propertyID uuid.UUID) ([]schema.Profile, error)
	ListMinimumSellingPrices(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.MinimumSellingPrice, error)
	ListOfferIncrements(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.OfferIncrement, error)
	ListLosSetups(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.LosSetup, error)
	CreateNotificationUnlessRecent(ctx context.Context, n *schema.Notification, since time.Time) (bool, error)
	CreateNotification(ctx context.Context, n *schema.Notification) error
	DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error)
}

// Gap is the coverage result of one rule table
type Gap struct {
	Category    domain.NotificationCategory `json:"category"`
	MissingDays int                         `json:"missing_days"`
	FirstDate   domain.Date                 `json:"first_missing_date"`
}

// Report summarises the coverage check of one property
type Report struct {
	PropertyID uuid.UUID   `json:"property_id"`
	From       domain.Date `json:"from"`
	Until      domain.Date `json:"until"`
	Gaps       []Gap       `json:"gaps"`
	Created    int         `json:"created"`
}

// Service creates coverage and payment notifications
type Service struct {
	source   Source
	mailer   email.Mailer
	clock    adapter.Clock
	cfg      config.NotificationsConfig
	template string
}

// NewService creates a notification service
func NewService(source Source, mailer email.Mailer, clock adapter.Clock, cfg config.NotificationsConfig, coverageTemplate string) *Service {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 24 * time.Hour
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 7 * 24 * time.Hour
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 90
	}
	return &Service{source: source, mailer: mailer, clock: clock, cfg: cfg, template: coverageTemplate}
}

// HorizonDays returns the default number of days checked
func (s *Service) HorizonDays() int {
	return s.cfg.HorizonDays
}

// CheckCoverage looks for days in the next days without an MSP, an active
// offer or a LOS setup, and notifies every owner once per category within
// the cooldown. MSP gaps are also emailed.
func (s *Service) CheckCoverage(ctx context.Context, property *schema.Property, days int) (*Report, error) {
	if days <= 0 {
		days = s.cfg.HorizonDays
	}

	now := s.clock.Now()
	today := domain.Today(now, property.Location())
	window := domain.DateRange{From: today, Until: today.AddDays(days - 1)}

	gaps, err := s.findGaps(ctx, property.ID, window)
	if err != nil {
		return nil, err
	}

	report := &Report{PropertyID: property.ID, From: window.From, Until: window.Until, Gaps: gaps}
	if len(gaps) == 0 {
		return report, nil
	}

	owners, err := s.source.ListPropertyOwners(ctx, property.ID)
	if err != nil {
		return nil, err
	}

	for _, gap := range gaps {
		for _, owner := range owners {
			created, err := s.notifyGap(ctx, property, owner, gap, window, now)
			if err != nil {
				return nil, err
			}
			if !created {
				continue
			}
			report.Created++

			if gap.Category == domain.NotificationMSPMissing {
				s.sendCoverageAlert(ctx, property, owner, gap, window)
			}
		}
	}

	return report, nil
}

func (s *Service) findGaps(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]Gap, error) {
	msps, err := s.source.ListMinimumSellingPrices(ctx, propertyID, &window)
	if err != nil {
		return nil, err
	}
	offers, err := s.source.ListOfferIncrements(ctx, propertyID, &window)
	if err != nil {
		return nil, err
	}
	losSetups, err := s.source.ListLosSetups(ctx, propertyID, &window)
	if err != nil {
		return nil, err
	}

	mspRanges := make([]domain.DateRange, 0, len(msps))
	for _, m := range msps {
		mspRanges = append(mspRanges, domain.DateRange{From: m.ValidFrom, Until: m.ValidUntil})
	}
	offerRanges := make([]domain.DateRange, 0, len(offers))
	for _, o := range offers {
		if o.IsActive {
			offerRanges = append(offerRanges, domain.DateRange{From: o.ValidFrom, Until: o.ValidUntil})
		}
	}
	losRanges := make([]domain.DateRange, 0, len(losSetups))
	for _, l := range losSetups {
		losRanges = append(losRanges, domain.DateRange{From: l.ValidFrom, Until: l.ValidUntil})
	}

	var gaps []Gap
	for _, c := range []struct {
		category domain.NotificationCategory
		ranges   []domain.DateRange
	}{
		{domain.NotificationMSPMissing, mspRanges},
		{domain.NotificationOfferMissing, offerRanges},
		{domain.NotificationLOSMissing, losRanges},
	} {
		missing := domain.MissingDays(window, c.ranges)
		if len(missing) == 0 {
			continue
		}
		gaps = append(gaps, Gap{Category: c.category, MissingDays: len(missing), FirstDate: missing[0]})
	}
	return gaps, nil
}

func (s *Service) notifyGap(ctx context.Context, property *schema.Property, owner schema.Profile, gap Gap, window domain.DateRange, now time.Time) (bool, error) {
	payload, err := json.Marshal(map[string]any{
		"missing_days":       gap.MissingDays,
		"first_missing_date": gap.FirstDate,
		"from":               window.From,
		"until":              window.Until,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode notification payload: %w", err)
	}

	propertyID := property.ID
	expiresAt := now.Add(s.cfg.Expiry)
	n := &schema.Notification{
		ProfileID:  owner.ID,
		PropertyID: &propertyID,
		Category:   gap.Category,
		Title:      domain.NotificationTitle(gap.Category),
		Message: fmt.Sprintf("%s: %d of the next %d days have no %s.",
			property.Name, gap.MissingDays, window.Days(), domain.NotificationSubject(gap.Category)),
		Payload:   datatypes.JSON(payload),
		IsNew:     true,
		ExpiresAt: &expiresAt,
		CreatedAt: now,
	}

	created, err := s.source.CreateNotificationUnlessRecent(ctx, n, now.Add(-s.cfg.Cooldown))
	if err != nil {
		return false, err
	}
	if created {
		logger.InfoCtx(ctx, "Created coverage notification",
			zap.String("propertyID", property.ID.String()),
			zap.String("profileID", owner.ID.String()),
			zap.String("category", string(gap.Category)),
			zap.Int("missingDays", gap.MissingDays))
	}
	return created, nil
}

// sendCoverageAlert emails the owner; failures are logged and do not fail the check
func (s *Service) sendCoverageAlert(ctx context.Context, property *schema.Property, owner schema.Profile, gap Gap, window domain.DateRange) {
	if s.mailer == nil || s.template == "" {
		return
	}
	err := s.mailer.Send(ctx, email.Message{
		To:       owner.Email,
		ToName:   owner.FirstName,
		Template: s.template,
		Tag:      string(gap.Category),
		Model: map[string]any{
			"first_name":         owner.FirstName,
			"property_name":      property.Name,
			"missing_days":       gap.MissingDays,
			"first_missing_date": gap.FirstDate.String(),
			"from":               window.From.String(),
			"until":              window.Until.String(),
		},
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to send coverage alert: %w", err),
			zap.String("propertyID", property.ID.String()),
			zap.String("profileID", owner.ID.String()))
	}
}

// NotifyPayment records a payment notification for a profile
func (s *Service) NotifyPayment(ctx context.Context, profileID uuid.UUID, amountTotal int64, currency string) error {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.Expiry)
	payload, err := json.Marshal(map[string]any{"amount_total": amountTotal, "currency": currency})
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	return s.source.CreateNotification(ctx, &schema.Notification{
		ProfileID: profileID,
		Category:  domain.NotificationPayment,
		Title:     domain.NotificationTitle(domain.NotificationPayment),
		Message:   fmt.Sprintf("We received your payment of %s.", FormatAmount(amountTotal, currency)),
		Payload:   datatypes.JSON(payload),
		IsNew:     true,
		ExpiresAt: &expiresAt,
		CreatedAt: now,
	})
}

// PurgeExpired deletes notifications past their expiry
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.source.DeleteExpiredNotifications(ctx, s.clock.Now())
}

// FormatAmount renders Stripe minor units, e.g. 4900 eur as "49.00 EUR"
func FormatAmount(minor int64, currency string) string {
	return decimal.New(minor, -2).StringFixed(2) + " " + strings.ToUpper(currency)
}
