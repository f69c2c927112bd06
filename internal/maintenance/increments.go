package maintenance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// IncrementSeeder is the store surface used to seed the default increment grid
type IncrementSeeder interface {
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*schema.Property, error)
	ListActiveProperties(ctx context.Context) ([]schema.Property, error)
	ListDynamicIncrements(ctx context.Context, propertyID uuid.UUID) ([]schema.DynamicIncrement, error)
	SeedDefaultIncrements(ctx context.Context, propertyID uuid.UUID, deleteExisting bool) (int64, error)
}

// SeedIncrementsOptions controls a seeding run
type SeedIncrementsOptions struct {
	// PropertyID limits seeding to one property; nil seeds every active property
	PropertyID     *uuid.UUID
	DeleteExisting bool
	DryRun         bool
}

// SeedIncrementsReport summarises a seeding run. In a dry run Written is the
// number of cells that would be written.
type SeedIncrementsReport struct {
	Properties int   `json:"properties"`
	Written    int64 `json:"written"`
}

// SeedIncrements writes the default dynamic increment cells a property is missing
func SeedIncrements(ctx context.Context, st IncrementSeeder, opts SeedIncrementsOptions) (*SeedIncrementsReport, error) {
	properties, err := resolveProperties(ctx, st, opts.PropertyID)
	if err != nil {
		return nil, err
	}

	report := &SeedIncrementsReport{}
	for i := range properties {
		property := &properties[i]

		var written int64
		if opts.DryRun {
			written, err = missingIncrements(ctx, st, property.ID, opts.DeleteExisting)
		} else {
			written, err = st.SeedDefaultIncrements(ctx, property.ID, opts.DeleteExisting)
		}
		if err != nil {
			return report, err
		}

		report.Properties++
		report.Written += written
		logger.InfoCtx(ctx, "Seeded dynamic increments",
			zap.String("propertyID", property.ID.String()),
			zap.Int64("written", written),
			zap.Bool("dry_run", opts.DryRun),
		)
	}
	return report, nil
}

func missingIncrements(ctx context.Context, st IncrementSeeder, propertyID uuid.UUID, deleteExisting bool) (int64, error) {
	defaults := domain.DefaultIncrements()
	if deleteExisting {
		return int64(len(defaults)), nil
	}

	cells, err := st.ListDynamicIncrements(ctx, propertyID)
	if err != nil {
		return 0, err
	}

	type key struct {
		occupancy domain.OccupancyCategory
		leadTime  domain.LeadTimeCategory
	}
	existing := make(map[key]struct{}, len(cells))
	for _, c := range cells {
		existing[key{c.OccupancyCategory, c.LeadTimeCategory}] = struct{}{}
	}

	var missing int64
	for _, d := range defaults {
		if _, ok := existing[key{d.Occupancy, d.LeadTime}]; !ok {
			missing++
		}
	}
	return missing, nil
}

// PropertyLister resolves the properties a command operates on
type PropertyLister interface {
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*schema.Property, error)
	ListActiveProperties(ctx context.Context) ([]schema.Property, error)
}

func resolveProperties(ctx context.Context, st PropertyLister, propertyID *uuid.UUID) ([]schema.Property, error) {
	if propertyID == nil {
		return st.ListActiveProperties(ctx)
	}

	property, err := st.GetProperty(ctx, *propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	return []schema.Property{*property}, nil
}
