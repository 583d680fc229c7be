package repositories

import (
	"context"
	"fmt"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/apperrors"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/database"
)

// allowedViews is the fixed allow-list of analytical views served
// verbatim through the API. The view name is interpolated into the query,
// so membership here is the only thing standing between the request path
// and SQL injection - never relax it to a pattern match.
var allowedViews = map[string]bool{
	"cost_to_serve":             true,
	"service_level_by_customer": true,
	"stockout_risk":             true,
}

// AnalyticsRepository serves rows from pre-built analytical views.
type AnalyticsRepository interface {
	// ViewRows returns all rows of the named view, or
	// apperrors.ErrNotFound if the view is not allow-listed.
	ViewRows(ctx context.Context, view string) ([]map[string]any, error)
}

type analyticsRepository struct {
	db *database.DB
}

// NewAnalyticsRepository creates an analytics repository.
func NewAnalyticsRepository(db *database.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) ViewRows(ctx context.Context, view string) ([]map[string]any, error) {
	if !allowedViews[view] {
		return nil, apperrors.ErrNotFound
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf("SELECT * FROM %s", view))
	if err != nil {
		return nil, fmt.Errorf("failed to query view %s: %w", view, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read view %s row: %w", view, err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read view %s: %w", view, err)
	}
	return out, nil
}

var _ AnalyticsRepository = (*analyticsRepository)(nil)
