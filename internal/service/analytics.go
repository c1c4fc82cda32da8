package service

import (
	"context"

	"netclass-console/internal/analytics"
	"netclass-console/internal/model"
	"netclass-console/internal/repository"
	"netclass-console/pkg/errors"
)

// AnalyticsService assembles the analytics report
type AnalyticsService struct {
	store repository.Store
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(store repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Report runs the three analytics queries. Results are never cached.
func (s *AnalyticsService) Report(ctx context.Context) (*model.AnalyticsReport, error) {
	rankings, err := s.store.SoftwareRankings(ctx)
	if err != nil {
		return nil, storeError(err, "rank software counts")
	}

	rollups, err := s.store.LocationRollup(ctx)
	if err != nil {
		return nil, storeError(err, "roll up PCs by location")
	}

	counts, err := s.store.SoftwareCounts(ctx)
	if err != nil {
		return nil, storeError(err, "count software")
	}

	return &model.AnalyticsReport{Rankings: rankings, Rollups: rollups, SoftwareCounts: counts}, nil
}

// Export renders the report as an XLSX workbook.
func (s *AnalyticsService) Export(ctx context.Context) ([]byte, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}

	data, err := analytics.ExportWorkbook(*report)
	if err != nil {
		return nil, errors.InternalError("failed to render analytics workbook", err)
	}
	return data, nil
}
