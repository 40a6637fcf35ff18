package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type gradedRecordReader interface {
	ListGraded(ctx context.Context, tenantID string, filter models.GradedRecordFilter) ([]models.GradedRecord, error)
}

// ReportServiceConfig carries aggregation defaults.
type ReportServiceConfig struct {
	PassingThreshold float64
	TopLimit         int
	CacheTTL         time.Duration
}

// ReportService builds academic performance reports.
type ReportService struct {
	grades    gradedRecordReader
	cache     *CacheService
	cfg       ReportServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(grades gradedRecordReader, cache *CacheService, cfg ReportServiceConfig, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{grades: grades, cache: cache, cfg: cfg, validator: validate, logger: logger}
}

// Reports aggregates graded results matching filter and reports whether the cache served it.
func (s *ReportService) Reports(ctx context.Context, tenant models.TenantContext, filter dto.ReportFilter) (*models.ReportAggregate, bool, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, false, err
	}
	if err := s.validator.Struct(filter); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filter")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "to date must not be before from date")
	}

	opts := models.AggregateOptions{TopLimit: s.cfg.TopLimit}
	if s.cfg.PassingThreshold > 0 {
		threshold := s.cfg.PassingThreshold
		opts.PassingThreshold = &threshold
	}
	if filter.PassingThreshold != nil {
		threshold := *filter.PassingThreshold
		opts.PassingThreshold = &threshold
	}
	if filter.Limit > 0 {
		opts.TopLimit = filter.Limit
	}
	query := models.GradedRecordFilter{
		Course:  strings.TrimSpace(filter.Course),
		BatchID: strings.TrimSpace(filter.BatchID),
		From:    filter.From,
		To:      filter.To,
	}

	key := HashKey(reportCachePrefix(tenant.TenantID), query, opts)
	var report models.ReportAggregate
	hit, err := s.cache.Remember(ctx, key, s.cfg.CacheTTL, &report, func() (interface{}, error) {
		records, err := s.grades.ListGraded(ctx, tenant.TenantID, query)
		if err != nil {
			return nil, err
		}
		return Aggregate(records, opts), nil
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
	}
	s.logger.Debug("report served", zap.String(logTenant, tenant.TenantID), zap.Bool("cache_hit", hit))
	return &report, hit, nil
}

// reportCachePrefix scopes cached reports to a tenant so writers can drop them together.
func reportCachePrefix(tenantID string) string {
	return "reports:" + tenantID + ":"
}
