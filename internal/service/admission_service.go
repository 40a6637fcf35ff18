package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type registrationStore interface {
	FindByID(ctx context.Context, tenantID, examID, id string) (*models.Registration, error)
	List(ctx context.Context, tenantID string, filter models.RegistrationFilter) ([]models.Registration, int, error)
	UpdateEnrollmentStatus(ctx context.Context, tenantID, id string, status models.EnrollmentStatus) (bool, error)
}

type batchStore interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.Batch, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.Batch, error)
}

type enrollmentStore interface {
	CreateFromEnrollment(ctx context.Context, req models.EnrollmentRequest) (string, error)
}

type statsScheduler interface {
	ScheduleRefresh(tenantID, examID string)
}

// AdmissionService converts scholarship registrations into students.
type AdmissionService struct {
	registrations registrationStore
	batches       batchStore
	students      enrollmentStore
	converter     *RegistrationConverter
	cache         *CacheService
	batchTTL      time.Duration
	stats         statsScheduler
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAdmissionService constructs AdmissionService.
func NewAdmissionService(registrations registrationStore, batches batchStore, students enrollmentStore, cache *CacheService, batchTTL time.Duration, stats statsScheduler, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionService{
		registrations: registrations,
		batches:       batches,
		students:      students,
		converter:     NewRegistrationConverter(),
		cache:         cache,
		batchTTL:      batchTTL,
		stats:         stats,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
	}
}

func batchCacheKey(tenantID string) string {
	return "batches:" + tenantID
}

// ListBatches returns the tenant's batches and whether the cache served them.
func (s *AdmissionService) ListBatches(ctx context.Context, tenant models.TenantContext) ([]models.Batch, bool, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, false, err
	}
	var batches []models.Batch
	hit, err := s.cache.Remember(ctx, batchCacheKey(tenant.TenantID), s.batchTTL, &batches, func() (interface{}, error) {
		return s.batches.ListByTenant(ctx, tenant.TenantID)
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	return batches, hit, nil
}

// ListRegistrations returns an exam's registrations with pagination metadata.
func (s *AdmissionService) ListRegistrations(ctx context.Context, tenant models.TenantContext, examID string, filter dto.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, nil, err
	}
	if err := s.validator.Struct(filter); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration filter")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	regs, total, err := s.registrations.List(ctx, tenant.TenantID, models.RegistrationFilter{
		ExamID:           examID,
		EnrollmentStatus: models.EnrollmentStatus(filter.EnrollmentStatus),
		Result:           models.ExamResult(filter.Result),
		Search:           strings.TrimSpace(filter.Search),
		Page:             page,
		PageSize:         size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// QuoteFee prices a batch for a registration, applying its reward when eligible.
func (s *AdmissionService) QuoteFee(ctx context.Context, tenant models.TenantContext, examID, registrationID, batchID string) (*dto.FeeQuoteResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if strings.TrimSpace(batchID) == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingBatch, "")
	}
	reg, err := s.registrations.FindByID(ctx, tenant.TenantID, examID, registrationID)
	if err != nil {
		return nil, loadError(err, "registration not found", "failed to load registration")
	}
	batch, err := s.batches.FindByID(ctx, tenant.TenantID, batchID)
	if err != nil {
		return nil, loadError(err, "batch not found", "failed to load batch")
	}

	var reward *models.RewardDetails
	if reg.RewardEligible {
		reward = reg.RewardDetails
	}
	fee, err := ComputeFee(batch.Fee, reward)
	if err != nil {
		return nil, err
	}
	return &dto.FeeQuoteResponse{
		RegistrationID: reg.ID,
		BatchID:        batch.ID,
		BatchName:      batch.Name,
		Course:         batch.Course,
		BatchFull:      batch.Full(),
		Fee:            fee,
		Reward:         reward,
	}, nil
}

// Convert admits a registration into the selected batch as a student.
func (s *AdmissionService) Convert(ctx context.Context, tenant models.TenantContext, examID, registrationID string, req dto.ConvertRegistrationRequest) (*dto.ConversionResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if req.Overrides != nil {
		if err := s.validator.Struct(req.Overrides); err != nil {
			s.metrics.RecordConversion(ConversionOutcomeRejected)
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admission form")
		}
	}

	reg, err := s.registrations.FindByID(ctx, tenant.TenantID, examID, registrationID)
	if err != nil {
		return nil, s.conversionFailed(loadError(err, "registration not found", "failed to load registration"))
	}

	var batch *models.Batch
	batchID := strings.TrimSpace(req.BatchID)
	if batchID != "" && !reg.ConvertedToStudent {
		batch, err = s.batches.FindByID(ctx, tenant.TenantID, batchID)
		if err != nil {
			return nil, s.conversionFailed(loadError(err, "batch not found", "failed to load batch"))
		}
	}

	enrollment, err := s.converter.Convert(*reg, batch, req.Overrides)
	if err != nil {
		return nil, s.conversionFailed(err)
	}

	studentID, err := s.students.CreateFromEnrollment(ctx, enrollment)
	if err != nil {
		return nil, s.conversionFailed(loadError(err, "batch not found", "failed to create student"))
	}

	s.metrics.RecordConversion(ConversionOutcomeSuccess)
	if err := s.cache.Invalidate(ctx, batchCacheKey(tenant.TenantID)); err != nil {
		s.logger.Warn("batch cache not invalidated", zap.String(logTenant, tenant.TenantID), zap.Error(err))
	}
	if s.stats != nil {
		s.stats.ScheduleRefresh(tenant.TenantID, reg.ExamID)
	}
	s.logger.Info("registration converted",
		zap.String(logTenant, tenant.TenantID),
		zap.String("registration_id", reg.ID),
		zap.String("student_id", studentID),
		zap.String("batch_id", enrollment.BatchID),
		zap.String("actor", tenant.UserID),
	)

	return &dto.ConversionResponse{StudentID: studentID, RegistrationID: reg.ID, Enrollment: enrollment}, nil
}

func (s *AdmissionService) conversionFailed(err error) error {
	switch {
	case errors.Is(err, appErrors.ErrAlreadyConverted):
		s.metrics.RecordConversion(ConversionOutcomeAlreadyConverted)
	case errors.Is(err, appErrors.ErrInternal):
		s.metrics.RecordConversion(ConversionOutcomeError)
	default:
		s.metrics.RecordConversion(ConversionOutcomeRejected)
	}
	return err
}

// UpdateEnrollmentStatus toggles the interest of a registration that has not converted yet.
func (s *AdmissionService) UpdateEnrollmentStatus(ctx context.Context, tenant models.TenantContext, examID, registrationID string, req dto.UpdateEnrollmentStatusRequest) (*models.Registration, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment status")
	}
	reg, err := s.registrations.FindByID(ctx, tenant.TenantID, examID, registrationID)
	if err != nil {
		return nil, loadError(err, "registration not found", "failed to load registration")
	}
	if reg.ConvertedToStudent {
		return nil, appErrors.Clone(appErrors.ErrAlreadyConverted, "")
	}
	updated, err := s.registrations.UpdateEnrollmentStatus(ctx, tenant.TenantID, reg.ID, req.EnrollmentStatus)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrAlreadyConverted, "")
	}
	reg.EnrollmentStatus = req.EnrollmentStatus
	if s.stats != nil {
		s.stats.ScheduleRefresh(tenant.TenantID, reg.ExamID)
	}
	return reg, nil
}
