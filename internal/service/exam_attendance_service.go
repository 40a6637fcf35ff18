package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
	"github.com/noah-isme/institute-admissions-api/pkg/export"
	"github.com/noah-isme/institute-admissions-api/pkg/storage"
)

type examRegistrationStore interface {
	FindAnyByID(ctx context.Context, tenantID, id string) (*models.Registration, error)
	ListByExam(ctx context.Context, tenantID, examID string) ([]models.Registration, error)
	UpdateAttendance(ctx context.Context, tenantID, id string, hasAttended bool, date *string) error
}

type examStore interface {
	FindByID(ctx context.Context, tenantID, examID string) (*models.ScholarshipExam, error)
	Counts(ctx context.Context, tenantID, examID string) (models.ExamCounts, error)
	SaveStats(ctx context.Context, tenantID, examID string, stats models.ExamStats) error
}

type exportStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (io.ReadCloser, error)
}

type downloadSigner interface {
	Generate(exportID, tenantID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (storage.DownloadClaims, error)
}

type documentRenderer interface {
	ContentType() string
	Extension() string
	Render(doc export.Document) ([]byte, error)
}

var examExportHeaders = []string{"Date", "Registration Number", "Student Name", "Email", "Phone", "Class", "School", "Attendance Status"}

// ExamAttendanceService manages attendance and statistics of scholarship exams.
type ExamAttendanceService struct {
	registrations examRegistrationStore
	exams         examStore
	storage       exportStorage
	signer        downloadSigner
	renderers     map[models.ExportFormat]documentRenderer
	downloadBase  string
	stats         statsScheduler
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
}

// ExamAttendanceConfig wires the export side of ExamAttendanceService.
type ExamAttendanceConfig struct {
	Storage      exportStorage
	Signer       downloadSigner
	DownloadBase string
}

// NewExamAttendanceService constructs ExamAttendanceService.
func NewExamAttendanceService(registrations examRegistrationStore, exams examStore, cfg ExamAttendanceConfig, stats statsScheduler, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ExamAttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamAttendanceService{
		registrations: registrations,
		exams:         exams,
		storage:       cfg.Storage,
		signer:        cfg.Signer,
		renderers: map[models.ExportFormat]documentRenderer{
			models.ExportFormatCSV:  export.NewCSVExporter(),
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter(),
		},
		downloadBase: cfg.DownloadBase,
		stats:        stats,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// SetStatsScheduler attaches the asynchronous stats refresher.
func (s *ExamAttendanceService) SetStatsScheduler(stats statsScheduler) {
	s.stats = stats
}

// UpdateAttendance marks a registrant present on a date or absent.
func (s *ExamAttendanceService) UpdateAttendance(ctx context.Context, tenant models.TenantContext, registrationID string, req dto.ExamAttendanceRequest) (*models.Registration, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam attendance payload")
	}
	var date *string
	if req.HasAttended {
		if req.ExamDateAttended == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "exam date is required when marking present")
		}
		d := req.ExamDateAttended
		date = &d
	}

	if err := s.registrations.UpdateAttendance(ctx, tenant.TenantID, registrationID, req.HasAttended, date); err != nil {
		return nil, loadError(err, "registration not found", "failed to update exam attendance")
	}
	reg, err := s.registrations.FindAnyByID(ctx, tenant.TenantID, registrationID)
	if err != nil {
		return nil, loadError(err, "registration not found", "failed to load registration")
	}

	s.metrics.RecordMarksWritten(AttendanceScopeExam, 1)
	if s.stats != nil {
		s.stats.ScheduleRefresh(tenant.TenantID, reg.ExamID)
	}
	return reg, nil
}

// Roster lists the registrants expected on a date with their attendance.
func (s *ExamAttendanceService) Roster(ctx context.Context, tenant models.TenantContext, examID string, filter dto.ExamAttendanceFilter) (*dto.ExamRosterResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance filter")
	}
	key, err := models.NewSessionKey(examID, filter.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session")
	}
	regs, ledger, err := s.session(ctx, tenant, key)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.ID)
	}
	summary := ledger.Summary(key, ids)

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	entries := make([]dto.ExamRosterEntry, 0, len(regs))
	for _, reg := range regs {
		status := ledger.GetStatus(reg.ID, key).Status
		if filter.Status != "" && filter.Status != "all" && string(status) != filter.Status {
			continue
		}
		if search != "" && !matchesRegistration(reg, search) {
			continue
		}
		entries = append(entries, rosterEntry(reg, status))
	}

	return &dto.ExamRosterResponse{ExamID: examID, Date: key.Date, Registrations: entries, Summary: summary}, nil
}

// session loads the registrations expected on the key's date into a ledger.
func (s *ExamAttendanceService) session(ctx context.Context, tenant models.TenantContext, key models.SessionKey) ([]models.Registration, *AttendanceLedger, error) {
	if _, err := s.exams.FindByID(ctx, tenant.TenantID, key.ScopeID); err != nil {
		return nil, nil, loadError(err, "scholarship exam not found", "failed to load scholarship exam")
	}
	all, err := s.registrations.ListByExam(ctx, tenant.TenantID, key.ScopeID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}

	regs := make([]models.Registration, 0, len(all))
	marks := make([]models.AttendanceMark, 0, len(all))
	for _, reg := range all {
		if !expectedOn(reg, key.Date) {
			continue
		}
		regs = append(regs, reg)
		if reg.AttendedOn(key.Date) {
			marks = append(marks, models.AttendanceMark{StudentID: reg.ID, ScopeID: key.ScopeID, Date: key.Date, Status: models.AttendanceStatusPresent})
		}
	}
	ledger := NewAttendanceLedger()
	ledger.Load(marks)
	return regs, ledger, nil
}

// expectedOn keeps registrants without a preferred date, those who chose the
// date, and those who actually sat the exam on it.
func expectedOn(reg models.Registration, date string) bool {
	if reg.PreferredExamDate == nil || *reg.PreferredExamDate == "" {
		return true
	}
	return *reg.PreferredExamDate == date || reg.AttendedOn(date)
}

func matchesRegistration(reg models.Registration, search string) bool {
	for _, field := range []string{reg.StudentName, reg.Email, reg.Phone, reg.RegistrationNumber} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func rosterEntry(reg models.Registration, status models.AttendanceStatus) dto.ExamRosterEntry {
	return dto.ExamRosterEntry{
		RegistrationID:     reg.ID,
		RegistrationNumber: reg.RegistrationNumber,
		StudentName:        reg.StudentName,
		Email:              reg.Email,
		Phone:              reg.Phone,
		CurrentClass:       reg.CurrentClass,
		School:             reg.School,
		PreferredExamDate:  reg.PreferredExamDate,
		Status:             status,
	}
}

// Export renders the roster of a date and returns a signed download link.
func (s *ExamAttendanceService) Export(ctx context.Context, tenant models.TenantContext, examID string, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	renderer, ok := s.renderers[req.Format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	key, err := models.NewSessionKey(examID, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session")
	}
	regs, ledger, err := s.session(ctx, tenant, key)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(regs))
	rows := make([]map[string]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.ID)
		status := ledger.GetStatus(reg.ID, key).Status
		rows = append(rows, map[string]string{
			"Date":                key.Date,
			"Registration Number": reg.RegistrationNumber,
			"Student Name":        reg.StudentName,
			"Email":               reg.Email,
			"Phone":               reg.Phone,
			"Class":               reg.CurrentClass,
			"School":              reg.School,
			"Attendance Status":   attendanceLabel(status),
		})
	}
	summary := ledger.Summary(key, ids)

	payload, err := renderer.Render(export.Document{
		Title:   fmt.Sprintf("Exam Attendance %s", key.Date),
		Dataset: export.Dataset{Headers: examExportHeaders, Rows: rows},
		Summary: [][2]string{
			{"Total", fmt.Sprint(summary.Total)},
			{"Present", fmt.Sprint(summary.Present)},
			{"Absent", fmt.Sprint(summary.Absent)},
			{"Attendance %", fmt.Sprintf("%d%%", summary.PresentPercentage)},
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("exam_attendance_%s.%s", key.Date, renderer.Extension())
	relPath := path.Join(tenant.TenantID, exportID, filename)
	if _, err := s.storage.Save(relPath, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, tenant.TenantID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}

	s.metrics.RecordExport(req.Format)
	s.logger.Info("exam attendance exported",
		zap.String(logTenant, tenant.TenantID),
		zap.String("exam_id", examID),
		zap.String("export_id", exportID),
		zap.Int("rows", len(rows)),
	)
	return &dto.ExportResponse{
		ExportID:  exportID,
		Filename:  filename,
		URL:       strings.TrimRight(s.downloadBase, "/") + "/" + token,
		ExpiresAt: expiresAt,
		Rows:      len(rows),
	}, nil
}

func attendanceLabel(status models.AttendanceStatus) string {
	if status == models.AttendanceStatusPresent {
		return "Present"
	}
	return "Absent"
}

// ResolveDownload validates a signed token and opens the export it points at.
func (s *ExamAttendanceService) ResolveDownload(token string) (*dto.ExportDownload, io.ReadCloser, error) {
	claims, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	filename := path.Base(claims.Path)
	contentType := "application/octet-stream"
	for _, renderer := range s.renderers {
		if strings.HasSuffix(filename, "."+renderer.Extension()) {
			contentType = renderer.ContentType()
			break
		}
	}
	return &dto.ExportDownload{Filename: filename, ContentType: contentType, Path: claims.Path}, file, nil
}

// Stats returns the exam's registration statistics and persists them on the exam.
func (s *ExamAttendanceService) Stats(ctx context.Context, tenant models.TenantContext, examID string) (*models.ExamStats, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if _, err := s.exams.FindByID(ctx, tenant.TenantID, examID); err != nil {
		return nil, loadError(err, "scholarship exam not found", "failed to load scholarship exam")
	}
	return s.RefreshStats(ctx, tenant.TenantID, examID)
}

// RefreshStats recomputes and stores the statistics of an exam.
func (s *ExamAttendanceService) RefreshStats(ctx context.Context, tenantID, examID string) (*models.ExamStats, error) {
	counts, err := s.exams.Counts(ctx, tenantID, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	stats := ComputeExamStats(counts)
	if err := s.exams.SaveStats(ctx, tenantID, examID, stats); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save exam stats")
	}
	return &stats, nil
}

// ComputeExamStats derives absentees and rates from raw counts.
func ComputeExamStats(counts models.ExamCounts) models.ExamStats {
	return models.ExamStats{
		TotalRegistrations: counts.TotalRegistrations,
		Appeared:           counts.Appeared,
		Passed:             counts.Passed,
		Enrolled:           counts.Enrolled,
		Absent:             counts.TotalRegistrations - counts.Appeared,
		PassPercentage:     ratio(counts.Passed, counts.Appeared),
		ConversionRate:     ratio(counts.Enrolled, counts.TotalRegistrations),
	}
}

func ratio(part, whole int) string {
	if whole <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(part)/float64(whole)*100)
}
