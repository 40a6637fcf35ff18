package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
	"github.com/noah-isme/institute-admissions-api/pkg/export"
)

const (
	tempPasswordLength   = 10
	tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

type studentImportStore interface {
	ExistsByEmail(ctx context.Context, tenantID, email string) (bool, error)
	CountByBatch(ctx context.Context, tenantID, batch string) (int, error)
	Create(ctx context.Context, student *models.Student) error
}

// StudentImportService creates students in bulk from CSV or XLSX uploads.
type StudentImportService struct {
	students  studentImportStore
	maxRows   int
	hashCost  int
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentImportService constructs StudentImportService.
func NewStudentImportService(students studentImportStore, maxRows int, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentImportService{students: students, maxRows: maxRows, hashCost: bcrypt.DefaultCost, metrics: metrics, validator: validate, logger: logger}
}

// Import creates one student per valid row. Invalid rows are reported and skipped.
func (s *StudentImportService) Import(ctx context.Context, tenant models.TenantContext, filename string, r io.Reader) (*dto.StudentImportResult, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	table, err := export.ReadTable(filename, r, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if missing := missingColumns(table.Headers, "name", "email"); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required columns: "+strings.Join(missing, ", "))
	}

	result := &dto.StudentImportResult{
		Total:     len(table.Rows),
		Succeeded: []dto.ImportedStudent{},
		Failed:    []dto.ImportFailure{},
	}
	seen := make(map[string]int)
	sequences := make(map[string]int)

	for _, row := range table.Rows {
		in := importRow(row)
		imported, err := s.importOne(ctx, tenant, in, seen, sequences)
		if err != nil {
			if errors.Is(err, appErrors.ErrInternal) {
				s.logger.Error("student import row failed", zap.String(logTenant, tenant.TenantID), zap.Int("row", in.Row), zap.Error(err))
			}
			result.Failed = append(result.Failed, dto.ImportFailure{Row: in.Row, Email: in.Email, Error: appErrors.FromError(err).Message})
			continue
		}
		result.Succeeded = append(result.Succeeded, *imported)
	}

	s.metrics.RecordImportRows(len(result.Succeeded), len(result.Failed))
	s.logger.Info("student import finished",
		zap.String(logTenant, tenant.TenantID),
		zap.String("file", filename),
		zap.Int("total", result.Total),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *StudentImportService) importOne(ctx context.Context, tenant models.TenantContext, in models.StudentImportRow, seen map[string]int, sequences map[string]int) (*dto.ImportedStudent, error) {
	if in.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if in.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	if err := s.validator.Var(in.Email, "email"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email")
	}
	if first, dup := seen[in.Email]; dup {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate email, first used on row %d", first))
	}
	fee, err := parseFee(in.Fees)
	if err != nil {
		return nil, err
	}

	exists, err := s.students.ExistsByEmail(ctx, tenant.TenantID, in.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this email already exists")
	}
	seen[in.Email] = in.Row

	seq, ok := sequences[in.Batch]
	if !ok {
		seq, err = s.students.CountByBatch(ctx, tenant.TenantID, in.Batch)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to number student")
		}
	}
	seq++

	password, err := temporaryPassword()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := time.Now().UTC()
	student := &models.Student{
		TenantID:     tenant.TenantID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Gender:       normaliseGender(in.Gender),
		Course:       in.Course,
		Batch:        in.Batch,
		Address:      in.Address,
		RollNumber:   RollNumber(in.Batch, seq),
		TotalFee:     fee,
		PasswordHash: string(hash),
		Status:       "active",
		AdmissionAt:  &now,
		CreatedAt:    now,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	sequences[in.Batch] = seq

	return &dto.ImportedStudent{
		Row:               in.Row,
		StudentID:         student.ID,
		Name:              student.Name,
		Email:             student.Email,
		RollNumber:        student.RollNumber,
		TemporaryPassword: password,
	}, nil
}

func importRow(row export.TableRow) models.StudentImportRow {
	v := row.Values
	return models.StudentImportRow{
		Row:     row.Line,
		Name:    v["name"],
		Email:   strings.ToLower(v["email"]),
		Phone:   v["phone"],
		Gender:  v["gender"],
		Course:  v["course"],
		Batch:   v["batch"],
		Address: v["address"],
		Fees:    v["fees"],
	}
}

func missingColumns(headers []string, required ...string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func parseFee(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	fee, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "fees must be a number")
	}
	if fee < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "fees must not be negative")
	}
	return fee, nil
}

func normaliseGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male":
		return "Male"
	case "f", "female":
		return "Female"
	default:
		return "Other"
	}
}

// RollNumber formats the seq-th roll number of a batch as {batch digits}/{seq:03d}.
// Batches without digits use their upper-cased letters, and unnamed batches use GEN.
func RollNumber(batch string, seq int) string {
	var digits, letters strings.Builder
	for _, r := range batch {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			letters.WriteRune(unicode.ToUpper(r))
		}
	}
	prefix := digits.String()
	if prefix == "" {
		prefix = letters.String()
	}
	if prefix == "" {
		prefix = "GEN"
	}
	return fmt.Sprintf("%s/%03d", prefix, seq)
}

func temporaryPassword() (string, error) {
	out := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
