package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type marksServiceMock struct {
	testID string
	req    dto.EnterMarksRequest
	err    error
}

func (m *marksServiceMock) Enter(ctx context.Context, tenant models.TenantContext, testID string, req dto.EnterMarksRequest) (*dto.TestMarksResponse, error) {
	m.testID = testID
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.TestMarksResponse{
		Test:  models.AcademicTest{ID: testID},
		Marks: []models.TestMark{{StudentID: "s1", MarksObtained: 45, Percentage: 90, Grade: "A+", Passed: true}},
	}, nil
}

func (m *marksServiceMock) List(ctx context.Context, tenant models.TenantContext, testID string) (*dto.TestMarksResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.TestMarksResponse{Test: models.AcademicTest{ID: testID}, Marks: []models.TestMark{}}, nil
}

func TestMarksHandlerEnter(t *testing.T) {
	mockSvc := &marksServiceMock{}
	h := NewMarksHandler(mockSvc)
	c, w := newGinContext(http.MethodPut, "/academics/tests/test-1/marks", []byte(`{"marks":[{"studentId":"s1","marksObtained":45,"remarks":"good"}]}`))
	c.Params = gin.Params{{Key: "testId", Value: "test-1"}}
	h.Enter(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test-1", mockSvc.testID)
	require.Len(t, mockSvc.req.Marks, 1)
	assert.Equal(t, 45.0, mockSvc.req.Marks[0].MarksObtained)
	assert.Contains(t, w.Body.String(), `"grade":"A+"`)
}

func TestMarksHandlerEnterUnknownTest(t *testing.T) {
	h := NewMarksHandler(&marksServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "test not found")})
	c, w := newGinContext(http.MethodPut, "/academics/tests/missing/marks", []byte(`{"marks":[{"studentId":"s1","marksObtained":1}]}`))
	c.Params = gin.Params{{Key: "testId", Value: "missing"}}
	h.Enter(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarksHandlerEnterRejectsBadJSON(t *testing.T) {
	mockSvc := &marksServiceMock{}
	h := NewMarksHandler(mockSvc)
	c, w := newGinContext(http.MethodPut, "/academics/tests/test-1/marks", []byte(`{"marks":`))
	h.Enter(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.testID)
}

func TestMarksHandlerList(t *testing.T) {
	h := NewMarksHandler(&marksServiceMock{})
	c, w := newGinContext(http.MethodGet, "/academics/tests/test-1/marks", nil)
	c.Params = gin.Params{{Key: "testId", Value: "test-1"}}
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"test-1"`)
}
