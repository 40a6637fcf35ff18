package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordConversion(ConversionOutcomeSuccess)
	m.RecordConversion(ConversionOutcomeAlreadyConverted)
	m.RecordMarksWritten(AttendanceScopeTest, 3)
	m.RecordMarksWritten(AttendanceScopeExam, 0)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues(ConversionOutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues(ConversionOutcomeAlreadyConverted)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.marksWritten.WithLabelValues(AttendanceScopeTest)))

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.Conversions)
	assert.Equal(t, uint64(3), snap.AttendanceMarksWritten)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordConversion(ConversionOutcomeError)
	m.RecordMarksWritten(AttendanceScopeExam, 2)
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	assert.Equal(t, uint64(0), m.Snapshot().Conversions)
}
