package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, models.AggregateOptions{})
	assert.Equal(t, models.ReportAggregate{
		Statistics:         models.ReportStatistics{TotalTests: 0, AvgPercentage: "0.00", PassPercentage: "0.00"},
		TopPerformers:      []models.GradedRecord{},
		SubjectPerformance: []models.SubjectPerformance{},
	}, got)
}

func TestAggregateSubjectScenario(t *testing.T) {
	records := []models.GradedRecord{
		{StudentID: "s1", TestID: "t1", Subject: "Math", Percentage: 80},
		{StudentID: "s2", TestID: "t2", Subject: "Math", Percentage: 60},
		{StudentID: "s3", TestID: "t3", Subject: "Physics", Percentage: 90},
	}
	got := Aggregate(records, models.AggregateOptions{})

	require.Len(t, got.SubjectPerformance, 2)
	assert.Equal(t, models.SubjectPerformance{Subject: "Physics", TestCount: 1, AvgPercentage: "90.00"}, got.SubjectPerformance[0])
	assert.Equal(t, models.SubjectPerformance{Subject: "Math", TestCount: 2, AvgPercentage: "70.00"}, got.SubjectPerformance[1])
	assert.Equal(t, 3, got.Statistics.TotalTests)
	assert.Equal(t, "76.67", got.Statistics.AvgPercentage)
	assert.Equal(t, "100.00", got.Statistics.PassPercentage)
}

func TestAggregateDistinctTestsAndThreshold(t *testing.T) {
	records := []models.GradedRecord{
		{StudentID: "s1", TestID: "t1", Subject: "Math", Percentage: 35},
		{StudentID: "s2", TestID: "t1", Subject: "Math", Percentage: 55},
		{StudentID: "s3", TestID: "t1", Subject: "Math", Percentage: 45},
		{StudentID: "s4", TestID: "t1", Subject: "Math", Percentage: 39.99},
	}
	got := Aggregate(records, models.AggregateOptions{})
	assert.Equal(t, 1, got.Statistics.TotalTests)
	assert.Equal(t, "50.00", got.Statistics.PassPercentage)

	threshold := 50.0
	got = Aggregate(records, models.AggregateOptions{PassingThreshold: &threshold})
	assert.Equal(t, "25.00", got.Statistics.PassPercentage)
	assert.Equal(t, 1, got.SubjectPerformance[0].TestCount)
}

func TestAggregateTopPerformersOrderAndLimit(t *testing.T) {
	records := []models.GradedRecord{
		{StudentID: "s2", TestID: "t2", Subject: "Math", Percentage: 90},
		{StudentID: "s1", TestID: "t2", Subject: "Math", Percentage: 90},
		{StudentID: "s9", TestID: "t1", Subject: "Math", Percentage: 90},
		{StudentID: "s3", TestID: "t1", Subject: "Math", Percentage: 95},
		{StudentID: "s4", TestID: "t1", Subject: "Math", Percentage: 10},
	}
	got := Aggregate(records, models.AggregateOptions{TopLimit: 4})

	ids := make([]string, 0, len(got.TopPerformers))
	for _, r := range got.TopPerformers {
		ids = append(ids, r.StudentID)
	}
	assert.Equal(t, []string{"s3", "s9", "s1", "s2"}, ids)
	assert.Equal(t, "s2", records[0].StudentID, "input must not be reordered")
}

func TestAggregateDefaultTopLimit(t *testing.T) {
	records := make([]models.GradedRecord, 0, 15)
	for i := 0; i < 15; i++ {
		records = append(records, models.GradedRecord{StudentID: string(rune('a' + i)), TestID: "t1", Subject: "Bio", Percentage: float64(i)})
	}
	got := Aggregate(records, models.AggregateOptions{})
	assert.Len(t, got.TopPerformers, 10)
	assert.Equal(t, 14.0, got.TopPerformers[0].Percentage)
}

func TestAggregateSubjectTieBreaksByName(t *testing.T) {
	records := []models.GradedRecord{
		{StudentID: "s1", TestID: "t1", Subject: "Zoology", Percentage: 70},
		{StudentID: "s1", TestID: "t2", Subject: "Botany", Percentage: 70},
	}
	got := Aggregate(records, models.AggregateOptions{})
	assert.Equal(t, "Botany", got.SubjectPerformance[0].Subject)
	assert.Equal(t, "Zoology", got.SubjectPerformance[1].Subject)
}

func TestAggregateHonoursZeroThreshold(t *testing.T) {
	records := []models.GradedRecord{{StudentID: "s1", TestID: "t1", Subject: "Math", Percentage: 10}}

	got := Aggregate(records, models.AggregateOptions{})
	assert.Equal(t, "0.00", got.Statistics.PassPercentage)

	zero := 0.0
	got = Aggregate(records, models.AggregateOptions{PassingThreshold: &zero})
	assert.Equal(t, "100.00", got.Statistics.PassPercentage)
}
