package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

const (
	defaultPassingThreshold = 40.0
	defaultTopLimit         = 10
)

// Aggregate folds graded records into report statistics, top performers and
// per-subject averages. Output is deterministic for a given input.
func Aggregate(records []models.GradedRecord, opts models.AggregateOptions) models.ReportAggregate {
	threshold := defaultPassingThreshold
	if opts.PassingThreshold != nil {
		threshold = *opts.PassingThreshold
	}
	limit := opts.TopLimit
	if limit <= 0 {
		limit = defaultTopLimit
	}

	result := models.ReportAggregate{
		Statistics:         models.ReportStatistics{AvgPercentage: "0.00", PassPercentage: "0.00"},
		TopPerformers:      []models.GradedRecord{},
		SubjectPerformance: []models.SubjectPerformance{},
	}
	if len(records) == 0 {
		return result
	}

	type subjectAcc struct {
		sum   float64
		count int
		tests map[string]struct{}
	}
	tests := make(map[string]struct{})
	subjects := make(map[string]*subjectAcc)
	var sum float64
	passed := 0
	for _, r := range records {
		tests[r.TestID] = struct{}{}
		sum += r.Percentage
		if r.Percentage >= threshold {
			passed++
		}
		acc := subjects[r.Subject]
		if acc == nil {
			acc = &subjectAcc{tests: make(map[string]struct{})}
			subjects[r.Subject] = acc
		}
		acc.sum += r.Percentage
		acc.count++
		acc.tests[r.TestID] = struct{}{}
	}

	result.Statistics = models.ReportStatistics{
		TotalTests:     len(tests),
		AvgPercentage:  fmt.Sprintf("%.2f", sum/float64(len(records))),
		PassPercentage: fmt.Sprintf("%.2f", float64(passed)*100/float64(len(records))),
	}

	top := make([]models.GradedRecord, len(records))
	copy(top, records)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Percentage != top[j].Percentage {
			return top[i].Percentage > top[j].Percentage
		}
		if top[i].TestID != top[j].TestID {
			return top[i].TestID < top[j].TestID
		}
		return top[i].StudentID < top[j].StudentID
	})
	if len(top) > limit {
		top = top[:limit]
	}
	result.TopPerformers = top

	type subjectAvg struct {
		perf models.SubjectPerformance
		avg  float64
	}
	avgs := make([]subjectAvg, 0, len(subjects))
	for subject, acc := range subjects {
		avg := acc.sum / float64(acc.count)
		avgs = append(avgs, subjectAvg{
			perf: models.SubjectPerformance{Subject: subject, TestCount: len(acc.tests), AvgPercentage: fmt.Sprintf("%.2f", avg)},
			avg:  avg,
		})
	}
	sort.Slice(avgs, func(i, j int) bool {
		if avgs[i].avg != avgs[j].avg {
			return avgs[i].avg > avgs[j].avg
		}
		return avgs[i].perf.Subject < avgs[j].perf.Subject
	})
	for _, s := range avgs {
		result.SubjectPerformance = append(result.SubjectPerformance, s.perf)
	}
	return result
}
