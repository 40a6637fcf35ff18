package models

import "time"

// Batch is a cohort following a course with a fee and a capacity.
type Batch struct {
	ID            string     `db:"id" json:"id"`
	TenantID      string     `db:"tenant_id" json:"tenantId"`
	Name          string     `db:"name" json:"batchName"`
	Course        string     `db:"course" json:"course"`
	Fee           float64    `db:"fee" json:"fee"`
	Schedule      string     `db:"schedule" json:"schedule"`
	StartDate     *time.Time `db:"start_date" json:"startDate,omitempty"`
	Duration      string     `db:"duration" json:"duration"`
	Capacity      int        `db:"capacity" json:"capacity"`
	EnrolledCount int        `db:"enrolled_count" json:"enrolled"`
}

// Full reports whether the batch reached its capacity. Callers decide what to do with it.
func (b Batch) Full() bool {
	return b.Capacity > 0 && b.EnrolledCount >= b.Capacity
}
