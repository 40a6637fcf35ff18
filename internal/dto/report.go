package dto

import "time"

// ReportFilter is the query accepted by the academic reports endpoint.
type ReportFilter struct {
	Course           string     `form:"course"`
	BatchID          string     `form:"batchId"`
	From             *time.Time `form:"from" time_format:"2006-01-02"`
	To               *time.Time `form:"to" time_format:"2006-01-02"`
	PassingThreshold *float64   `form:"passingThreshold" validate:"omitempty,gte=0,lte=100"`
	Limit            int        `form:"limit" validate:"omitempty,min=1,max=100"`
}
