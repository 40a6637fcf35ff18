package models

import "time"

// Student is an admitted learner of a tenant.
type Student struct {
	ID           string     `db:"id" json:"id"`
	TenantID     string     `db:"tenant_id" json:"tenantId"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	Gender       string     `db:"gender" json:"gender"`
	Course       string     `db:"course" json:"course"`
	Batch        string     `db:"batch" json:"batch"`
	BatchID      *string    `db:"batch_id" json:"batchId,omitempty"`
	Address      string     `db:"address" json:"address"`
	RollNumber   string     `db:"roll_number" json:"rollNumber"`
	TotalFee     float64    `db:"total_fee" json:"totalFee"`
	PaidAmount   float64    `db:"paid_amount" json:"paidAmount"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Status       string     `db:"status" json:"status"`
	AdmissionAt  *time.Time `db:"admission_date" json:"admissionDate,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// RosterEntry is the slice of student data attendance pages need.
type RosterEntry struct {
	StudentID  string `db:"id" json:"studentId"`
	Name       string `db:"name" json:"name"`
	Email      string `db:"email" json:"email"`
	RollNumber string `db:"roll_number" json:"rollNumber"`
}

// StudentImportRow is one flat record of a bulk upload file.
type StudentImportRow struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Gender  string `json:"gender"`
	Course  string `json:"course"`
	Batch   string `json:"batch"`
	Address string `json:"address"`
	Fees    string `json:"fees"`
}
