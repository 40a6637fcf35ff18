package dto

// ImportedStudent is a created student with its one-time password.
type ImportedStudent struct {
	Row               int    `json:"row"`
	StudentID         string `json:"studentId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	RollNumber        string `json:"rollNumber"`
	TemporaryPassword string `json:"temporaryPassword"`
}

// ImportFailure explains why a row was skipped.
type ImportFailure struct {
	Row   int    `json:"row"`
	Email string `json:"email,omitempty"`
	Error string `json:"error"`
}

// StudentImportResult summarises a bulk upload.
type StudentImportResult struct {
	Total     int               `json:"total"`
	Succeeded []ImportedStudent `json:"succeeded"`
	Failed    []ImportFailure   `json:"failed"`
}
