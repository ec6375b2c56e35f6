package patient

import "time"

// Patient is a pseudonymous patient record. The derived PatientID is
// immutable once created; only the label may change afterwards.
type Patient struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PatientID string    `gorm:"uniqueIndex;not null" json:"patient_id"`
	Label     string    `gorm:"default:''" json:"label"`
	CreatedBy uint      `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// TableName pins the table name regardless of gorm pluralization rules.
func (Patient) TableName() string { return "patients" }

// DeriveRequest carries a candidate national ID. The raw value is used
// only transiently; it is never persisted or logged.
type DeriveRequest struct {
	TC string `json:"tc"`
}

// DeriveResponse returns the derived pseudonymous identifier.
type DeriveResponse struct {
	PatientID string `json:"patient_id"`
}

// CreateRequest is the idempotent create-or-fetch payload.
type CreateRequest struct {
	PatientID string `json:"patient_id"`
	Label     string `json:"label"`
}

// Out is the public patient representation.
type Out struct {
	PatientID string `json:"patient_id"`
	Label     string `json:"label"`
}
