package patient

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/intern-assistant/platform/internal/shared/errors"
)

// Repository provides database operations for patients
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new patient repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrGet returns the existing patient for an identifier or creates
// one. Creation is idempotent: concurrent callers racing on the same
// identifier settle on the first row via the unique index.
func (r *Repository) CreateOrGet(ctx context.Context, patientID, label string, createdBy uint) (*Patient, error) {
	var existing Patient
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to get patient")
	}

	p := &Patient{PatientID: patientID, Label: label, CreatedBy: createdBy}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		// Lost the race: fetch the winner.
		if fetchErr := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&existing).Error; fetchErr == nil {
			return &existing, nil
		}
		return nil, errors.Wrap(err, "failed to create patient")
	}
	return p, nil
}

// Get retrieves a patient by derived identifier
func (r *Repository) Get(ctx context.Context, patientID string) (*Patient, error) {
	var p Patient
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&p).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("patient", patientID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get patient")
	}
	return &p, nil
}

// Exists reports whether a patient record exists. Implements the visit
// module's PatientStore.
func (r *Repository) Exists(ctx context.Context, patientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Patient{}).
		Where("patient_id = ?", patientID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check patient")
	}
	return count > 0, nil
}

// Label returns the patient label, or "" for an unknown identifier.
// Implements the visit module's PatientLabels.
func (r *Repository) Label(ctx context.Context, patientID string) (string, error) {
	p, err := r.Get(ctx, patientID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return p.Label, nil
}
