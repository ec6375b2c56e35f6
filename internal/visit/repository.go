package visit

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/intern-assistant/platform/internal/shared/errors"
)

// Filter scopes read-side queries to a day window plus optional
// department, author and patient restrictions.
type Filter struct {
	Window     Window
	Department string // "ALL" or an exact code, matched case-insensitively
	AuthorID   *uint
	PatientID  string
	Descending bool
	Limit      int
}

// PatientGroup is one grouped row of the patients-seen query.
type PatientGroup struct {
	PatientID string
	Count     int
	LastTS    time.Time
}

// Repository provides database operations for visits
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new visit repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new visit
func (r *Repository) Create(ctx context.Context, v *Visit) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return errors.Wrap(err, "failed to create visit")
	}
	return nil
}

// Get retrieves a visit by id
func (r *Repository) Get(ctx context.Context, id uint) (*Visit, error) {
	var v Visit
	err := r.db.WithContext(ctx).First(&v, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("visit", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get visit")
	}
	return &v, nil
}

// Update persists a full visit record
func (r *Repository) Update(ctx context.Context, v *Visit) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		return errors.Wrap(err, "failed to update visit")
	}
	return nil
}

// Delete removes a visit
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Visit{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete visit")
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("visit", strconv.FormatUint(uint64(id), 10))
	}
	return nil
}

// InWindow returns the visits matching a filter, ordered by timestamp.
func (r *Repository) InWindow(ctx context.Context, f Filter) ([]Visit, error) {
	q := r.scope(ctx, f)

	order := "ts ASC"
	if f.Descending {
		order = "ts DESC"
	}
	q = q.Order(order)

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var visits []Visit
	if err := q.Find(&visits).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list visits")
	}
	return visits, nil
}

// PatientGroups groups the matching visits by patient, newest first.
// Grouping happens in process: the sqlite driver returns computed
// aggregate columns as TEXT, so a SQL MAX(ts) cannot scan into
// time.Time on the embedded store.
func (r *Repository) PatientGroups(ctx context.Context, f Filter) ([]PatientGroup, error) {
	var visits []Visit
	if err := r.scope(ctx, f).Find(&visits).Error; err != nil {
		return nil, errors.Wrap(err, "failed to group visits")
	}

	idx := map[string]int{}
	groups := []PatientGroup{}
	for _, v := range visits {
		i, ok := idx[v.PatientID]
		if !ok {
			i = len(groups)
			idx[v.PatientID] = i
			groups = append(groups, PatientGroup{PatientID: v.PatientID})
		}
		groups[i].Count++
		if v.TS.After(groups[i].LastTS) {
			groups[i].LastTS = v.TS
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].LastTS.After(groups[j].LastTS)
	})
	return groups, nil
}

func (r *Repository) scope(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Visit{}).
		Where("ts >= ? AND ts < ?", f.Window.Start, f.Window.End)

	if f.Department != "" && f.Department != "ALL" {
		q = q.Where("department = ?", strings.ToUpper(f.Department))
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	return q
}
