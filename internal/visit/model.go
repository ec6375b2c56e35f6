package visit

import "time"

// DefaultDepartment is used when a visit carries no department code.
const DefaultDepartment = "GENEL"

// Visit is one rounds entry: a timestamped clinical note with four
// independent action flags. Only its author may mutate or delete it.
type Visit struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PatientID string `gorm:"index;not null" json:"patient_id"`
	AuthorID  uint   `gorm:"index;not null" json:"author_id"`

	Text       string `gorm:"default:''" json:"text"`
	Department string `gorm:"default:GENEL" json:"department"`

	OpsDrug     bool `json:"ops_drug"`
	OpsTest     bool `json:"ops_test"`
	OpsConsult  bool `json:"ops_consult"`
	OpsCritical bool `json:"ops_critical"`

	// TS is local wall-clock time at a fixed UTC+3 offset, set at
	// creation. Not a timezone-aware conversion.
	TS       time.Time  `gorm:"index;column:ts" json:"ts"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

// TableName pins the table name regardless of gorm pluralization rules.
func (Visit) TableName() string { return "visits" }

// CreateRequest is the visit creation payload.
type CreateRequest struct {
	PatientID   string `json:"patient_id"`
	Text        string `json:"text"`
	OpsDrug     bool   `json:"ops_drug"`
	OpsTest     bool   `json:"ops_test"`
	OpsConsult  bool   `json:"ops_consult"`
	OpsCritical bool   `json:"ops_critical"`
	Department  string `json:"department"`
}

// UpdateRequest is a partial update of text and flags. Each field is
// independently nullable: nil means leave unchanged.
type UpdateRequest struct {
	Text        *string `json:"text"`
	OpsDrug     *bool   `json:"ops_drug"`
	OpsTest     *bool   `json:"ops_test"`
	OpsConsult  *bool   `json:"ops_consult"`
	OpsCritical *bool   `json:"ops_critical"`
}

// Ops groups the four action flags in read payloads.
type Ops struct {
	Drug     bool `json:"drug"`
	Test     bool `json:"test"`
	Consult  bool `json:"consult"`
	Critical bool `json:"critical"`
}

// Entry is one visit in a read-side feed, with the author resolved to
// a display name.
type Entry struct {
	ID         uint       `json:"id"`
	PatientID  string     `json:"patient_id"`
	TS         time.Time  `json:"ts"`
	Author     string     `json:"author"`
	Text       string     `json:"text"`
	Department string     `json:"department"`
	EditedAt   *time.Time `json:"edited_at"`
	Ops        Ops        `json:"ops"`
}

// PatientSummary is one row of the patients-seen listing.
type PatientSummary struct {
	PatientID   string    `json:"patient_id"`
	Label       string    `json:"label"`
	CountToday  int       `json:"count_today"`
	LastVisitTS time.Time `json:"last_visit_ts"`
}

// AuthorDetail is the per-author breakdown of a daily report.
type AuthorDetail struct {
	Patients int `json:"patients"`
	Visits   int `json:"visits"`
	Critical int `json:"critical"`
}

// DailyReport is the structured daily aggregate.
type DailyReport struct {
	PatientsSeen   int                     `json:"patients_seen"`
	Totals         map[string]int          `json:"totals"`
	ByAuthor       map[string]int          `json:"by_author"`
	ByAuthorDetail map[string]AuthorDetail `json:"by_author_detail"`
	Lines          []string                `json:"lines"`
}
