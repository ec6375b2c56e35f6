package visit

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/intern-assistant/platform/internal/identity"
	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/errors"
)

// UnknownAuthor is the placeholder for author ids with no user record.
const UnknownAuthor = "Unknown"

// DefaultFeedLimit caps the department feed when the caller supplies
// no limit.
const DefaultFeedLimit = 200

// PatientLabels resolves patient labels without coupling this package
// to the patient store. Implemented by the patient repository.
type PatientLabels interface {
	Label(ctx context.Context, patientID string) (string, error)
}

// Aggregator computes role-scoped daily aggregates over visits.
//
// The scoping rule is identical for every read operation: an intern
// only ever sees their own visits; any other role sees all authors
// unless an author filter is given. A filter that matches no user
// narrows to an empty result set, never to all authors.
type Aggregator struct {
	visits *Repository
	users  *identity.Repository
	labels PatientLabels
}

// NewAggregator creates a visit aggregator.
func NewAggregator(visits *Repository, users *identity.Repository, labels PatientLabels) *Aggregator {
	return &Aggregator{visits: visits, users: users, labels: labels}
}

// scopeAuthor applies the role-scoping rule. It returns the author id
// restriction (nil for "all authors") and whether the scope is empty.
func (a *Aggregator) scopeAuthor(ctx context.Context, caller *auth.Identity, author string) (*uint, bool, error) {
	if caller.IsIntern() {
		id := caller.ID
		return &id, false, nil
	}
	if author == "" {
		return nil, false, nil
	}

	user, err := a.users.FindByNameOrUsername(ctx, author)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return &user.ID, false, nil
}

// PatientsSeen lists the patients with at least one visit in the
// window, each with its visit count and latest visit timestamp, newest
// first. Patients with zero visits in the window do not appear.
func (a *Aggregator) PatientsSeen(ctx context.Context, caller *auth.Identity, win Window, department string) ([]PatientSummary, error) {
	authorID, empty, err := a.scopeAuthor(ctx, caller, "")
	if err != nil {
		return nil, err
	}
	if empty {
		return []PatientSummary{}, nil
	}

	groups, err := a.visits.PatientGroups(ctx, Filter{
		Window:     win,
		Department: department,
		AuthorID:   authorID,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]PatientSummary, 0, len(groups))
	for _, g := range groups {
		label, err := a.labels.Label(ctx, g.PatientID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, PatientSummary{
			PatientID:   g.PatientID,
			Label:       label,
			CountToday:  g.Count,
			LastVisitTS: g.LastTS,
		})
	}
	return summaries, nil
}

// PatientVisits returns a single patient's visits in the window,
// oldest first, independent of department. An unknown patient yields
// an empty list, not an error.
func (a *Aggregator) PatientVisits(ctx context.Context, caller *auth.Identity, patientID string, win Window) ([]Entry, error) {
	authorID, _, err := a.scopeAuthor(ctx, caller, "")
	if err != nil {
		return nil, err
	}

	visits, err := a.visits.InWindow(ctx, Filter{
		Window:     win,
		Department: "ALL",
		AuthorID:   authorID,
		PatientID:  patientID,
	})
	if err != nil {
		return nil, err
	}
	return a.toEntries(ctx, visits)
}

// DailySummary computes totals of the four action flags, per-author
// visit counts and detail, plus the human-readable summary lines.
func (a *Aggregator) DailySummary(ctx context.Context, caller *auth.Identity, win Window, department, author string) (*DailyReport, error) {
	visits, err := a.windowVisits(ctx, caller, win, department, author, false, 0)
	if err != nil {
		return nil, err
	}

	names, err := a.users.DisplayNames(ctx)
	if err != nil {
		return nil, err
	}

	totals := map[string]int{"critical": 0, "drugs": 0, "tests": 0, "consults": 0}
	byAuthor := map[string]int{}
	byAuthorDetail := map[string]AuthorDetail{}
	patients := map[string]struct{}{}
	authorPatients := map[string]map[string]struct{}{}

	for _, v := range visits {
		patients[v.PatientID] = struct{}{}

		if v.OpsCritical {
			totals["critical"]++
		}
		if v.OpsDrug {
			totals["drugs"]++
		}
		if v.OpsTest {
			totals["tests"]++
		}
		if v.OpsConsult {
			totals["consults"]++
		}

		name := authorName(names, v.AuthorID)
		byAuthor[name]++

		detail := byAuthorDetail[name]
		detail.Visits++
		if v.OpsCritical {
			detail.Critical++
		}
		if authorPatients[name] == nil {
			authorPatients[name] = map[string]struct{}{}
		}
		authorPatients[name][v.PatientID] = struct{}{}
		detail.Patients = len(authorPatients[name])
		byAuthorDetail[name] = detail
	}

	return &DailyReport{
		PatientsSeen:   len(patients),
		Totals:         totals,
		ByAuthor:       byAuthor,
		ByAuthorDetail: byAuthorDetail,
		Lines:          summaryLines(totals),
	}, nil
}

// DepartmentFeed returns the window's visits newest first, capped at
// limit, grouped by resolved author display name.
func (a *Aggregator) DepartmentFeed(ctx context.Context, caller *auth.Identity, win Window, department, author string, limit int) (map[string][]Entry, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	visits, err := a.windowVisits(ctx, caller, win, department, author, true, limit)
	if err != nil {
		return nil, err
	}

	entries, err := a.toEntries(ctx, visits)
	if err != nil {
		return nil, err
	}

	feed := map[string][]Entry{}
	for _, e := range entries {
		feed[e.Author] = append(feed[e.Author], e)
	}
	return feed, nil
}

// WindowEntries returns the window's visits oldest first with authors
// resolved; the printable report is built from this.
func (a *Aggregator) WindowEntries(ctx context.Context, caller *auth.Identity, win Window, department, author string) ([]Entry, error) {
	visits, err := a.windowVisits(ctx, caller, win, department, author, false, 0)
	if err != nil {
		return nil, err
	}
	return a.toEntries(ctx, visits)
}

func (a *Aggregator) windowVisits(ctx context.Context, caller *auth.Identity, win Window, department, author string, descending bool, limit int) ([]Visit, error) {
	authorID, empty, err := a.scopeAuthor(ctx, caller, author)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	return a.visits.InWindow(ctx, Filter{
		Window:     win,
		Department: department,
		AuthorID:   authorID,
		Descending: descending,
		Limit:      limit,
	})
}

func (a *Aggregator) toEntries(ctx context.Context, visits []Visit) ([]Entry, error) {
	names, err := a.users.DisplayNames(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(visits))
	for _, v := range visits {
		entries = append(entries, Entry{
			ID:         v.ID,
			PatientID:  v.PatientID,
			TS:         v.TS,
			Author:     authorName(names, v.AuthorID),
			Text:       v.Text,
			Department: v.Department,
			EditedAt:   v.EditedAt,
			Ops: Ops{
				Drug:     v.OpsDrug,
				Test:     v.OpsTest,
				Consult:  v.OpsConsult,
				Critical: v.OpsCritical,
			},
		})
	}
	return entries, nil
}

func authorName(names map[uint]string, id uint) string {
	if name, ok := names[id]; ok {
		return name
	}
	return UnknownAuthor
}

// summaryLines renders one line per nonzero total in fixed priority
// order: critical, tests, drugs. An all-zero day gets the single
// fallback line.
func summaryLines(totals map[string]int) []string {
	var lines []string
	if totals["critical"] > 0 {
		lines = append(lines, fmt.Sprintf("%d kritik vaka", totals["critical"]))
	}
	if totals["tests"] > 0 {
		lines = append(lines, fmt.Sprintf("%d tetkik", totals["tests"]))
	}
	if totals["drugs"] > 0 {
		lines = append(lines, fmt.Sprintf("%d ilaç", totals["drugs"]))
	}
	if len(lines) == 0 {
		lines = append(lines, "Önemli bulgu yok.")
	}
	return lines
}

// SortedAuthors returns the report's authors in alphabetical order.
// The printable performance table is stable across renders.
func SortedAuthors(detail map[string]AuthorDetail) []string {
	authors := make([]string, 0, len(detail))
	for name := range detail {
		authors = append(authors, name)
	}
	sort.Strings(authors)
	return authors
}
