package visit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intern-assistant/platform/internal/identity"
	"github.com/intern-assistant/platform/internal/shared/auth"
)

// stubPatients satisfies PatientStore with a fixed set of known ids.
type stubPatients map[string]bool

func (s stubPatients) Exists(_ context.Context, patientID string) (bool, error) {
	return s[patientID], nil
}

func handlerFixture(t *testing.T) (*Handler, *Repository, map[string]*auth.Identity) {
	t.Helper()
	ctx := context.Background()
	db := testDB(t)

	users := identity.NewRepository(db)
	callers := map[string]*auth.Identity{}
	for _, u := range []*identity.User{
		{Username: "e.sude", DisplayName: "E. Sude", PasswordHash: "x", Role: auth.RoleIntern},
		{Username: "m.demir", DisplayName: "M. Demir", PasswordHash: "x", Role: auth.RoleIntern},
	} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		callers[u.Username] = &auth.Identity{
			ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: u.Role,
		}
	}

	repo := NewRepository(db)
	agg := NewAggregator(repo, users, stubLabels{})
	h := NewHandler(repo, agg, stubPatients{"PX-aaaa1111": true})
	return h, repo, callers
}

func doRequest(h *Handler, caller *auth.Identity, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(auth.WithIdentity(req.Context(), caller))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateVisit(t *testing.T) {
	h, repo, callers := handlerFixture(t)

	rec := doRequest(h, callers["e.sude"], http.MethodPost, "/", map[string]any{
		"patient_id": "PX-aaaa1111",
		"text":       "vital bulgular stabil",
		"department": "  dahiliye ",
		"ops_test":   true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var created Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Department != "DAHILIYE" {
		t.Errorf("Department = %q, want DAHILIYE", created.Department)
	}
	if created.AuthorID != callers["e.sude"].ID {
		t.Errorf("AuthorID = %d, want caller %d", created.AuthorID, callers["e.sude"].ID)
	}
	if created.TS.IsZero() {
		t.Error("TS not set on creation")
	}
	if !created.OpsTest || created.OpsDrug {
		t.Errorf("flags = %+v, want only ops_test", created)
	}

	stored, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Text != "vital bulgular stabil" {
		t.Errorf("stored Text = %q", stored.Text)
	}
}

func TestCreateVisitDefaultDepartment(t *testing.T) {
	h, _, callers := handlerFixture(t)

	rec := doRequest(h, callers["e.sude"], http.MethodPost, "/", map[string]any{
		"patient_id": "PX-aaaa1111",
		"text":       "not",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var created Visit
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.Department != DefaultDepartment {
		t.Errorf("Department = %q, want %q", created.Department, DefaultDepartment)
	}
}

func TestCreateVisitUnknownPatient(t *testing.T) {
	h, _, callers := handlerFixture(t)

	rec := doRequest(h, callers["e.sude"], http.MethodPost, "/", map[string]any{
		"patient_id": "PX-missing",
		"text":       "not",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateVisitRequiresText(t *testing.T) {
	h, _, callers := handlerFixture(t)

	rec := doRequest(h, callers["e.sude"], http.MethodPost, "/", map[string]any{
		"patient_id": "PX-aaaa1111",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateVisitOwnership(t *testing.T) {
	h, repo, callers := handlerFixture(t)
	ctx := context.Background()

	v := &Visit{PatientID: "PX-aaaa1111", AuthorID: callers["e.sude"].ID, Text: "ilk not", Department: "GENEL", TS: LocalNow()}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("failed to create visit: %v", err)
	}

	// Another author may not edit.
	rec := doRequest(h, callers["m.demir"], http.MethodPut, fmt.Sprintf("/%d", v.ID), map[string]any{
		"text": "başkasının notu",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-author edit status = %d, want 403", rec.Code)
	}

	// The author may, and the edit is stamped.
	rec = doRequest(h, callers["e.sude"], http.MethodPut, fmt.Sprintf("/%d", v.ID), map[string]any{
		"text":         "güncellenmiş not",
		"ops_critical": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("author edit status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	updated, err := repo.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if updated.Text != "güncellenmiş not" {
		t.Errorf("Text = %q, want updated text", updated.Text)
	}
	if !updated.OpsCritical {
		t.Error("OpsCritical not set by patch")
	}
	if updated.EditedAt == nil {
		t.Error("EditedAt not stamped on edit")
	}
	if updated.Department != "GENEL" {
		t.Errorf("Department changed to %q by a partial patch", updated.Department)
	}
}

func TestUpdateVisitPartialPatch(t *testing.T) {
	h, repo, callers := handlerFixture(t)
	ctx := context.Background()

	v := &Visit{PatientID: "PX-aaaa1111", AuthorID: callers["e.sude"].ID, Text: "kalıcı not", Department: "GENEL", OpsDrug: true, TS: LocalNow()}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("failed to create visit: %v", err)
	}

	// Omitted fields stay untouched, including flags already true.
	rec := doRequest(h, callers["e.sude"], http.MethodPut, fmt.Sprintf("/%d", v.ID), map[string]any{
		"ops_test": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	updated, _ := repo.Get(ctx, v.ID)
	if updated.Text != "kalıcı not" {
		t.Errorf("Text = %q, want unchanged", updated.Text)
	}
	if !updated.OpsDrug || !updated.OpsTest {
		t.Errorf("flags = drug:%v test:%v, want both true", updated.OpsDrug, updated.OpsTest)
	}
}

func TestDeleteVisitOwnership(t *testing.T) {
	h, repo, callers := handlerFixture(t)
	ctx := context.Background()

	v := &Visit{PatientID: "PX-aaaa1111", AuthorID: callers["e.sude"].ID, Text: "silinecek", Department: "GENEL", TS: LocalNow()}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("failed to create visit: %v", err)
	}

	rec := doRequest(h, callers["m.demir"], http.MethodDelete, fmt.Sprintf("/%d", v.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-author delete status = %d, want 403", rec.Code)
	}

	rec = doRequest(h, callers["e.sude"], http.MethodDelete, fmt.Sprintf("/%d", v.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("author delete status = %d, want 200", rec.Code)
	}

	if _, err := repo.Get(ctx, v.ID); err == nil {
		t.Error("visit still present after delete")
	}
}

func TestDeleteVisitNotFound(t *testing.T) {
	h, _, callers := handlerFixture(t)

	rec := doRequest(h, callers["e.sude"], http.MethodDelete, "/424242", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestByDepartmentInvalidLimit(t *testing.T) {
	h, _, callers := handlerFixture(t)

	for _, limit := range []string{"0", "-5", "abc"} {
		rec := doRequest(h, callers["e.sude"], http.MethodGet, "/by_department?limit="+limit, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestByDepartmentFeedShape(t *testing.T) {
	h, repo, callers := handlerFixture(t)
	ctx := context.Background()

	now := LocalNow()
	for i := 0; i < 2; i++ {
		v := &Visit{PatientID: "PX-aaaa1111", AuthorID: callers["e.sude"].ID, Text: "not", Department: "GENEL", TS: now}
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("failed to create visit: %v", err)
		}
	}

	rec := doRequest(h, callers["e.sude"], http.MethodGet, "/by_department", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ByAuthor map[string][]Entry `json:"by_author"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.ByAuthor["E. Sude"]) != 2 {
		t.Errorf("E. Sude feed has %d entries, want 2", len(body.ByAuthor["E. Sude"]))
	}
}
