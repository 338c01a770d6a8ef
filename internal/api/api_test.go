package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
	"github.com/erazemk/najdeno/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server  *httptest.Server
	db      *sql.DB
	admin   string
	staff   string
	student string
}

func newTestUser(t *testing.T, database store.DBTX, username string, role model.Role) string {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	user, err := store.CreateUser(context.Background(), database, username, string(hash), role, "")
	if err != nil {
		t.Fatalf("creating %s: %v", username, err)
	}
	token, err := auth.GenerateToken(testJWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("token for %s: %v", username, err)
	}
	return token
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	svc := reconcile.New(database, reconcile.Options{})
	server := httptest.NewServer(NewRouter(database, testJWTSecret, svc))
	t.Cleanup(server.Close)

	return &testEnv{
		server:  server,
		db:      database,
		admin:   newTestUser(t, database, "admin", model.RoleAdmin),
		staff:   newTestUser(t, database, "staff", model.RoleStaff),
		student: newTestUser(t, database, "student", model.RoleStudent),
	}
}

// call performs a request and decodes a JSON response into out when non-nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func expectStatus(t *testing.T, what string, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected %d, got %d", what, want, got)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	var login loginResponse
	code := env.call(t, "POST", "/api/auth/login", "", map[string]string{"username": "staff", "password": "password"}, &login)
	expectStatus(t, "login", code, http.StatusOK)
	if login.Token == "" || login.Role != model.RoleStaff {
		t.Errorf("unexpected login response %+v", login)
	}

	code = env.call(t, "POST", "/api/auth/login", "", map[string]string{"username": "staff", "password": "wrong"}, nil)
	expectStatus(t, "bad password", code, http.StatusUnauthorized)

	code = env.call(t, "POST", "/api/auth/login", "", map[string]string{"username": "staff"}, nil)
	expectStatus(t, "missing password", code, http.StatusBadRequest)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t)

	expectStatus(t, "before logout", env.call(t, "GET", "/api/tickets", env.student, nil, nil), http.StatusOK)
	expectStatus(t, "logout", env.call(t, "POST", "/api/auth/logout", env.student, nil, nil), http.StatusOK)
	expectStatus(t, "after logout", env.call(t, "GET", "/api/tickets", env.student, nil, nil), http.StatusUnauthorized)
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t)

	expectStatus(t, "tickets", env.call(t, "GET", "/api/tickets", "", nil, nil), http.StatusUnauthorized)
	expectStatus(t, "bad token", env.call(t, "GET", "/api/tickets", "garbage", nil, nil), http.StatusUnauthorized)
	expectStatus(t, "catalogue", env.call(t, "GET", "/api/found-items", "", nil, nil), http.StatusOK)
}

func TestRoleBasedAccess(t *testing.T) {
	env := setupTestServer(t)
	item := map[string]string{"category": "KEYS", "name": "Keys", "date_found": "2024-05-01", "location": "Gym"}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"student registers item", "POST", "/api/found-items", env.student, item, http.StatusForbidden},
		{"student lists users", "GET", "/api/users", env.student, nil, http.StatusForbidden},
		{"student finds matches", "GET", "/api/tickets/1/matches", env.student, nil, http.StatusForbidden},
		{"student approves", "POST", "/api/claims/1/approve", env.student, nil, http.StatusForbidden},
		{"staff reads audit", "GET", "/api/audit", env.staff, nil, http.StatusForbidden},
		{"staff reads dashboard", "GET", "/api/dashboard", env.staff, nil, http.StatusOK},
		{"admin reads audit", "GET", "/api/audit", env.admin, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, tt.name, env.call(t, tt.method, tt.path, tt.token, tt.body, nil), tt.want)
		})
	}
}

func TestReconciliationFlow(t *testing.T) {
	env := setupTestServer(t)

	var item model.FoundItem
	code := env.call(t, "POST", "/api/found-items", env.staff, map[string]string{
		"category": "ELECTRONICS", "name": "Black Wallet", "date_found": "2024-05-01", "location": "Library",
	}, &item)
	expectStatus(t, "register item", code, http.StatusCreated)

	var ticket model.LostTicket
	code = env.call(t, "POST", "/api/tickets", env.student, map[string]string{
		"category": "ELECTRONICS", "name": "Blue Wallet", "date_lost": "2024-04-30",
	}, &ticket)
	expectStatus(t, "create ticket", code, http.StatusCreated)

	var matches reconcile.Matches
	code = env.call(t, "GET", fmt.Sprintf("/api/tickets/%d/matches", ticket.ID), env.staff, nil, &matches)
	expectStatus(t, "matches", code, http.StatusOK)
	if len(matches.Ranked) != 0 || len(matches.Fallback) != 1 || matches.Fallback[0].ID != item.ID {
		t.Fatalf("unexpected matches %+v", matches)
	}

	var claim model.Claim
	claimPath := fmt.Sprintf("/api/found-items/%d/claims", item.ID)
	code = env.call(t, "POST", claimPath, env.student, map[string]string{"proof": "my library card is inside"}, &claim)
	expectStatus(t, "claim", code, http.StatusCreated)
	if claim.TicketID == nil || *claim.TicketID != ticket.ID {
		t.Fatalf("expected claim linked to ticket %d, got %v", ticket.ID, claim.TicketID)
	}

	code = env.call(t, "POST", claimPath, env.student, map[string]string{"proof": "again"}, nil)
	expectStatus(t, "duplicate claim", code, http.StatusConflict)

	var res reconcile.Adjudication
	code = env.call(t, "POST", fmt.Sprintf("/api/claims/%d/approve", claim.ID), env.staff, nil, &res)
	expectStatus(t, "approve", code, http.StatusOK)
	if res.Claim.Status != model.ClaimStatusApproved {
		t.Errorf("expected APPROVED, got %s", res.Claim.Status)
	}

	var closed model.LostTicket
	code = env.call(t, "GET", fmt.Sprintf("/api/tickets/%d", ticket.ID), env.student, nil, &closed)
	expectStatus(t, "get ticket", code, http.StatusOK)
	if closed.Status != model.TicketStatusClosed {
		t.Errorf("expected CLOSED ticket, got %s", closed.Status)
	}

	var catalogue []model.FoundItem
	env.call(t, "GET", "/api/found-items", "", nil, &catalogue)
	if len(catalogue) != 0 {
		t.Errorf("claimed item still listed in catalogue: %+v", catalogue)
	}

	var entries []model.AuditEntry
	code = env.call(t, "GET", "/api/audit", env.admin, nil, &entries)
	expectStatus(t, "audit", code, http.StatusOK)
	if len(entries) != 3 {
		t.Errorf("expected 3 audit entries (created, approved, updated), got %d", len(entries))
	}
}

func TestRejectWithReason(t *testing.T) {
	env := setupTestServer(t)

	var item model.FoundItem
	env.call(t, "POST", "/api/found-items", env.staff, map[string]string{
		"category": "BOOKS", "name": "Atlas", "date_found": "2024-05-01", "location": "Hall",
	}, &item)

	var claim model.Claim
	env.call(t, "POST", fmt.Sprintf("/api/found-items/%d/claims", item.ID), env.student, map[string]string{"proof": "margin notes"}, &claim)

	var res reconcile.Adjudication
	code := env.call(t, "POST", fmt.Sprintf("/api/claims/%d/reject", claim.ID), env.admin, map[string]string{"reason": "no notes inside"}, &res)
	expectStatus(t, "reject", code, http.StatusOK)
	if res.Claim.Status != model.ClaimStatusRejected || res.Claim.RejectionReason != "no notes inside" {
		t.Errorf("unexpected claim %+v", res.Claim)
	}

	var mine []model.Claim
	env.call(t, "GET", "/api/claims", env.student, nil, &mine)
	if len(mine) != 1 {
		t.Errorf("expected 1 own claim, got %d", len(mine))
	}
}

func TestValidationAndNotFound(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"unknown category", "POST", "/api/found-items", env.staff,
			map[string]string{"category": "PETS", "name": "Cat", "date_found": "2024-05-01", "location": "Yard"}, http.StatusBadRequest},
		{"bad date", "POST", "/api/found-items", env.staff,
			map[string]string{"category": "KEYS", "name": "Keys", "date_found": "01/05/2024", "location": "Yard"}, http.StatusBadRequest},
		{"empty proof", "POST", "/api/found-items/1/claims", env.student, map[string]string{"proof": ""}, http.StatusBadRequest},
		{"claim missing item", "POST", "/api/found-items/99/claims", env.student, map[string]string{"proof": "mine"}, http.StatusNotFound},
		{"matches missing ticket", "GET", "/api/tickets/99/matches", env.staff, nil, http.StatusNotFound},
		{"approve missing claim", "POST", "/api/claims/99/approve", env.staff, nil, http.StatusNotFound},
		{"confirm missing item", "POST", "/api/tickets/99/match/1", env.staff, nil, http.StatusNotFound},
		{"bad id", "GET", "/api/tickets/abc", env.student, nil, http.StatusBadRequest},
		{"bad ticket status", "GET", "/api/tickets?status=LOST", env.student, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, tt.name, env.call(t, tt.method, tt.path, tt.token, tt.body, nil), tt.want)
		})
	}
}

func TestHandInFlow(t *testing.T) {
	env := setupTestServer(t)

	var report model.HandInReport
	code := env.call(t, "POST", "/api/handins", "", map[string]string{
		"finder_name": "Dana", "name": "Umbrella", "location": "Main entrance",
	}, &report)
	expectStatus(t, "submit", code, http.StatusCreated)
	if report.ReferenceCode == "" || report.Category != model.CategoryOthers {
		t.Errorf("unexpected report %+v", report)
	}

	var pending []model.HandInReport
	expectStatus(t, "list", env.call(t, "GET", "/api/handins?pending=1", env.staff, nil, &pending), http.StatusOK)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending report, got %d", len(pending))
	}

	var item model.FoundItem
	receive := fmt.Sprintf("/api/handins/%d/receive", report.ID)
	expectStatus(t, "receive", env.call(t, "POST", receive, env.staff, nil, &item), http.StatusCreated)
	if item.HandInID == nil || *item.HandInID != report.ID {
		t.Errorf("expected item linked to report %d", report.ID)
	}
	expectStatus(t, "receive again", env.call(t, "POST", receive, env.staff, nil, nil), http.StatusBadRequest)

	var stats reconcile.Stats
	env.call(t, "GET", "/api/dashboard", env.staff, nil, &stats)
	if stats.AvailableItems != 1 || stats.UnreceivedHandIns != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestUsersAPI(t *testing.T) {
	env := setupTestServer(t)

	var user model.User
	code := env.call(t, "POST", "/api/users", env.admin, map[string]string{
		"username": "newstaff", "password": "longenough", "role": "STAFF",
	}, &user)
	expectStatus(t, "create", code, http.StatusCreated)
	if user.Role != model.RoleStaff {
		t.Errorf("expected STAFF, got %s", user.Role)
	}

	code = env.call(t, "POST", "/api/users", env.admin, map[string]string{
		"username": "other", "password": "longenough", "role": "MANAGER",
	}, nil)
	expectStatus(t, "invalid role", code, http.StatusBadRequest)

	code = env.call(t, "POST", "/api/users", env.admin, map[string]string{
		"username": "short", "password": "abc", "role": "STUDENT",
	}, nil)
	expectStatus(t, "short password", code, http.StatusBadRequest)

	code = env.call(t, "POST", "/api/users", env.admin, map[string]string{
		"username": "newstaff", "password": "longenough", "role": "STAFF",
	}, nil)
	expectStatus(t, "duplicate username", code, http.StatusConflict)

	var students []model.User
	env.call(t, "GET", "/api/users?role=STUDENT", env.admin, nil, &students)
	if len(students) != 1 {
		t.Errorf("expected 1 student, got %d", len(students))
	}

	expectStatus(t, "delete self", env.call(t, "DELETE", "/api/users/1", env.admin, nil, nil), http.StatusBadRequest)
	expectStatus(t, "delete", env.call(t, "DELETE", fmt.Sprintf("/api/users/%d", user.ID), env.admin, nil, nil), http.StatusOK)
	expectStatus(t, "get deleted", env.call(t, "GET", fmt.Sprintf("/api/users/%d", user.ID), env.admin, nil, nil), http.StatusNotFound)
}

func TestRevokedCapabilityTakesEffectImmediately(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	demoted := newTestUser(t, env.db, "demoted", model.RoleStaff)
	removed := newTestUser(t, env.db, "removed", model.RoleStaff)
	demotedUser, _ := store.GetUserByUsername(ctx, env.db, "demoted")
	removedUser, _ := store.GetUserByUsername(ctx, env.db, "removed")

	expectStatus(t, "staff dashboard", env.call(t, "GET", "/api/dashboard", demoted, nil, nil), http.StatusOK)

	code := env.call(t, "PUT", fmt.Sprintf("/api/users/%d", demotedUser.ID), env.admin, map[string]string{"role": "STUDENT"}, nil)
	expectStatus(t, "demote", code, http.StatusOK)
	expectStatus(t, "demoted dashboard", env.call(t, "GET", "/api/dashboard", demoted, nil, nil), http.StatusForbidden)
	expectStatus(t, "demoted approve", env.call(t, "POST", "/api/claims/1/approve", demoted, nil, nil), http.StatusForbidden)
	expectStatus(t, "demoted own tickets", env.call(t, "GET", "/api/tickets", demoted, nil, nil), http.StatusOK)

	code = env.call(t, "DELETE", fmt.Sprintf("/api/users/%d", removedUser.ID), env.admin, nil, nil)
	expectStatus(t, "delete", code, http.StatusOK)
	expectStatus(t, "deleted dashboard", env.call(t, "GET", "/api/dashboard", removed, nil, nil), http.StatusUnauthorized)
	expectStatus(t, "deleted tickets", env.call(t, "GET", "/api/tickets", removed, nil, nil), http.StatusUnauthorized)
}

func TestUpdateUserReportsDecodeErrors(t *testing.T) {
	env := setupTestServer(t)

	req, _ := http.NewRequest("PUT", env.server.URL+"/api/users/2", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+env.admin)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	expectStatus(t, "malformed body", resp.StatusCode, http.StatusBadRequest)
	if body["error"] != "invalid request body" {
		t.Errorf("expected body error, got %q", body["error"])
	}
}

func TestRequestID(t *testing.T) {
	handler := LoggingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestID(r.Context()) == "" {
			t.Error("expected request id in context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("expected propagated request id, got %q", got)
	}
}
