// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/cliparse"
	"github.com/danielhkuo/quorum/db"
	"github.com/danielhkuo/quorum/models"
)

// TestJWTSecret signs tokens produced by AuthHeader
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Each call gets its own database; it is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	url := fmt.Sprintf("file:%s?mode=memory&cache=shared", auth.NewID())
	conn, err := db.Open(ctx, "sqlite", url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection keeps the in-memory database alive and serializes writers.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file::memory:",
		DatabaseType:   "sqlite",
		JWTSecret:      TestJWTSecret,
		VoteRateLimit:  10,
		VoteRateWindow: time.Minute,
		KafkaTopic:     "ballot-events",
		AllowedOrigins: []string{"*"},
	}
}

// CreateTestRole inserts a role and returns its ID
func CreateTestRole(t *testing.T, conn *sqlx.DB, name string, isAdmin bool) string {
	t.Helper()

	roleID := auth.NewID()
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO role (id, name, is_admin) VALUES (?, ?, ?)
	`), roleID, name, isAdmin)
	if err != nil {
		t.Fatalf("Failed to create test role: %v", err)
	}
	return roleID
}

// AssignTestRole adds a user to a role
func AssignTestRole(t *testing.T, conn *sqlx.DB, userID, roleID string) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO user_role (user_id, role_id) VALUES (?, ?)
	`), userID, roleID)
	if err != nil {
		t.Fatalf("Failed to assign test role: %v", err)
	}
}

// CreateTestCategory inserts a category eligible to the given roles and returns its ID
func CreateTestCategory(t *testing.T, conn *sqlx.DB, name string, roleIDs ...string) string {
	t.Helper()

	categoryID := auth.NewID()
	_, err := conn.Exec(conn.Rebind(`INSERT INTO category (id, name) VALUES (?, ?)`), categoryID, name)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	for _, roleID := range roleIDs {
		_, err := conn.Exec(conn.Rebind(`
			INSERT INTO category_role (category_id, role_id) VALUES (?, ?)
		`), categoryID, roleID)
		if err != nil {
			t.Fatalf("Failed to link test category role: %v", err)
		}
	}
	return categoryID
}

// CreateTestBallot inserts an active or ended ballot (depending on limitDate) with
// the given option titles and returns the ballot ID and option IDs in order.
// TEXT_INPUT ballots get a single text option regardless of titles.
func CreateTestBallot(t *testing.T, conn *sqlx.DB, categoryID, adminID, ballotType string, limitDate time.Time, titles ...string) (string, []string) {
	t.Helper()

	ballotID := auth.NewID()
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO ballot (id, title, description, type, category_id, admin_id,
			limit_date, is_suspended, time_left, version, created_at)
		VALUES (?, 'Test Ballot', 'A test ballot', ?, ?, ?, ?, FALSE, NULL, 1, ?)
	`), ballotID, ballotType, categoryID, adminID, limitDate.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	isText := ballotType == models.TypeTextInput
	if isText {
		titles = []string{"Response"}
	}

	optionIDs := make([]string, 0, len(titles))
	for i, title := range titles {
		optionID := auth.NewID()
		_, err := conn.Exec(conn.Rebind(`
			INSERT INTO voting_option (id, ballot_id, title, is_text, position)
			VALUES (?, ?, ?, ?, ?)
		`), optionID, ballotID, title, isText, i)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}
	return ballotID, optionIDs
}

// CreateTestVote inserts a single vote row (and its receipt) directly
func CreateTestVote(t *testing.T, conn *sqlx.DB, ballotID, userID, optionID string, rank int, at time.Time) string {
	t.Helper()

	voteID := auth.NewID()
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO vote_receipt (user_id, ballot_id, submitted_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, ballot_id) DO NOTHING
	`), userID, ballotID, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test receipt: %v", err)
	}

	_, err = conn.Exec(conn.Rebind(`
		INSERT INTO vote (id, user_id, ballot_id, option_id, text_response, rank_position, created_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
	`), voteID, userID, ballotID, optionID, rank, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return voteID
}

// CountRows returns the number of rows in table matching the where clause
func CountRows(t *testing.T, conn *sqlx.DB, table, where string, args ...interface{}) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := conn.Get(&count, conn.Rebind(query), args...); err != nil {
		t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	return count
}

// AuthHeader returns an Authorization header carrying a valid token for userID
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()

	token, err := auth.IssueToken(TestJWTSecret, userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
