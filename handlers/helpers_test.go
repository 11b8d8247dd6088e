// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quorum/middleware"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/service"
	"github.com/danielhkuo/quorum/store"
	"github.com/danielhkuo/quorum/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv is an API over a fresh database with users:
// admin (admin role), alice and bob (staff, eligible for General), carol (no roles).
type testEnv struct {
	conn       *sqlx.DB
	router     *gin.Engine
	categoryID string
	staffRole  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	svc := service.New(store.NewBallotStore(conn), store.NewVoteStore(conn), store.NewDirectoryStore(conn), nil)

	ballotHandler := NewBallotHandler(svc)
	votingHandler := NewVotingHandler(svc)
	directoryHandler := NewDirectoryHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1", middleware.RequireAuth(testutil.TestJWTSecret), middleware.LoadPrincipal(svc))
	api.POST("/ballots", ballotHandler.CreateBallot)
	api.GET("/ballots", ballotHandler.ListBallots)
	api.GET("/ballots/:id", ballotHandler.GetBallot)
	api.POST("/ballots/:id/suspend", ballotHandler.SuspendBallot)
	api.POST("/ballots/:id/unsuspend", ballotHandler.UnsuspendBallot)
	api.POST("/ballots/:id/end", ballotHandler.EndBallot)
	api.GET("/ballots/:id/analytics", ballotHandler.GetAnalytics)
	api.POST("/ballots/:id/votes", votingHandler.SubmitVote)
	api.GET("/ballots/:id/votes/me", votingHandler.GetMyVote)
	api.POST("/roles", directoryHandler.CreateRole)
	api.GET("/roles", directoryHandler.ListRoles)
	api.POST("/roles/:id/members", directoryHandler.AssignRole)
	api.POST("/categories", directoryHandler.CreateCategory)
	api.GET("/categories", directoryHandler.ListCategories)

	adminRole := testutil.CreateTestRole(t, conn, "admin", true)
	staffRole := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", staffRole)
	testutil.AssignTestRole(t, conn, "admin", adminRole)
	testutil.AssignTestRole(t, conn, "alice", staffRole)
	testutil.AssignTestRole(t, conn, "bob", staffRole)

	return &testEnv{conn: conn, router: r, categoryID: categoryID, staffRole: staffRole}
}

// do sends an authenticated JSON request as userID
func (e *testEnv) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest(method, path, body, testutil.AuthHeader(t, userID))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doRaw sends an authenticated request with a literal body
func (e *testEnv) doRaw(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range testutil.AuthHeader(t, userID) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createBallot creates a ballot through the API as admin
func (e *testEnv) createBallot(t *testing.T, ballotType string, options ...string) models.BallotView {
	t.Helper()

	w := e.do(t, "POST", "/api/v1/ballots", "admin", models.CreateBallotRequest{
		Title:      "Team lunch",
		CategoryID: e.categoryID,
		LimitDate:  time.Now().Add(time.Hour),
		Type:       ballotType,
		Options:    options,
	})
	testutil.AssertStatus(t, w, 201)

	var view models.BallotView
	testutil.AssertJSON(t, w, &view)
	return view
}
