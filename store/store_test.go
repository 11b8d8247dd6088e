// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quorum/auth"
	"github.com/danielhkuo/quorum/models"
	"github.com/danielhkuo/quorum/testutil"
)

func TestBallotStore_CreateAndGet(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewBallotStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)

	now := time.Now().UTC()
	b := &models.Ballot{
		ID:          auth.NewID(),
		Title:       "Lunch",
		Description: "Where to eat",
		Type:        models.TypeSingleChoice,
		CategoryID:  categoryID,
		AdminID:     "admin-1",
		LimitDate:   now.Add(time.Hour),
		Version:     1,
		CreatedAt:   now,
	}
	options := []models.VotingOption{
		{ID: auth.NewID(), BallotID: b.ID, Title: "Pizza", Position: 0},
		{ID: auth.NewID(), BallotID: b.ID, Title: "Sushi", Position: 1},
	}

	if err := s.Create(ctx, b, options); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Lunch" || got.Type != models.TypeSingleChoice || got.IsSuspended || got.TimeLeft != nil {
		t.Errorf("unexpected ballot %+v", got)
	}
	if !got.LimitDate.Equal(b.LimitDate) {
		t.Errorf("limit date = %v, want %v", got.LimitDate, b.LimitDate)
	}

	opts, err := s.Options(ctx, b.ID)
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if len(opts) != 2 || opts[0].Title != "Pizza" || opts[1].Title != "Sushi" {
		t.Errorf("unexpected options %+v", opts)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestBallotStore_CreateUnknownCategory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := NewBallotStore(conn)

	now := time.Now().UTC()
	b := &models.Ballot{
		ID: auth.NewID(), Title: "X", Type: models.TypeYesNo, CategoryID: "nope",
		AdminID: "a", LimitDate: now.Add(time.Hour), Version: 1, CreatedAt: now,
	}
	if err := s.Create(context.Background(), b, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestBallotStore_List(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewBallotStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	catA := testutil.CreateTestCategory(t, conn, "A", roleID)
	catB := testutil.CreateTestCategory(t, conn, "B", roleID)

	now := time.Now().UTC()
	late, _ := testutil.CreateTestBallot(t, conn, catA, "admin", models.TypeYesNo, now.Add(3*time.Hour), "Yes", "No")
	early, _ := testutil.CreateTestBallot(t, conn, catA, "admin", models.TypeYesNo, now.Add(time.Hour), "Yes", "No")
	other, _ := testutil.CreateTestBallot(t, conn, catB, "admin", models.TypeYesNo, now.Add(2*time.Hour), "Yes", "No")

	ballots, err := s.List(ctx, []string{catA}, false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ballots) != 2 || ballots[0].ID != early || ballots[1].ID != late {
		t.Errorf("List(catA) returned wrong ballots or order: %+v", ballots)
	}

	all, err := s.List(ctx, nil, true)
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(all) != 3 || all[1].ID != other {
		t.Errorf("List(all) returned wrong ballots or order: %+v", all)
	}

	none, err := s.List(ctx, nil, false)
	if err != nil || len(none) != 0 {
		t.Errorf("List(no categories) = %v, %v; want empty", none, err)
	}
}

func TestBallotStore_UpdateLifecycleVersion(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewBallotStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	ballotID, _ := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeYesNo, time.Now().Add(time.Hour), "Yes", "No")

	first, _ := s.Get(ctx, ballotID)
	second, _ := s.Get(ctx, ballotID)

	timeLeft := int64(3600)
	first.IsSuspended = true
	first.TimeLeft = &timeLeft
	first.LimitDate = time.Now().UTC().AddDate(100, 0, 0)
	if err := s.UpdateLifecycle(ctx, first); err != nil {
		t.Fatalf("UpdateLifecycle() error = %v", err)
	}
	if first.Version != 2 {
		t.Errorf("version = %d, want 2", first.Version)
	}

	second.LimitDate = time.Now().UTC()
	if err := s.UpdateLifecycle(ctx, second); !errors.Is(err, ErrStale) {
		t.Errorf("stale UpdateLifecycle() error = %v, want ErrStale", err)
	}

	stored, _ := s.Get(ctx, ballotID)
	if !stored.IsSuspended || stored.TimeLeft == nil || *stored.TimeLeft != 3600 {
		t.Errorf("stored ballot not suspended correctly: %+v", stored)
	}
}

func newVote(ballotID, userID, optionID string, rank int, at time.Time) models.Vote {
	return models.Vote{
		ID: auth.NewID(), UserID: userID, BallotID: ballotID,
		OptionID: optionID, RankPosition: rank, CreatedAt: at,
	}
}

func TestVoteStore_RecordSingle(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewVoteStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	ballotID, opts := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeSingleChoice, time.Now().Add(time.Hour), "A", "B")

	now := time.Now().UTC()
	if err := s.Record(ctx, "u1", ballotID, false, []models.Vote{newVote(ballotID, "u1", opts[0], 0, now)}, now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	err := s.Record(ctx, "u1", ballotID, false, []models.Vote{newVote(ballotID, "u1", opts[1], 0, now)}, now)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second Record() error = %v, want ErrDuplicate", err)
	}

	if n := testutil.CountRows(t, conn, "vote", "user_id = ? AND ballot_id = ?", "u1", ballotID); n != 1 {
		t.Errorf("expected 1 vote row, got %d", n)
	}

	voted, err := s.HasVoted(ctx, ballotID, "u1")
	if err != nil || !voted {
		t.Errorf("HasVoted() = %v, %v", voted, err)
	}
}

func TestVoteStore_RecordReplace(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewVoteStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	ballotID, opts := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeMultipleChoice, time.Now().Add(time.Hour), "1", "2", "3")

	now := time.Now().UTC()
	first := []models.Vote{newVote(ballotID, "u1", opts[0], 0, now), newVote(ballotID, "u1", opts[1], 0, now)}
	if err := s.Record(ctx, "u1", ballotID, true, first, now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	later := now.Add(time.Minute)
	if err := s.Record(ctx, "u1", ballotID, true, []models.Vote{newVote(ballotID, "u1", opts[2], 0, later)}, later); err != nil {
		t.Fatalf("replace Record() error = %v", err)
	}

	votes, err := s.ForUser(ctx, ballotID, "u1")
	if err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	if len(votes) != 1 || votes[0].OptionID != opts[2] {
		t.Errorf("expected only option 3 after replace, got %+v", votes)
	}
	if n := testutil.CountRows(t, conn, "vote_receipt", "ballot_id = ?", ballotID); n != 1 {
		t.Errorf("expected one receipt, got %d", n)
	}
}

func TestVoteStore_RecordIsAtomic(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewVoteStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	ballotID, opts := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeMultipleChoice, time.Now().Add(time.Hour), "1", "2")

	now := time.Now().UTC()
	if err := s.Record(ctx, "u1", ballotID, true, []models.Vote{newVote(ballotID, "u1", opts[0], 0, now)}, now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	// Second row references a missing option, so the whole replacement must roll back.
	bad := []models.Vote{newVote(ballotID, "u1", opts[1], 0, now), newVote(ballotID, "u1", "missing-option", 0, now)}
	if err := s.Record(ctx, "u1", ballotID, true, bad, now); err == nil {
		t.Fatal("expected error for missing option")
	}

	votes, _ := s.ForUser(ctx, ballotID, "u1")
	if len(votes) != 1 || votes[0].OptionID != opts[0] {
		t.Errorf("failed replacement changed stored votes: %+v", votes)
	}
}

func TestVoteStore_ForUserRankOrder(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewVoteStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	ballotID, opts := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeRankedChoice, time.Now().Add(time.Hour), "A", "B", "C")

	// Insert out of rank order so primary key order differs from rank order.
	now := time.Now().UTC()
	votes := []models.Vote{
		newVote(ballotID, "u1", opts[2], 3, now.Add(2*time.Millisecond)),
		newVote(ballotID, "u1", opts[0], 2, now.Add(time.Millisecond)),
		newVote(ballotID, "u1", opts[1], 1, now),
	}
	if err := s.Record(ctx, "u1", ballotID, true, votes, now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := s.ForUser(ctx, ballotID, "u1")
	if err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	want := []string{opts[1], opts[0], opts[2]}
	for i := range want {
		if got[i].OptionID != want[i] || got[i].RankPosition != i+1 {
			t.Errorf("position %d: got option %s rank %d", i+1, got[i].OptionID, got[i].RankPosition)
		}
	}
}

func TestVoteStore_ConcurrentSingleSubmissions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewVoteStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	ballotID, opts := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeSingleChoice, time.Now().Add(time.Hour), "A", "B")

	const workers = 10
	var wg sync.WaitGroup
	var successes, duplicates int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			now := time.Now().UTC()
			err := s.Record(ctx, "u1", ballotID, false, []models.Vote{newVote(ballotID, "u1", opts[i%2], 0, now)}, now)
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, ErrDuplicate):
				atomic.AddInt32(&duplicates, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 || duplicates != workers-1 {
		t.Errorf("successes = %d, duplicates = %d", successes, duplicates)
	}
	if n := testutil.CountRows(t, conn, "vote", "ballot_id = ?", ballotID); n != 1 {
		t.Errorf("expected exactly 1 vote row, got %d", n)
	}
}

func TestVoteStore_VotedBallotIDs(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := NewVoteStore(conn)

	roleID := testutil.CreateTestRole(t, conn, "staff", false)
	categoryID := testutil.CreateTestCategory(t, conn, "General", roleID)
	b1, o1 := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeYesNo, time.Now().Add(time.Hour), "Yes", "No")
	b2, _ := testutil.CreateTestBallot(t, conn, categoryID, "admin", models.TypeYesNo, time.Now().Add(time.Hour), "Yes", "No")
	testutil.CreateTestVote(t, conn, b1, "u1", o1[0], 0, time.Now())

	voted, err := s.VotedBallotIDs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("VotedBallotIDs() error = %v", err)
	}
	if !voted[b1] || voted[b2] {
		t.Errorf("unexpected voted set %v", voted)
	}
}

func TestDirectoryStore_Eligibility(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewDirectoryStore(conn)

	staff := testutil.CreateTestRole(t, conn, "staff", false)
	board := testutil.CreateTestRole(t, conn, "board", false)
	admin := testutil.CreateTestRole(t, conn, "admin", true)

	general := testutil.CreateTestCategory(t, conn, "General", staff, board)
	boardOnly := testutil.CreateTestCategory(t, conn, "Board", board)
	testutil.CreateTestCategory(t, conn, "Empty")

	testutil.AssignTestRole(t, conn, "alice", staff)
	testutil.AssignTestRole(t, conn, "bob", board)
	testutil.AssignTestRole(t, conn, "bob", staff)
	testutil.AssignTestRole(t, conn, "root", admin)

	ids, err := s.EligibleCategoryIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("EligibleCategoryIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != general {
		t.Errorf("alice categories = %v", ids)
	}

	ids, _ = s.EligibleCategoryIDs(ctx, "bob")
	if len(ids) != 2 {
		t.Errorf("bob categories = %v", ids)
	}

	count, err := s.EligibleUserCount(ctx, general)
	if err != nil || count != 2 {
		t.Errorf("EligibleUserCount(general) = %d, %v; want 2", count, err)
	}
	count, _ = s.EligibleUserCount(ctx, boardOnly)
	if count != 1 {
		t.Errorf("EligibleUserCount(board) = %d, want 1", count)
	}

	for user, want := range map[string]bool{"alice": false, "bob": false, "root": true, "nobody": false} {
		got, err := s.IsAdmin(ctx, user)
		if err != nil || got != want {
			t.Errorf("IsAdmin(%s) = %v, %v; want %v", user, got, err, want)
		}
	}
}

func TestDirectoryStore_Plumbing(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewDirectoryStore(conn)

	role := &models.Role{ID: auth.NewID(), Name: "staff"}
	if err := s.CreateRole(ctx, role); err != nil {
		t.Fatalf("CreateRole() error = %v", err)
	}
	if err := s.CreateRole(ctx, &models.Role{ID: auth.NewID(), Name: "staff"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateRole() error = %v, want ErrDuplicate", err)
	}

	if err := s.AssignRole(ctx, "alice", role.ID); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	if err := s.AssignRole(ctx, "alice", role.ID); err != nil {
		t.Errorf("repeated AssignRole() error = %v", err)
	}
	if err := s.AssignRole(ctx, "alice", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AssignRole(missing) error = %v, want ErrNotFound", err)
	}

	category := &models.Category{ID: auth.NewID(), Name: "General", RoleIDs: []string{role.ID}}
	if err := s.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	bad := &models.Category{ID: auth.NewID(), Name: "Broken", RoleIDs: []string{"missing"}}
	if err := s.CreateCategory(ctx, bad); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateCategory(missing role) error = %v, want ErrNotFound", err)
	}
	if exists, _ := s.CategoryExists(ctx, bad.ID); exists {
		t.Error("failed CreateCategory must not leave a category behind")
	}

	categories, err := s.ListCategories(ctx, []string{category.ID}, false)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 1 || len(categories[0].RoleIDs) != 1 || categories[0].RoleIDs[0] != role.ID {
		t.Errorf("unexpected categories %+v", categories)
	}

	roles, err := s.ListRoles(ctx)
	if err != nil || len(roles) != 1 {
		t.Errorf("ListRoles() = %v, %v", roles, err)
	}
}

func TestDirectoryStore_EnsureAdmin(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := NewDirectoryStore(conn)

	for i := 0; i < 2; i++ {
		if err := s.EnsureAdmin(ctx, "root"); err != nil {
			t.Fatalf("EnsureAdmin() call %d error = %v", i+1, err)
		}
	}

	isAdmin, err := s.IsAdmin(ctx, "root")
	if err != nil || !isAdmin {
		t.Errorf("IsAdmin(root) = %v, %v", isAdmin, err)
	}
	if n := testutil.CountRows(t, conn, "role", "name = ?", DefaultAdminRole); n != 1 {
		t.Errorf("expected one DefaultAdmin role, got %d", n)
	}
}
