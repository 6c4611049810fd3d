package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/campushare/campushare/internal/db"
	"github.com/campushare/campushare/internal/lifecycle"
	"github.com/campushare/campushare/internal/model"
)

// testUser creates a user and returns it.
func testUser(t *testing.T, database *sql.DB, email, name, role string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, email, name, "", role, "")
	if err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return u
}

// testItem creates an item owned by ownerID and returns it.
func testItem(t *testing.T, database *sql.DB, ownerID, name, kind string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, NewItem{
		Name:      name,
		Category:  "Books",
		Condition: "Good",
		Kind:      kind,
		Contact:   "01700000000",
		OwnerID:   ownerID,
	})
	if err != nil {
		t.Fatalf("creating test item %s: %v", name, err)
	}
	return item
}

func actorFor(u *model.User) lifecycle.Actor {
	return lifecycle.Actor{ID: u.ID, Role: u.Role}
}

func TestUpsertIdentityUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, err := UpsertIdentityUser(ctx, database, "ayesha@ugrad.example.edu", "Ayesha", "https://example.com/a.png")
	if err != nil {
		t.Fatalf("UpsertIdentityUser: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", u.Role)
	}
	if u.Picture != "https://example.com/a.png" {
		t.Errorf("expected provider picture, got %q", u.Picture)
	}

	// Second login with a changed name updates the record, not duplicates it.
	again, err := UpsertIdentityUser(ctx, database, "ayesha@ugrad.example.edu", "Ayesha Rahman", "")
	if err != nil {
		t.Fatalf("second UpsertIdentityUser: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("expected same user id, got %q and %q", u.ID, again.ID)
	}
	if again.Name != "Ayesha Rahman" {
		t.Errorf("expected updated name, got %q", again.Name)
	}

	// An uploaded picture survives later logins.
	if err := SetUserPicture(ctx, database, u.ID, []byte("img"), "image/jpeg"); err != nil {
		t.Fatalf("SetUserPicture: %v", err)
	}
	third, _ := UpsertIdentityUser(ctx, database, "ayesha@ugrad.example.edu", "Ayesha Rahman", "https://example.com/new.png")
	if third.Picture != "/api/users/"+u.ID+"/picture" {
		t.Errorf("expected uploaded picture to win, got %q", third.Picture)
	}
}

func TestUpdateUserProfile(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u := testUser(t, database, "nadia@ugrad.example.edu", "Nadia", model.RoleUser)

	dept := "CSE"
	sem := "6"
	updated, err := UpdateUserProfile(ctx, database, u.ID, ProfileEdit{Department: &dept, Semester: &sem})
	if err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	if updated.Department != "CSE" || updated.Semester != "6" {
		t.Errorf("profile fields not applied: %+v", updated)
	}
	if updated.Name != "Nadia" {
		t.Errorf("untouched field changed, got name %q", updated.Name)
	}

	// Nil fields leave earlier values alone.
	name := "Nadia K"
	updated, err = UpdateUserProfile(ctx, database, u.ID, ProfileEdit{Name: &name})
	if err != nil {
		t.Fatalf("second UpdateUserProfile: %v", err)
	}
	if updated.Name != "Nadia K" || updated.Department != "CSE" {
		t.Errorf("partial update wrong: %+v", updated)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	testUser(t, database, "dup@ugrad.example.edu", "First", model.RoleUser)
	if _, err := CreateUser(ctx, database, "dup@ugrad.example.edu", "Second", "", model.RoleUser, ""); err == nil {
		t.Error("expected unique constraint error for duplicate email")
	}
}

func TestListUsersSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	testUser(t, database, "karim@ugrad.example.edu", "Karim Uddin", model.RoleUser)
	testUser(t, database, "rahim@ugrad.example.edu", "Rahim Uddin", model.RoleUser)

	all, total, err := ListUsers(ctx, database, "", 50, 0)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("expected 2 users, got %d (total %d)", len(all), total)
	}

	found, total, _ := ListUsers(ctx, database, "karim", 50, 0)
	if total != 1 || len(found) != 1 || found[0].Name != "Karim Uddin" {
		t.Errorf("search 'karim': got %d users (total %d)", len(found), total)
	}
}
