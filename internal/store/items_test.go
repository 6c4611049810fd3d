package store

import (
	"context"
	"testing"

	"github.com/campushare/campushare/internal/db"
	"github.com/campushare/campushare/internal/lifecycle"
	"github.com/campushare/campushare/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner@ugrad.example.edu", "Owner", model.RoleUser)
	item := testItem(t, database, owner.ID, "Calculus Textbook", model.KindDonate)

	if item.Status != model.StatusAvailable {
		t.Errorf("expected new item to be AVAILABLE, got %q", item.Status)
	}
	if item.OwnerName != "Owner" {
		t.Errorf("expected joined owner name, got %q", item.OwnerName)
	}

	missing, err := GetItem(ctx, database, "nope")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown item id")
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner@ugrad.example.edu", "Owner", model.RoleUser)
	CreateItem(ctx, database, NewItem{Name: "Physics Notes", Category: "Books", Condition: "Good", Kind: model.KindDonate, Contact: "x", OwnerID: owner.ID})
	CreateItem(ctx, database, NewItem{Name: "Scientific Calculator", Category: "Electronics", Condition: "Fair", Kind: model.KindLend, Contact: "x", OwnerID: owner.ID})
	CreateItem(ctx, database, NewItem{Name: "Lab Coat", Category: "Clothing", Condition: "New", Kind: model.KindLend, Description: "size M", Contact: "x", OwnerID: owner.ID})

	all, total, err := ListItems(ctx, database, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 items, got %d (total %d)", len(all), total)
	}

	lend, total, _ := ListItems(ctx, database, ItemFilter{Kind: model.KindLend})
	if total != 2 || len(lend) != 2 {
		t.Errorf("kind filter: expected 2, got %d (total %d)", len(lend), total)
	}

	books, _, _ := ListItems(ctx, database, ItemFilter{Category: "Books"})
	if len(books) != 1 || books[0].Name != "Physics Notes" {
		t.Errorf("category filter: got %v", books)
	}

	search, _, _ := ListItems(ctx, database, ItemFilter{Query: "calculator"})
	if len(search) != 1 || search[0].Name != "Scientific Calculator" {
		t.Errorf("free-text search: got %v", search)
	}

	// Description matches too.
	search, _, _ = ListItems(ctx, database, ItemFilter{Query: "size m"})
	if len(search) != 1 || search[0].Name != "Lab Coat" {
		t.Errorf("description search: got %v", search)
	}

	page, total, _ := ListItems(ctx, database, ItemFilter{Limit: 2, Offset: 2})
	if total != 3 || len(page) != 1 {
		t.Errorf("paging: expected 1 item on second page of 2, got %d (total %d)", len(page), total)
	}
}

func TestUpdateItemFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner@ugrad.example.edu", "Owner", model.RoleUser)
	other := testUser(t, database, "other@ugrad.example.edu", "Other", model.RoleUser)
	item := testItem(t, database, owner.ID, "Old Name", model.KindDonate)

	name := "New Name"
	updated, err := UpdateItemFields(ctx, database, item.ID, actorFor(owner), ItemEdit{Name: &name})
	if err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}
	if updated.Name != "New Name" || updated.Category != "Books" {
		t.Errorf("partial edit: got name %q category %q", updated.Name, updated.Category)
	}

	if _, err := UpdateItemFields(ctx, database, item.ID, actorFor(other), ItemEdit{Name: &name}); lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Errorf("non-owner edit: got %v, want forbidden", err)
	}

	// Claim the item via an approved request, then editing must fail.
	req, _ := CreateRequest(ctx, database, item.ID, other.ID, "")
	if _, err := ApproveRequest(ctx, database, req.ID, actorFor(owner)); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	if _, err := UpdateItemFields(ctx, database, item.ID, actorFor(owner), ItemEdit{Name: &name}); lifecycle.KindOf(err) != lifecycle.KindInvalidState {
		t.Errorf("edit of claimed item: got %v, want invalid_state", err)
	}
}

func TestAdvanceItemStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner@ugrad.example.edu", "Owner", model.RoleUser)
	borrower := testUser(t, database, "borrower@ugrad.example.edu", "Borrower", model.RoleUser)
	item := testItem(t, database, owner.ID, "Bicycle", model.KindLend)

	req, _ := CreateRequest(ctx, database, item.ID, borrower.ID, "weekend trip")
	if _, err := ApproveRequest(ctx, database, req.ID, actorFor(owner)); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	// CLAIMED → IN_USE → RETURNED, owner-driven.
	if _, err := AdvanceItemStatus(ctx, database, item.ID, actorFor(owner), model.StatusInUse); err != nil {
		t.Fatalf("advance to IN_USE: %v", err)
	}
	// Backward move refused.
	if _, err := AdvanceItemStatus(ctx, database, item.ID, actorFor(owner), model.StatusClaimed); lifecycle.KindOf(err) != lifecycle.KindInvalidState {
		t.Errorf("backward move: got %v, want invalid_state", err)
	}
	got, err := AdvanceItemStatus(ctx, database, item.ID, actorFor(owner), model.StatusReturned)
	if err != nil {
		t.Fatalf("advance to RETURNED: %v", err)
	}
	if got.Status != model.StatusReturned {
		t.Errorf("expected RETURNED, got %q", got.Status)
	}
	// RETURNED is terminal; no cycling back to AVAILABLE.
	if _, err := AdvanceItemStatus(ctx, database, item.ID, actorFor(owner), model.StatusAvailable); lifecycle.KindOf(err) != lifecycle.KindInvalidState {
		t.Errorf("re-listing returned item: got %v, want invalid_state", err)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner@ugrad.example.edu", "Owner", model.RoleUser)
	other := testUser(t, database, "other@ugrad.example.edu", "Other", model.RoleUser)
	admin := testUser(t, database, "admin@ugrad.example.edu", "Admin", model.RoleAdmin)

	item := testItem(t, database, owner.ID, "Notebook", model.KindDonate)
	req, _ := CreateRequest(ctx, database, item.ID, other.ID, "")

	// Deleting an AVAILABLE item removes its requests with it.
	if err := DeleteItem(ctx, database, item.ID, actorFor(owner)); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if got, _ := GetRequest(ctx, database, req.ID); got != nil {
		t.Error("expected cascade delete of requests")
	}

	// A claimed item cannot be deleted, not even by an admin.
	item2 := testItem(t, database, owner.ID, "Desk Lamp", model.KindDonate)
	req2, _ := CreateRequest(ctx, database, item2.ID, other.ID, "")
	ApproveRequest(ctx, database, req2.ID, actorFor(owner))
	if err := DeleteItem(ctx, database, item2.ID, actorFor(owner)); lifecycle.KindOf(err) != lifecycle.KindInvalidState {
		t.Errorf("delete of claimed item: got %v, want invalid_state", err)
	}
	if err := DeleteItem(ctx, database, item2.ID, actorFor(admin)); lifecycle.KindOf(err) != lifecycle.KindInvalidState {
		t.Errorf("admin delete of claimed item: got %v, want invalid_state", err)
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner@ugrad.example.edu", "Owner", model.RoleUser)
	other := testUser(t, database, "other@ugrad.example.edu", "Other", model.RoleUser)
	item := testItem(t, database, owner.ID, "Poster", model.KindDonate)

	if err := SetItemImage(ctx, database, item.ID, actorFor(other), []byte("img"), "image/jpeg"); lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Errorf("non-owner image upload: got %v, want forbidden", err)
	}
	if err := SetItemImage(ctx, database, item.ID, actorFor(owner), []byte("img"), "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "img" || mime != "image/jpeg" {
		t.Errorf("got %q %q", data, mime)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.ImageURL == "" {
		t.Error("expected image URL on item after upload")
	}
}
