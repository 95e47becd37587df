package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/model"
)

// createTestProduct inserts a product owned by userID and fails the test on
// error.
func createTestProduct(t *testing.T, db *DB, userID, title string) *model.Product {
	t.Helper()
	product := &model.Product{
		Title:       title,
		Description: "a product used in tests",
		Price:       "49.99",
		BannerImage: "/uploads/1756000000000.png",
		UserID:      userID,
	}
	if err := db.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestProductCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	product := &model.Product{
		Title:  "Mechanical Keyboard",
		Price:  "120.00",
		UserID: owner.ID,
	}

	if err := db.Create(context.Background(), product); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if product.ID == "" {
		t.Error("Create() did not set product.ID")
	}
	if product.CreatedAt.IsZero() {
		t.Error("Create() did not set product.CreatedAt")
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListByUser_InsertionOrder(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	first := createTestProduct(t, db, owner.ID, "first")
	second := createTestProduct(t, db, owner.ID, "second")
	third := createTestProduct(t, db, owner.ID, "third")

	products, err := db.ListByUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("ListByUser() returned %d products, want 3", len(products))
	}

	wantOrder := []string{first.ID, second.ID, third.ID}
	for i, want := range wantOrder {
		if products[i].ID != want {
			t.Errorf("products[%d].ID = %q, want %q", i, products[i].ID, want)
		}
	}
}

func TestListByUser_EmptyForNewUser(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "empty@example.com")

	products, err := db.ListByUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(products) != 0 {
		t.Errorf("ListByUser() returned %d products for a new user, want 0", len(products))
	}
	if products == nil {
		t.Error("ListByUser() returned nil, want empty slice")
	}
}

func TestListByUser_OnlyOwnProducts(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestProduct(t, db, alice.ID, "alice product")
	createTestProduct(t, db, bob.ID, "bob product")

	products, err := db.ListByUser(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("ListByUser() returned %d products, want 1", len(products))
	}
	if products[0].Title != "alice product" {
		t.Errorf("Title = %q, want %q", products[0].Title, "alice product")
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestProductGetByID(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	created := createTestProduct(t, db, owner.ID, "lookup me")

	found, err := db.GetByID(context.Background(), created.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "lookup me" {
		t.Errorf("Title = %q, want %q", found.Title, "lookup me")
	}
	if found.Price != "49.99" {
		t.Errorf("Price = %q, want %q", found.Price, "49.99")
	}
}

// Someone else's product must look exactly like a missing one.
func TestProductGetByID_WrongOwner(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	product := createTestProduct(t, db, alice.ID, "alice only")

	_, err := db.GetByID(context.Background(), product.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() with wrong owner error = %v, want ErrNotFound", err)
	}
}

func TestProductGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	_, err := db.GetByID(context.Background(), "nonexistent-id", owner.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestProductUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	product := createTestProduct(t, db, owner.ID, "before")

	product.Title = "after"
	product.Price = "99.00"
	if err := db.Update(context.Background(), product); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), product.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetByID() after update: %v", err)
	}
	if found.Title != "after" {
		t.Errorf("Title = %q, want %q", found.Title, "after")
	}
	if found.Price != "99.00" {
		t.Errorf("Price = %q, want %q", found.Price, "99.00")
	}
}

func TestProductUpdate_WrongOwner(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	product := createTestProduct(t, db, alice.ID, "alice product")

	hijack := *product
	hijack.UserID = bob.ID
	hijack.Title = "stolen"

	err := db.Update(context.Background(), &hijack)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() with wrong owner error = %v, want ErrNotFound", err)
	}

	// Row untouched.
	found, err := db.GetByID(context.Background(), product.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetByID(): %v", err)
	}
	if found.Title != "alice product" {
		t.Errorf("Title = %q after failed hijack, want %q", found.Title, "alice product")
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestProductDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	product := createTestProduct(t, db, owner.ID, "doomed")

	if err := db.Delete(context.Background(), product.ID, owner.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), product.ID, owner.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestProductDelete_WrongOwner(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	product := createTestProduct(t, db, alice.ID, "alice product")

	err := db.Delete(context.Background(), product.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() with wrong owner error = %v, want ErrNotFound", err)
	}

	// Still present for the real owner.
	if _, err := db.GetByID(context.Background(), product.ID, alice.ID); err != nil {
		t.Errorf("product disappeared after someone else's delete attempt: %v", err)
	}
}

func TestProductDelete_NotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	err := db.Delete(context.Background(), "nonexistent-id", owner.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
