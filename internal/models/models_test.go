package models

import (
	"database/sql"
	"testing"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleBuyer, RoleSeller, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("Expected role %q to be valid", r)
		}
	}
	for _, r := range []Role{"", "superadmin", "Buyer"} {
		if r.Valid() {
			t.Errorf("Expected role %q to be invalid", r)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	valid := []OrderStatus{
		OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("Expected status %q to be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "returned", "Pending"} {
		if s.Valid() {
			t.Errorf("Expected status %q to be invalid", s)
		}
	}
}

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	if err := p.Set("s3cret-pass"); err != nil {
		t.Fatalf("Failed to set password: %v", err)
	}
	if p.Hash == "" || p.Hash == "s3cret-pass" {
		t.Fatal("Expected a bcrypt hash, not the plaintext")
	}

	match, err := p.Matches("s3cret-pass")
	if err != nil {
		t.Fatalf("Matches returned an error: %v", err)
	}
	if !match {
		t.Error("Expected the correct password to match")
	}

	match, err = p.Matches("wrong-pass")
	if err != nil {
		t.Fatalf("Matches returned an error for a mismatch: %v", err)
	}
	if match {
		t.Error("Expected the wrong password not to match")
	}
}

func TestProductFinalPrice(t *testing.T) {
	p := Product{Price: 100}
	if got := p.FinalPrice(); got != 100 {
		t.Errorf("Expected list price 100, got %v", got)
	}

	p.DiscountPrice = sql.NullFloat64{Float64: 80, Valid: true}
	if got := p.FinalPrice(); got != 80 {
		t.Errorf("Expected discount price 80, got %v", got)
	}
}
