package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestEmailDispatchError_Matching(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := fmt.Errorf("create account: %w", &EmailDispatchError{Phase: PhaseWelcomeEmail, AccountID: 7, Err: cause})

	if !errors.Is(err, ErrEmailDispatchFailed) {
		t.Fatalf("expected ErrEmailDispatchFailed match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if errors.Is(err, ErrPersistence) {
		t.Fatalf("dispatch error must not match ErrPersistence")
	}

	var de *EmailDispatchError
	if !errors.As(err, &de) || de.AccountID != 7 || de.Phase != PhaseWelcomeEmail {
		t.Fatalf("unexpected dispatch error: %+v", de)
	}
}

func TestPersistenceError_Matching(t *testing.T) {
	err := &PersistenceError{Op: "create_account", Err: errors.New("boom")}
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence match")
	}
	if errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("persistence error must not match ErrDuplicateEmail")
	}
	if err.Error() != "create_account: persistence failure" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestAccountChanges_Apply(t *testing.T) {
	name := "Renamed"
	active := false
	a := &Account{Name: "Old", Email: "old@example.com", Role: RoleUser, Active: true}

	changes := AccountChanges{Name: &name, Active: &active}
	if changes.IsEmpty() {
		t.Fatalf("changes should not be empty")
	}
	changes.Apply(a)

	if a.Name != "Renamed" || a.Active || a.Email != "old@example.com" || a.Role != RoleUser {
		t.Fatalf("unexpected account after apply: %+v", a)
	}
	if !(AccountChanges{}).IsEmpty() {
		t.Fatalf("zero changes should be empty")
	}
}
