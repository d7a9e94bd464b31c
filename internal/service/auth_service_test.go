package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ventilation_dashboard/internal/models"
)

func TestAuthService_SignUp(t *testing.T) {
	repo := &fakeUsersRepo{createID: 7}
	n := newFakeNotifier()
	svc := NewAuthService(repo, n, testLogger(), "test-key")

	id, err := svc.SignUp(context.Background(), SignUpParams{
		Username:  "ana",
		Email:     "ana@example.com",
		FirstName: "Ana",
		Password:  "s3cret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}

	if repo.lastCreated.PasswordHash == "s3cret" || repo.lastCreated.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.lastCreated.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	select {
	case to := <-n.welcomes:
		if to != "ana@example.com" {
			t.Fatalf("welcome mail sent to %q", to)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for welcome mail")
	}
}

func TestAuthService_SignUpWithoutEmailSkipsWelcome(t *testing.T) {
	repo := &fakeUsersRepo{createID: 1}
	n := newFakeNotifier()
	svc := NewAuthService(repo, n, testLogger(), "test-key")

	if _, err := svc.SignUp(context.Background(), SignUpParams{Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case to := <-n.welcomes:
		t.Fatalf("unexpected welcome mail to %q", to)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAuthService_SignUpRejectsEmptyPassword(t *testing.T) {
	svc := NewAuthService(&fakeUsersRepo{}, newFakeNotifier(), testLogger(), "test-key")

	if _, err := svc.SignUp(context.Background(), SignUpParams{Username: "bob", Password: "   "}); err == nil {
		t.Fatal("expected error for blank password")
	}
}

func TestAuthService_GenerateAndParseToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &fakeUsersRepo{getUser: &models.User{ID: 42, Username: "ana", PasswordHash: string(hash)}}
	svc := NewAuthService(repo, newFakeNotifier(), testLogger(), "test-key")

	token, err := svc.GenerateToken(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestAuthService_GenerateTokenErrors(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)

	t.Run("unknown user", func(t *testing.T) {
		svc := NewAuthService(&fakeUsersRepo{}, newFakeNotifier(), testLogger(), "test-key")
		if _, err := svc.GenerateToken(context.Background(), "nope", "pw"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &fakeUsersRepo{getUser: &models.User{ID: 1, PasswordHash: string(hash)}}
		svc := NewAuthService(repo, newFakeNotifier(), testLogger(), "test-key")
		if _, err := svc.GenerateToken(context.Background(), "ana", "wrong"); !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("expected ErrInvalidPassword, got %v", err)
		}
	})
}

func TestAuthService_ParseTokenRejectsForeignKey(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	repo := &fakeUsersRepo{getUser: &models.User{ID: 1, PasswordHash: string(hash)}}

	issuer := NewAuthService(repo, newFakeNotifier(), testLogger(), "key-a")
	verifier := NewAuthService(repo, newFakeNotifier(), testLogger(), "key-b")

	token, err := issuer.GenerateToken(context.Background(), "ana", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}
