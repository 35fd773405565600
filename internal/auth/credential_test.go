package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type mockCredentialStore struct {
	getCredentialHashFn func(ctx context.Context, role string) (string, error)
}

func (m *mockCredentialStore) GetCredentialHash(ctx context.Context, role string) (string, error) {
	return m.getCredentialHashFn(ctx, role)
}

func mustHash(t *testing.T, credential string) string {
	t.Helper()
	h, err := HashCredential(credential)
	if err != nil {
		t.Fatalf("hash credential: %v", err)
	}
	return h
}

func TestHashVerifier(t *testing.T) {
	v, err := NewHashVerifier(map[Role]string{
		RoleManager:  mustHash(t, "manager-secret"),
		RoleEmployee: "",
	})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	ctx := context.Background()

	if err := v.Verify(ctx, RoleManager, "manager-secret"); err != nil {
		t.Errorf("correct credential: %v", err)
	}
	if err := v.Verify(ctx, RoleManager, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong credential: got %v, want ErrInvalidCredentials", err)
	}
	if err := v.Verify(ctx, RoleEmployee, "anything"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("unconfigured role: got %v, want ErrNoCredential", err)
	}
}

func TestNewHashVerifierRejectsGarbageHash(t *testing.T) {
	if _, err := NewHashVerifier(map[Role]string{RoleManager: "plaintext"}); err == nil {
		t.Fatal("expected error for non-bcrypt hash")
	}
}

func TestStoreVerifier(t *testing.T) {
	hash := mustHash(t, "1234")
	var askedRole string
	store := &mockCredentialStore{
		getCredentialHashFn: func(ctx context.Context, role string) (string, error) {
			askedRole = role
			if role == "MANAGER" {
				return hash, nil
			}
			return "", pgx.ErrNoRows
		},
	}
	v := NewStoreVerifier(store)
	ctx := context.Background()

	if err := v.Verify(ctx, RoleManager, "1234"); err != nil {
		t.Errorf("correct credential: %v", err)
	}
	if askedRole != "MANAGER" {
		t.Errorf("store asked for role %q", askedRole)
	}
	if err := v.Verify(ctx, RoleManager, "4321"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong credential: got %v", err)
	}
	if err := v.Verify(ctx, RoleEmployee, "1234"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("missing row: got %v, want ErrNoCredential", err)
	}
}

func TestStoreVerifierPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	v := NewStoreVerifier(&mockCredentialStore{
		getCredentialHashFn: func(ctx context.Context, role string) (string, error) {
			return "", boom
		},
	})
	if err := v.Verify(context.Background(), RoleManager, "x"); !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped store error", err)
	}
}
