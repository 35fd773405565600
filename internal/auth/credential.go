package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by credential verification.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoCredential       = errors.New("no credential configured for role")
)

// CredentialVerifier checks a supplied credential for a role.
// It returns ErrInvalidCredentials on mismatch.
type CredentialVerifier interface {
	Verify(ctx context.Context, role Role, credential string) error
}

// HashVerifier verifies against bcrypt hashes held in memory.
type HashVerifier struct {
	hashes map[Role][]byte
}

// NewHashVerifier builds a verifier from bcrypt hashes keyed by role.
// Roles with an empty hash are left unconfigured.
func NewHashVerifier(hashes map[Role]string) (*HashVerifier, error) {
	v := &HashVerifier{hashes: make(map[Role][]byte, len(hashes))}
	for role, h := range hashes {
		if h == "" {
			continue
		}
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return nil, fmt.Errorf("%s hash: %w", role, err)
		}
		v.hashes[role] = []byte(h)
	}
	return v, nil
}

func (v *HashVerifier) Verify(_ context.Context, role Role, credential string) error {
	h, ok := v.hashes[role]
	if !ok {
		return ErrNoCredential
	}
	return compare(h, credential)
}

// CredentialStore looks up the stored bcrypt hash for a role.
// Satisfied by *database.Queries.
type CredentialStore interface {
	GetCredentialHash(ctx context.Context, role string) (string, error)
}

// StoreVerifier verifies against hashes fetched from a CredentialStore on
// every call, so rotated credentials apply without a restart.
type StoreVerifier struct {
	store CredentialStore
}

func NewStoreVerifier(store CredentialStore) *StoreVerifier {
	return &StoreVerifier{store: store}
}

func (v *StoreVerifier) Verify(ctx context.Context, role Role, credential string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	h, err := v.store.GetCredentialHash(ctx, role.String())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoCredential
		}
		return fmt.Errorf("get credential hash: %w", err)
	}
	if h == "" {
		return ErrNoCredential
	}
	return compare([]byte(h), credential)
}

// HashCredential returns a bcrypt hash suitable for NewHashVerifier or the
// credential store.
func HashCredential(credential string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func compare(hash []byte, credential string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(credential)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("compare credential: %w", err)
	}
	return nil
}
