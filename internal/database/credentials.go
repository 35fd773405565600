package database

import (
	"context"
	"time"
)

type StaffCredential struct {
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const getCredentialHash = `-- name: GetCredentialHash :one
SELECT password_hash FROM staff_credentials
WHERE role = $1
`

func (q *Queries) GetCredentialHash(ctx context.Context, role string) (string, error) {
	row := q.db.QueryRow(ctx, getCredentialHash, role)
	var password_hash string
	err := row.Scan(&password_hash)
	return password_hash, err
}

const upsertCredential = `-- name: UpsertCredential :one
INSERT INTO staff_credentials (role, password_hash, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (role) DO UPDATE
SET password_hash = EXCLUDED.password_hash, updated_at = now()
RETURNING role, password_hash, updated_at
`

type UpsertCredentialParams struct {
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash"`
}

func (q *Queries) UpsertCredential(ctx context.Context, arg UpsertCredentialParams) (StaffCredential, error) {
	row := q.db.QueryRow(ctx, upsertCredential, arg.Role, arg.PasswordHash)
	var i StaffCredential
	err := row.Scan(&i.Role, &i.PasswordHash, &i.UpdatedAt)
	return i, err
}

const listCredentialRoles = `-- name: ListCredentialRoles :many
SELECT role FROM staff_credentials
ORDER BY role
`

func (q *Queries) ListCredentialRoles(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listCredentialRoles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		items = append(items, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
