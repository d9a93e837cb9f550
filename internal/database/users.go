package database

import (
	"context"

	"github.com/google/uuid"
)

const getUserByEmail = `
SELECT id, store_id, email, hashed_password, full_name, role, created_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.StoreID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, store_id, email, hashed_password, full_name, role, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.StoreID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.CreatedAt)
	return u, err
}
