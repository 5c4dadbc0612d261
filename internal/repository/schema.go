package repository

import (
	"context"
	"fmt"
)

// orders.item_id carries no foreign key: items may be deleted while still
// referenced, and the dangling reference is reported when orders are read.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id    INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name  VARCHAR(50) NOT NULL,
		email VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id    INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name  VARCHAR(50) NOT NULL,
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id       INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id  INTEGER NOT NULL REFERENCES users (id),
		item_id  INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`,
}

// EnsureSchema creates the users, items and orders tables if they are absent.
func (r *ShopRepository) EnsureSchema(ctx context.Context) error {
	return r.RunAtomic(ctx, func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := r.getExecutor(ctx).Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
