package repository

import (
	"context"
	"errors"
	"fmt"

	"fsanano/catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row addressed by primary key does not exist.
var ErrNotFound = errors.New("record not found")

const foreignKeyViolation = "23503"

// DB is satisfied by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	PgxExecutor
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ShopRepository struct {
	db DB
}

func NewShopRepository(db DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// RunAtomic executes a function within a transaction
func (r *ShopRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has been committed.
	defer tx.Rollback(ctx)

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type txKey struct{}

func (r *ShopRepository) getExecutor(ctx context.Context) PgxExecutor {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.db
}

// PgxExecutor is an interface that matches both *pgx.Conn/Pool and pgx.Tx
type PgxExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *ShopRepository) GetUser(ctx context.Context, id int) (model.User, error) {
	u := model.User{}
	err := r.getExecutor(ctx).QueryRow(ctx, "SELECT id, name, email FROM users WHERE id = $1", id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *ShopRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, "SELECT id, name, email FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *ShopRepository) CreateUser(ctx context.Context, name, email string) (model.User, error) {
	u := model.User{Name: name, Email: email}
	err := r.getExecutor(ctx).QueryRow(ctx, "INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id", name, email).Scan(&u.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (r *ShopRepository) GetItem(ctx context.Context, id int) (model.Item, error) {
	return r.getItem(ctx, "SELECT id, name, price FROM items WHERE id = $1", id)
}

// GetItemForShare reads the item and, inside a transaction, holds a share lock on
// its row so it cannot be deleted before the transaction ends.
func (r *ShopRepository) GetItemForShare(ctx context.Context, id int) (model.Item, error) {
	return r.getItem(ctx, "SELECT id, name, price FROM items WHERE id = $1 FOR SHARE", id)
}

func (r *ShopRepository) getItem(ctx context.Context, query string, id int) (model.Item, error) {
	it := model.Item{}
	err := r.getExecutor(ctx).QueryRow(ctx, query, id).Scan(&it.ID, &it.Name, &it.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Item{}, ErrNotFound
		}
		return model.Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

func (r *ShopRepository) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, "SELECT id, name, price FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *ShopRepository) CreateItem(ctx context.Context, name string, price float64) (model.Item, error) {
	it := model.Item{Name: name, Price: price}
	err := r.getExecutor(ctx).QueryRow(ctx, "INSERT INTO items (name, price) VALUES ($1, $2) RETURNING id", name, price).Scan(&it.ID)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to create item: %w", err)
	}
	return it, nil
}

func (r *ShopRepository) UpdateItem(ctx context.Context, id int, name string, price float64) (model.Item, error) {
	tag, err := r.getExecutor(ctx).Exec(ctx, "UPDATE items SET name = $1, price = $2 WHERE id = $3", name, price, id)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Item{}, ErrNotFound
	}
	return model.Item{ID: id, Name: name, Price: price}, nil
}

func (r *ShopRepository) DeleteItem(ctx context.Context, id int) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOrder inserts a new order
func (r *ShopRepository) CreateOrder(ctx context.Context, userID, itemID, quantity int) (model.Order, error) {
	o := model.Order{UserID: userID, ItemID: itemID, Quantity: quantity}
	err := r.getExecutor(ctx).QueryRow(ctx, "INSERT INTO orders (user_id, item_id, quantity) VALUES ($1, $2, $3) RETURNING id", userID, itemID, quantity).Scan(&o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return model.Order{}, ErrNotFound
		}
		return model.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	return o, nil
}

func (r *ShopRepository) ListOrdersForUser(ctx context.Context, userID int) ([]model.Order, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, "SELECT id, user_id, item_id, quantity FROM orders WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ItemID, &o.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
