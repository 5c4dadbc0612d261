package seed

import (
	"context"
	"errors"
	"fmt"

	"fsanano/catalog/internal/model"

	"github.com/brianvoe/gofakeit/v7"
)

// maxFieldLen matches the VARCHAR(50) name and email columns.
const maxFieldLen = 50

type Store interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
	CreateUser(ctx context.Context, name, email string) (model.User, error)
	CreateItem(ctx context.Context, name string, price float64) (model.Item, error)
	CreateOrder(ctx context.Context, userID, itemID, quantity int) (model.Order, error)
}

type Options struct {
	Users     int
	Items     int
	MaxOrders int
	// Seed makes the generated data reproducible; zero picks a random seed.
	Seed uint64
}

type Result struct {
	Users  int
	Items  int
	Orders int
}

// Run creates opts.Items items and opts.Users users, each with between one and
// opts.MaxOrders orders, in a single transaction. Nothing is kept on failure.
func Run(ctx context.Context, store Store, opts Options) (Result, error) {
	if opts.Users < 0 || opts.Items < 0 || opts.MaxOrders < 0 {
		return Result{}, errors.New("seed counts must not be negative")
	}
	if opts.Users > 0 && opts.MaxOrders > 0 && opts.Items == 0 {
		return Result{}, errors.New("cannot seed orders without items")
	}

	faker := gofakeit.New(opts.Seed)

	var res Result
	err := store.RunAtomic(ctx, func(ctx context.Context) error {
		res = Result{}
		itemIDs := make([]int, 0, opts.Items)
		for i := 0; i < opts.Items; i++ {
			it, err := store.CreateItem(ctx, truncate(faker.ProductName()), faker.Price(1, 500))
			if err != nil {
				return fmt.Errorf("failed to seed item: %w", err)
			}
			itemIDs = append(itemIDs, it.ID)
			res.Items++
		}

		for i := 0; i < opts.Users; i++ {
			u, err := store.CreateUser(ctx, truncate(faker.Name()), truncate(faker.Email()))
			if err != nil {
				return fmt.Errorf("failed to seed user: %w", err)
			}
			res.Users++

			if opts.MaxOrders == 0 {
				continue
			}
			for n := faker.IntRange(1, opts.MaxOrders); n > 0; n-- {
				itemID := itemIDs[faker.IntRange(0, len(itemIDs)-1)]
				if _, err := store.CreateOrder(ctx, u.ID, itemID, faker.IntRange(1, 10)); err != nil {
					return fmt.Errorf("failed to seed order: %w", err)
				}
				res.Orders++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// truncate keeps at most maxFieldLen characters, cutting on a rune boundary.
func truncate(s string) string {
	n := 0
	for i := range s {
		if n == maxFieldLen {
			return s[:i]
		}
		n++
	}
	return s
}
