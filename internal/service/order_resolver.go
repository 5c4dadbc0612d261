package service

import (
	"context"
	"errors"
	"fmt"

	"fsanano/catalog/internal/model"
	"fsanano/catalog/internal/repository"
)

type ItemReader interface {
	GetItem(ctx context.Context, id int) (model.Item, error)
}

// OrderResolver joins orders with the items they reference.
type OrderResolver struct {
	items ItemReader
}

func NewOrderResolver(items ItemReader) *OrderResolver {
	return &OrderResolver{items: items}
}

// Resolve returns one line per order, in the order given. An order whose item is
// missing fails the whole resolution with a *DataIntegrityError.
func (r *OrderResolver) Resolve(ctx context.Context, orders []model.Order) ([]model.ResolvedOrderLine, error) {
	lines := make([]model.ResolvedOrderLine, 0, len(orders))
	seen := make(map[int]model.Item)

	for _, o := range orders {
		it, ok := seen[o.ItemID]
		if !ok {
			var err error
			it, err = r.items.GetItem(ctx, o.ItemID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, &DataIntegrityError{OrderID: o.ID, ItemID: o.ItemID}
				}
				return nil, fmt.Errorf("failed to resolve order %d: %w", o.ID, err)
			}
			seen[o.ItemID] = it
		}

		lines = append(lines, model.ResolvedOrderLine{
			Item:     it.Name,
			Price:    it.Price,
			Quantity: o.Quantity,
		})
	}

	return lines, nil
}
