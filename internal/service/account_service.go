package service

import (
	"context"
	"errors"

	"fsanano/catalog/internal/model"
	"fsanano/catalog/internal/repository"
)

type AccountStore interface {
	ItemReader
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
	GetUser(ctx context.Context, id int) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, name, email string) (model.User, error)
	GetItemForShare(ctx context.Context, id int) (model.Item, error)
	CreateOrder(ctx context.Context, userID, itemID, quantity int) (model.Order, error)
	ListOrdersForUser(ctx context.Context, userID int) ([]model.Order, error)
}

// AccountService serves users together with their resolved order history.
type AccountService struct {
	store    AccountStore
	resolver *OrderResolver
}

func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store, resolver: NewOrderResolver(store)}
}

func (s *AccountService) ListUsers(ctx context.Context) ([]model.UserWithOrders, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]model.UserWithOrders, 0, len(users))
	for _, u := range users {
		full, err := s.withOrders(ctx, u)
		if err != nil {
			return nil, err
		}
		results = append(results, full)
	}
	return results, nil
}

func (s *AccountService) GetUser(ctx context.Context, id int) (model.UserWithOrders, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserWithOrders{}, ErrUserNotFound
		}
		return model.UserWithOrders{}, err
	}
	return s.withOrders(ctx, u)
}

func (s *AccountService) withOrders(ctx context.Context, u model.User) (model.UserWithOrders, error) {
	orders, err := s.store.ListOrdersForUser(ctx, u.ID)
	if err != nil {
		return model.UserWithOrders{}, err
	}
	lines, err := s.resolver.Resolve(ctx, orders)
	if err != nil {
		return model.UserWithOrders{}, err
	}
	return model.UserWithOrders{ID: u.ID, Name: u.Name, Email: u.Email, Orders: lines}, nil
}

func (s *AccountService) CreateUser(ctx context.Context, name, email string) (int, error) {
	if isFalsyString(name) || isFalsyString(email) || tooLong(name) || tooLong(email) {
		return 0, ErrInvalidInput
	}

	var created model.User
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.store.CreateUser(ctx, name, email)
		return err
	})
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// CreateOrder records quantity units of itemID for userID. Both must exist; a
// missing user is reported before malformed item or quantity values.
func (s *AccountService) CreateOrder(ctx context.Context, userID, itemID, quantity int) (model.Order, error) {
	var created model.Order
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		if _, err := s.store.GetUser(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if isFalsyNumber(itemID) || isFalsyNumber(quantity) || quantity < 0 {
			return ErrInvalidInput
		}

		if _, err := s.store.GetItemForShare(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		var err error
		created, err = s.store.CreateOrder(ctx, userID, itemID, quantity)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	return created, nil
}
