package model

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Item struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Order struct {
	ID       int `json:"id"`
	UserID   int `json:"user_id"`
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// ResolvedOrderLine is an order joined with the name and price of its item.
type ResolvedOrderLine struct {
	Item     string  `json:"item"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type UserWithOrders struct {
	ID     int                 `json:"id"`
	Name   string              `json:"name"`
	Email  string              `json:"email"`
	Orders []ResolvedOrderLine `json:"orders"`
}
