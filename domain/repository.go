package domain

import "context"

// Repository lookups signal absence with a nil aggregate and a nil error.
// Saves assign an identity to aggregates that do not have one yet.

// ProductRepository defines the storage interface for products
type ProductRepository interface {
	Get(ctx context.Context, id ProductID) (*Product, error)
	GetAll(ctx context.Context) ([]*Product, error)
	// GetMany returns the products that exist among ids; missing ids are skipped.
	GetMany(ctx context.Context, ids []ProductID) ([]*Product, error)
	GetByCategoryID(ctx context.Context, id CategoryID) ([]*Product, error)
	GetByTagID(ctx context.Context, id TagID) ([]*Product, error)
	AddOrUpdate(ctx context.Context, product *Product) error
}

// CategoryRepository defines the storage interface for categories
type CategoryRepository interface {
	Get(ctx context.Context, id CategoryID) (*Category, error)
	GetAll(ctx context.Context) ([]*Category, error)
	// GetByProductID returns the categories holding any of ids.
	GetByProductID(ctx context.Context, ids ...ProductID) ([]*Category, error)
	Save(ctx context.Context, category *Category) error
}

// TagRepository defines the storage interface for tags
type TagRepository interface {
	Get(ctx context.Context, id TagID) (*Tag, error)
	GetAll(ctx context.Context) ([]*Tag, error)
	GetByProductID(ctx context.Context, ids ...ProductID) ([]*Tag, error)
	Save(ctx context.Context, tag *Tag) error
}

// OrderRepository defines the storage interface for orders
type OrderRepository interface {
	Get(ctx context.Context, id OrderID) (*Order, error)
	GetAll(ctx context.Context) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
}

// PaymentRepository defines the storage interface for payments
type PaymentRepository interface {
	Get(ctx context.Context, id PaymentID) (*Payment, error)
	GetAll(ctx context.Context) ([]*Payment, error)
	Add(ctx context.Context, payment *Payment) error
}

// Store bundles the repositories of one backend.
type Store interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Tags() TagRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Close() error
}
