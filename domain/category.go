package domain

import "encoding/json"

// Category groups products for the menu. It holds product ids only.
type Category struct {
	group
}

// NewCategory constructs an unpersisted category with an initial product set.
func NewCategory(name, description string, products []ProductID) (*Category, error) {
	g, err := newGroup(AggregateCategory, name, description, products)
	if err != nil {
		return nil, err
	}
	return &Category{group: g}, nil
}

func (c *Category) ID() CategoryID { return CategoryID(c.id) }

// AssignID sets the identity of a newly persisted category.
func (c *Category) AssignID(id CategoryID) error {
	return assignID(AggregateCategory, &c.id, int64(id))
}

// MarshalJSON renders the category's public state.
func (c *Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.view())
}
