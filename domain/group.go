package domain

import (
	"fmt"
	"strings"
	"time"
)

// group is the state shared by the two product groupings, Category and
// Tag: a named set of product ids that can only be retired once empty.
type group struct {
	aggregate   string
	id          int64
	name        string
	description string
	products    idSet[ProductID]
	retired     bool
	createdOn   time.Time
	lastUpdated time.Time
}

func newGroup(aggregate, name, description string, products []ProductID) (group, error) {
	if err := firstError(
		guardNotEmpty("name", name),
		guardNotEmpty("description", description),
	); err != nil {
		return group{}, err
	}
	ts := now()
	return group{
		aggregate:   aggregate,
		name:        name,
		description: description,
		products:    newIDSet(products),
		createdOn:   ts,
		lastUpdated: ts,
	}, nil
}

func (g *group) Name() string { return g.name }
func (g *group) Description() string { return g.description }
func (g *group) Retired() bool { return g.retired }
func (g *group) CreatedOn() time.Time { return g.createdOn }
func (g *group) LastUpdated() time.Time { return g.lastUpdated }
func (g *group) Products() []ProductID { return g.products.sorted() }
func (g *group) HasProduct(id ProductID) bool { return g.products.has(id) }

// Rename replaces the name and description.
func (g *group) Rename(name, description string) error {
	if err := firstError(
		guardNotEmpty("name", name),
		guardNotEmpty("description", description),
	); err != nil {
		return err
	}
	g.name = name
	g.description = description
	g.touch()
	return nil
}

// AddProduct links a product. Adding a product already present is a no-op
// that leaves LastUpdated untouched.
func (g *group) AddProduct(id ProductID) error {
	if g.retired {
		return g.lifecycle("cannot add product to a retired " + g.aggregate)
	}
	if g.products.add(id) {
		g.touch()
	}
	return nil
}

// RemoveProduct unlinks a product. Removing an absent product is a no-op.
func (g *group) RemoveProduct(id ProductID) error {
	if g.retired {
		return g.lifecycle("cannot remove product from a retired " + g.aggregate)
	}
	if g.products.remove(id) {
		g.touch()
	}
	return nil
}

// Retire fails while any product is still assigned.
func (g *group) Retire() error {
	if g.retired {
		return g.lifecycle("the " + g.aggregate + " is already retired")
	}
	if len(g.products) > 0 {
		return g.lifecycle(fmt.Sprintf(
			"cannot retire %s whilst there are still products assigned: %s",
			g.aggregate, joinIDs(g.Products())))
	}
	g.retired = true
	g.touch()
	return nil
}

func (g *group) touch() { g.lastUpdated = now() }

func (g *group) lifecycle(reason string) error {
	return NewLifecycleError(g.aggregate, g.id, reason)
}

func joinIDs[T ~int64](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(int64(id))
	}
	return strings.Join(parts, ",")
}

type groupJSON struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Products    []ProductID `json:"products"`
	Retired     bool        `json:"retired"`
	CreatedOn   time.Time   `json:"createdOn"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

func (g *group) view() groupJSON {
	return groupJSON{g.id, g.name, g.description, g.Products(), g.retired, g.createdOn, g.lastUpdated}
}
