package domain

import "encoding/json"

// Tag labels products ("Vegan", "BOGOF"). Unlike a category a retired tag
// can be brought back.
type Tag struct {
	group
}

// NewTag constructs an unpersisted tag with an initial product set.
func NewTag(name, description string, products []ProductID) (*Tag, error) {
	g, err := newGroup(AggregateTag, name, description, products)
	if err != nil {
		return nil, err
	}
	return &Tag{group: g}, nil
}

func (t *Tag) ID() TagID { return TagID(t.id) }

// AssignID sets the identity of a newly persisted tag.
func (t *Tag) AssignID(id TagID) error {
	return assignID(AggregateTag, &t.id, int64(id))
}

// Unretire reverses Retire.
func (t *Tag) Unretire() error {
	if !t.retired {
		return t.lifecycle("the tag is not retired")
	}
	t.retired = false
	t.touch()
	return nil
}

// MarshalJSON renders the tag's public state.
func (t *Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.view())
}
