package domain

import "errors"

var ErrSelfParent = errors.New("category cannot be its own parent")

// Category groups items. A category with a ParentID is a subcategory.
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
}

func NewCategory(name string, parentID *int64) (*Category, error) {
	c := &Category{ParentID: parentID}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Category) Rename(name string) error {
	item := Item{}
	if err := item.Rename(name); err != nil {
		return err
	}
	c.Name = item.Name
	return nil
}

// IsSubcategory reports whether the category hangs under a parent.
func (c *Category) IsSubcategory() bool {
	return c.ParentID != nil
}

func (c *Category) Validate() error {
	if c.ID != 0 && c.ParentID != nil && *c.ParentID == c.ID {
		return ErrSelfParent
	}
	return nil
}
