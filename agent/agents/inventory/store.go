// Package inventory implements the inventory agent and its backing
// store. The store exclusively owns persisted item state; the agent
// validates every operation before touching it and holds no cache
// across calls.
package inventory

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Item is the managed inventory entity. The store assigns the id on
// create; quantity is never negative.
type Item struct {
	bun.BaseModel `bun:"table:inventory_items,alias:it" json:"-"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Quantity  int       `bun:"quantity,notnull" json:"quantity"`
	Category  string    `bun:"category" json:"category,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Patch is a partial field set for update. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Quantity *int
	Category *string
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Category == nil
}

// Filter selects items on list reads. Zero values mean "no constraint".
type Filter struct {
	NameContains string
	Category     string
	MinQuantity  *int
	MaxQuantity  *int
}

func (f Filter) Empty() bool {
	return f.NameContains == "" && f.Category == "" && f.MinQuantity == nil && f.MaxQuantity == nil
}

// Store is the persistence contract beneath the inventory agent. Each
// call is its own atomic unit of work; implementations serialize
// mutations per item id so no partial field update is ever visible.
type Store interface {
	Create(ctx context.Context, name string, quantity int, category string) (*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, f Filter) ([]*Item, error)
	Update(ctx context.Context, id string, p Patch) (*Item, error)
	// Delete removes the item and returns it for confirmation messages.
	Delete(ctx context.Context, id string) (*Item, error)
}

func applyPatch(item *Item, p Patch, now time.Time) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	item.UpdatedAt = now
}
