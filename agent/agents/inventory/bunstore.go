package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

type BunStoreConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// BunStore persists items in PostgreSQL through bun. Single-statement
// mutations are atomic; partial updates run in a transaction holding a
// FOR UPDATE row lock, which serializes mutations per id.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewBunStore(cfg BunStoreConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("inventory store dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &BunStore{db: db, now: time.Now}, nil
}

// Init creates the items table if it does not exist and verifies
// connectivity.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Item)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: init inventory schema: %v", contractx.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) Create(ctx context.Context, name string, quantity int, category string) (*Item, error) {
	now := s.now().UTC()
	item := &Item{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  quantity,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return nil, storeError("create item", err, item.ID)
	}
	return item, nil
}

func (s *BunStore) Get(ctx context.Context, id string) (*Item, error) {
	item := new(Item)
	if err := s.db.NewSelect().
		Model(item).
		Where("it.id = ?", id).
		Scan(ctx); err != nil {
		return nil, storeError("read item", err, id)
	}
	return item, nil
}

func (s *BunStore) List(ctx context.Context, f Filter) ([]*Item, error) {
	var items []*Item
	q := s.db.NewSelect().Model(&items)

	if f.NameContains != "" {
		q = q.Where("it.name ILIKE ?", "%"+f.NameContains+"%")
	}
	if f.Category != "" {
		q = q.Where("lower(it.category) = lower(?)", f.Category)
	}
	if f.MinQuantity != nil {
		q = q.Where("it.quantity >= ?", *f.MinQuantity)
	}
	if f.MaxQuantity != nil {
		q = q.Where("it.quantity <= ?", *f.MaxQuantity)
	}

	if err := q.Order("it.name ASC").Order("it.id ASC").Scan(ctx); err != nil {
		return nil, storeError("list items", err, "")
	}
	return items, nil
}

func (s *BunStore) Update(ctx context.Context, id string, p Patch) (*Item, error) {
	item := new(Item)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(item).
			Where("it.id = ?", id).
			For("UPDATE").
			Scan(ctx); err != nil {
			return err
		}

		applyPatch(item, p, s.now().UTC())

		_, err := tx.NewUpdate().Model(item).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, storeError("update item", err, id)
	}
	return item, nil
}

func (s *BunStore) Delete(ctx context.Context, id string) (*Item, error) {
	item := new(Item)
	if _, err := s.db.NewDelete().
		Model((*Item)(nil)).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx, item); err != nil {
		return nil, storeError("delete item", err, id)
	}
	return item, nil
}

// storeError keeps the router-facing taxonomy: a missing row is a
// not-found rejection, everything else means the backend is unreachable
// or refused the statement.
func storeError(op string, err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id=%s", contractx.ErrNotFound, id)
	}
	return fmt.Errorf("%w: %s: %v", contractx.ErrStoreUnavailable, op, err)
}
