package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

// CapabilityID is the registry id of the inventory agent.
const CapabilityID = "inventory"

// Agent answers item management requests against a durable Store. Every
// mutation is validated before the store is touched, so a rejected
// request never changes stored state.
type Agent struct {
	store Store
}

func New(store Store) (*Agent, error) {
	if store == nil {
		return nil, errors.New("inventory agent requires a store")
	}
	return &Agent{store: store}, nil
}

func (a *Agent) Describe() contractx.Descriptor {
	return contractx.Descriptor{
		ID: CapabilityID,
		Keywords: []string{
			"inventory", "item", "stock", "add", "create",
			"update", "delete", "remove", "quantity",
		},
		Description: "Manages inventory items: create, read, list, update and delete with quantities and categories.",
	}
}

func (a *Agent) Handle(ctx context.Context, subQuery string, call contractx.CallContext) contractx.Response {
	cmd, err := parseCommand(subQuery)
	if err != nil {
		return rejection(err)
	}

	log.Debug().
		Str("session_id", call.SessionID).
		Str("op", string(cmd.op)).
		Msg("inventory command")

	switch cmd.op {
	case opCreate:
		return a.create(ctx, cmd)
	case opRead:
		return a.read(ctx, cmd)
	case opList:
		return a.list(ctx, cmd)
	case opUpdate:
		return a.update(ctx, cmd)
	case opDelete:
		return a.delete(ctx, cmd)
	}
	return contractx.Failure(fmt.Sprintf("unsupported inventory operation %q", cmd.op))
}

func (a *Agent) create(ctx context.Context, cmd command) contractx.Response {
	name := strings.TrimSpace(cmd.name)
	if name == "" {
		return contractx.Failure("item name must not be empty")
	}

	quantity := 1
	if cmd.quantity != nil {
		quantity = *cmd.quantity
	}
	if quantity < 0 {
		return contractx.Failure(fmt.Sprintf("quantity must not be negative, got %d", quantity))
	}

	item, err := a.store.Create(ctx, name, quantity, cmd.category)
	if err != nil {
		return storeRejection(err)
	}
	return contractx.Success(map[string]any{
		"action": "created",
		"item":   item,
	})
}

func (a *Agent) read(ctx context.Context, cmd command) contractx.Response {
	if cmd.id == "" {
		return contractx.Failure("item id is required")
	}

	item, err := a.store.Get(ctx, cmd.id)
	if err != nil {
		return storeRejection(err)
	}
	return contractx.Success(map[string]any{
		"action": "read",
		"item":   item,
	})
}

func (a *Agent) list(ctx context.Context, cmd command) contractx.Response {
	items, err := a.store.List(ctx, cmd.filter)
	if err != nil {
		return storeRejection(err)
	}

	payload := map[string]any{
		"action": "listed",
		"items":  items,
		"count":  len(items),
	}
	if len(items) == 0 {
		if cmd.filter.Empty() {
			payload["message"] = "inventory is empty"
		} else {
			payload["message"] = "no items matched"
		}
	}
	return contractx.Success(payload)
}

func (a *Agent) update(ctx context.Context, cmd command) contractx.Response {
	if cmd.id == "" {
		return contractx.Failure("item id is required")
	}

	patch := Patch{}
	if cmd.name != "" {
		name := cmd.name
		patch.Name = &name
	}
	if cmd.quantity != nil {
		if *cmd.quantity < 0 {
			return contractx.Failure(fmt.Sprintf("quantity must not be negative, got %d", *cmd.quantity))
		}
		patch.Quantity = cmd.quantity
	}
	if cmd.category != "" {
		category := cmd.category
		patch.Category = &category
	}
	if patch.Empty() {
		return contractx.Failure("update needs at least one field to change")
	}

	item, err := a.store.Update(ctx, cmd.id, patch)
	if err != nil {
		return storeRejection(err)
	}
	return contractx.Success(map[string]any{
		"action": "updated",
		"item":   item,
	})
}

func (a *Agent) delete(ctx context.Context, cmd command) contractx.Response {
	if cmd.id == "" {
		return contractx.Failure("item id is required")
	}

	item, err := a.store.Delete(ctx, cmd.id)
	if err != nil {
		return storeRejection(err)
	}
	return contractx.Success(map[string]any{
		"action":  "deleted",
		"message": fmt.Sprintf("deleted item %q", item.Name),
		"item":    item,
	})
}

func rejection(err error) contractx.Response {
	return contractx.Failure(err.Error())
}

// storeRejection turns store errors into caller-facing diagnostics
// without leaking driver detail for infrastructure failures.
func storeRejection(err error) contractx.Response {
	switch {
	case errors.Is(err, contractx.ErrNotFound):
		return contractx.Failure(err.Error())
	case errors.Is(err, contractx.ErrValidation):
		return contractx.Failure(err.Error())
	case errors.Is(err, contractx.ErrStoreUnavailable):
		log.Error().Err(err).Msg("inventory store failure")
		return contractx.Failure("inventory store unavailable")
	}
	log.Error().Err(err).Msg("inventory store failure")
	return contractx.Failure("inventory operation failed")
}
