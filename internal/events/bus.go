// Package events carries TypeChanged notifications between the product
// facade and its listeners, in process or across processes through redis.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/productgraph/internal/domain/products"
)

type ChangeKind string

const (
	ChangeSaved      ChangeKind = "saved"
	ChangeDuplicated ChangeKind = "duplicated"
	ChangeImported   ChangeKind = "imported"
)

// TypeChanged is published after a product type graph was committed.
type TypeChanged struct {
	ID         uuid.UUID                `json:"id"`
	Change     ChangeKind               `json:"change"`
	TypeID     int64                    `json:"type_id"`
	Kind       string                   `json:"kind"`
	Identity   products.ProductIdentity `json:"identity"`
	Version    int64                    `json:"version"`
	OccurredAt time.Time                `json:"occurred_at"`
}

func NewTypeChanged(change ChangeKind, t products.ProductType) TypeChanged {
	ev := TypeChanged{
		ID:         uuid.New(),
		Change:     change,
		OccurredAt: time.Now().UTC(),
	}
	if t != nil {
		b := t.Base()
		ev.TypeID = b.ID
		ev.Kind = t.Kind()
		ev.Identity = b.Identity
		ev.Version = b.Version
	}
	return ev
}

func encode(ev TypeChanged) ([]byte, error) {
	return json.Marshal(ev)
}

func decode(raw []byte) (TypeChanged, error) {
	var ev TypeChanged
	if err := json.Unmarshal(raw, &ev); err != nil {
		return TypeChanged{}, fmt.Errorf("decode type changed: %w", err)
	}
	if ev.ID == uuid.Nil {
		return TypeChanged{}, fmt.Errorf("decode type changed: missing id")
	}
	return ev, nil
}

type Handler func(ev TypeChanged)

type Bus interface {
	Publish(ctx context.Context, ev TypeChanged) error
	// Subscribe delivers events to onEvent until ctx is done.
	Subscribe(ctx context.Context, onEvent Handler) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, TypeChanged) error { return nil }
func (Nop) Subscribe(context.Context, Handler) error    { return nil }
func (Nop) Close() error                               { return nil }
