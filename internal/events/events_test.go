package events

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type gadget struct{ products.TypeBase }

func (*gadget) Kind() string { return "Gadget" }

func sampleType() products.ProductType {
	t := &gadget{}
	t.ID = 42
	t.Identity = products.NewIdentity("W-1", 3)
	t.Version = 5
	return t
}

func TestNewTypeChanged(t *testing.T) {
	ev := NewTypeChanged(ChangeSaved, sampleType())
	if ev.ID == uuid.Nil || ev.TypeID != 42 || ev.Version != 5 || ev.Kind != "Gadget" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Identity != products.NewIdentity("W-1", 3) {
		t.Fatalf("identity=%s", ev.Identity)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	ev := NewTypeChanged(ChangeDuplicated, sampleType())
	raw, err := encode(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != ev.ID || got.Change != ChangeDuplicated || !got.OccurredAt.Equal(ev.OccurredAt) {
		t.Fatalf("got %+v want %+v", got, ev)
	}
	if _, err := decode([]byte(`{"change":"saved"}`)); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected json error")
	}
}

func TestLocalBusDelivers(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []TypeChanged
	if err := bus.Subscribe(ctx, func(ev TypeChanged) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	ev := NewTypeChanged(ChangeSaved, sampleType())
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	mu.Lock()
	if len(got) != 1 || got[0].ID != ev.ID {
		t.Fatalf("unexpected deliveries: %+v", got)
	}
	mu.Unlock()

	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Publish(context.Background(), ev); err == nil {
		t.Fatalf("expected publish on closed bus to fail")
	}
}

func TestLocalBusUnsubscribesOnCancel(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	if err := bus.Subscribe(ctx, func(TypeChanged) { calls++ }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for {
		bus.mu.RLock()
		n := len(bus.subs)
		bus.mu.RUnlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = bus.Publish(context.Background(), NewTypeChanged(ChangeSaved, nil))
	if calls != 0 {
		t.Fatalf("handler called after cancel")
	}
}

func TestRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(RedisConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected missing addr error")
	}
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	bus, err := NewRedisBus(RedisConfig{Addr: addr, Channel: "productgraph.test." + uuid.NewString()}, logger.Nop())
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan TypeChanged, 1)
	if err := bus.Subscribe(ctx, func(ev TypeChanged) { got <- ev }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	ev := NewTypeChanged(ChangeImported, sampleType())
	if err := bus.Publish(ctx, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case recv := <-got:
		if recv.ID != ev.ID {
			t.Fatalf("got %s want %s", recv.ID, ev.ID)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for event")
	}
}
