package watch

import (
	"fmt"
	"testing"

	"github.com/yungbote/productgraph/internal/domain/products"
)

func needle(identifier string) *NeedleProduct {
	n := &NeedleProduct{}
	n.Identity = products.NewIdentity(identifier, 1)
	return n
}

func TestAddNeedleAfterRemove(t *testing.T) {
	w := &WatchProduct{}
	w.AddNeedle(HandHours, needle("N-H"))
	w.AddNeedle(HandMinutes, needle("N-M"))
	if !w.RemovePart(products.IndexedRole(RoleNeedlePrefix, 0)) {
		t.Fatalf("remove Needles[0]")
	}
	added := w.AddNeedle(HandSeconds, needle("N-S"))
	if added.Role != "Needles[2]" {
		t.Fatalf("new needle role: %s", added.Role)
	}

	needles := w.Needles()
	if len(needles) != 2 {
		t.Fatalf("needles: want=2 got=%d", len(needles))
	}
	if needles[0].Hand != HandMinutes || needles[0].Product.Base().Identity.Identifier != "N-M" {
		t.Fatalf("needle 0 overwritten: hand=%d", needles[0].Hand)
	}
	if needles[1].Hand != HandSeconds || needles[1] != added {
		t.Fatalf("needle 1: hand=%d", needles[1].Hand)
	}
}

func TestNeedlesInIndexOrder(t *testing.T) {
	w := &WatchProduct{}
	for i := 0; i < 12; i++ {
		w.AddNeedle(HandSeconds, needle(fmt.Sprintf("N-%d", i)))
	}
	needles := w.Needles()
	if len(needles) != 12 {
		t.Fatalf("needles: want=12 got=%d", len(needles))
	}
	for i, n := range needles {
		if want := fmt.Sprintf("N-%d", i); n.Product.Base().Identity.Identifier != want {
			t.Fatalf("needle %d: want=%s got=%s", i, want, n.Product.Base().Identity.Identifier)
		}
	}
}
