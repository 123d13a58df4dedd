package importers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/samples/watch"
	"github.com/yungbote/productgraph/internal/strategy"
)

const watchDoc = `
types:
  - kind: WatchProduct
    identifier: W-100
    revision: 2
    name: Classic
    state: released
    columns: {price: 120.5, weight: 0.25}
    parts:
      - role: Watchface
        identifier: F-100
        revision: 1
      - role: Needles[0]
        kind: NeedlePartLink
        identifier: N-H
        revision: 1
        columns: {hand: 0}
  - kind: WatchfaceProduct
    identifier: F-100
    revision: 1
    columns: {is_digital: true}
  - kind: NeedleProduct
    identifier: N-H
    revision: 1
`

func newFileImporter(t *testing.T, dir string) *FileImporter {
	t.Helper()
	strategies, err := watch.Strategies()
	if err != nil {
		t.Fatalf("watch.Strategies: %v", err)
	}
	return NewFileImporter("yaml", dir, strategies, logger.Nop())
}

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestFileImporterBuildsLinkedRoots(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "watch.yaml", watchDoc)
	imp := newFileImporter(t, dir)

	out, err := imp.Import(context.Background(), Parameters{ParamPath: "watch.yaml"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 root, got %d", len(out))
	}
	w, ok := out[0].(*watch.WatchProduct)
	if !ok {
		t.Fatalf("root is %T", out[0])
	}
	if w.Price != 120.5 || w.Weight != 0.25 || w.State != products.StateReleased {
		t.Fatalf("unexpected watch fields: %+v", w)
	}
	if w.Identity != products.NewIdentity("W-100", 2) || !products.IsNew(w) {
		t.Fatalf("unexpected identity or id: %s id=%d", w.Identity, w.ID)
	}
	face := w.Watchface()
	if face == nil || !face.IsDigital {
		t.Fatalf("watchface not linked: %+v", face)
	}
	if w.Part(watch.RoleWatchface).Link().Parent != products.ProductType(w) {
		t.Fatalf("link parent not set")
	}
	needles := w.Needles()
	if len(needles) != 1 || needles[0].Hand != watch.HandHours {
		t.Fatalf("unexpected needles: %+v", needles)
	}
}

func TestFileImporterAllTypes(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "watch.yaml", watchDoc)
	imp := newFileImporter(t, "")

	out, err := imp.Import(context.Background(), Parameters{ParamPath: path, ParamRootsOnly: "false"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 types, got %d", len(out))
	}
}

func TestFileImporterRejectsBadDocuments(t *testing.T) {
	dir := t.TempDir()
	imp := newFileImporter(t, dir)

	cases := map[string]struct {
		body string
		want error
	}{
		"unknown ref": {
			body: "types:\n  - kind: WatchProduct\n    identifier: W\n    revision: 1\n    columns: {price: 1, weight: 1}\n    parts:\n      - role: Watchface\n        identifier: missing\n        revision: 1\n",
			want: products.ErrInvalidGraph,
		},
		"duplicate identity": {
			body: "types:\n  - kind: NeedleProduct\n    identifier: N\n    revision: 1\n  - kind: NeedleProduct\n    identifier: N\n    revision: 1\n",
			want: products.ErrInvalidGraph,
		},
		"abstract kind": {
			body: "types:\n  - kind: ProductType\n    identifier: X\n    revision: 1\n",
			want: strategy.ErrAbstractKind,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			writeDoc(t, dir, "doc.yaml", tc.body)
			_, err := imp.Import(context.Background(), Parameters{ParamPath: "doc.yaml"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	writeDoc(t, dir, "alien.yaml", "types:\n  - kind: Alien\n    identifier: A\n    revision: 1\n")
	_, err := imp.Import(context.Background(), Parameters{ParamPath: "alien.yaml"})
	var nf *strategy.StrategyNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected StrategyNotFoundError, got %v", err)
	}

	if _, err := imp.Import(context.Background(), Parameters{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestFileImporterUpdate(t *testing.T) {
	imp := newFileImporter(t, "/data")
	got, err := imp.Update(Parameters{ParamPath: " watches.yaml "})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got[ParamPath] != filepath.Join("/data", "watches.yaml") || got[ParamRootsOnly] != "true" {
		t.Fatalf("unexpected parameters: %v", got)
	}
	if _, err := imp.Update(Parameters{"bogus": "1"}); err == nil {
		t.Fatalf("expected unknown parameter error")
	}
	if _, err := imp.Update(Parameters{ParamRootsOnly: "maybe"}); err == nil {
		t.Fatalf("expected bool error")
	}
}

func TestRegistry(t *testing.T) {
	a := newFileImporter(t, "")
	r, err := NewRegistry(a)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got, err := r.Get("yaml"); err != nil || got != Importer(a) {
		t.Fatalf("Get: %v %v", got, err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknownImporter) {
		t.Fatalf("expected ErrUnknownImporter, got %v", err)
	}
	if names := r.Names(); len(names) != 1 || names[0] != "yaml" {
		t.Fatalf("Names: %v", names)
	}
	if params := r.Parameters(); params["yaml"][ParamRootsOnly] != "true" {
		t.Fatalf("Parameters: %v", params)
	}
	if _, err := NewRegistry(a, a); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
