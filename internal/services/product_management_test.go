package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yungbote/productgraph/internal/data/repos"
	"github.com/yungbote/productgraph/internal/data/repos/testutil"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/events"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/samples/watch"
	"github.com/yungbote/productgraph/internal/storage"
)

type fakeMirror struct {
	mu    sync.Mutex
	roots []products.ProductType
	err   error
}

func (m *fakeMirror) Mirror(_ context.Context, root products.ProductType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = append(m.roots, root)
	return m.err
}

type recorder struct {
	mu     sync.Mutex
	events []events.TypeChanged
}

func (r *recorder) handle(ev events.TypeChanged) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []events.TypeChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.TypeChanged(nil), r.events...)
}

type fixture struct {
	pm     ProductManagement
	mirror *fakeMirror
	rec    *recorder
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	strategies, err := watch.Strategies()
	if err != nil {
		t.Fatalf("watch.Strategies: %v", err)
	}
	store := storage.New(db, log, strategies, repos.NewCatalog(db, log))

	dir := t.TempDir()
	registry, err := importers.NewRegistry(importers.NewFileImporter("yaml", dir, strategies, log))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	bus := events.NewLocalBus()
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := bus.Subscribe(ctx, rec.handle); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	mirror := &fakeMirror{}
	return &fixture{
		pm:     NewProductManagement(db, log, store, registry, bus, mirror),
		mirror: mirror,
		rec:    rec,
		dir:    dir,
	}
}

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func storedWatch(t *testing.T, f *fixture) *watch.WatchProduct {
	t.Helper()
	w := &watch.WatchProduct{Price: 150, Weight: 0.3}
	w.Identity = products.NewIdentity("W-1", 1)
	w.Name = "Classic"
	face := &watch.WatchfaceProduct{IsDigital: true}
	face.Identity = products.NewIdentity("F-1", 1)
	w.SetWatchface(face)
	needle := &watch.NeedleProduct{}
	needle.Identity = products.NewIdentity("N-1", 1)
	w.AddNeedle(watch.HandMinutes, needle)
	if _, err := f.pm.SaveType(bg(), w); err != nil {
		t.Fatalf("SaveType: %v", err)
	}
	return w
}

func TestSaveTypeNotifies(t *testing.T) {
	f := newFixture(t)
	w := storedWatch(t, f)

	evs := f.rec.all()
	if len(evs) != 1 || evs[0].Change != events.ChangeSaved || evs[0].TypeID != w.ID {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if len(f.mirror.roots) != 1 || f.mirror.roots[0] != products.ProductType(w) {
		t.Fatalf("mirror not called with saved root")
	}
}

func TestMirrorFailureDoesNotFailSave(t *testing.T) {
	f := newFixture(t)
	f.mirror.err = errors.New("neo4j down")
	w := storedWatch(t, f)
	if w.ID == 0 {
		t.Fatalf("save should succeed when mirroring fails")
	}
}

func TestDuplicate(t *testing.T) {
	f := newFixture(t)
	w := storedWatch(t, f)

	def := &watch.WatchProductRecipe{CoresInstalled: 4}
	def.Name = "default"
	def.Classification = products.ClassificationDefault
	clone := &products.ProductionRecipe{}
	clone.Name = "clone only"
	clone.Classification = products.ClassificationClone
	if err := f.pm.SaveRecipes(bg(), w.ID, []products.ProductRecipe{def, clone}); err != nil {
		t.Fatalf("SaveRecipes: %v", err)
	}

	template, err := f.pm.LoadType(bg(), w.ID)
	if err != nil {
		t.Fatalf("LoadType: %v", err)
	}
	dup, err := f.pm.Duplicate(bg(), template, products.NewIdentity("W-1", 2))
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.Base().ID == 0 || dup.Base().ID == w.ID {
		t.Fatalf("duplicate not stored as new type: id=%d", dup.Base().ID)
	}

	loaded, err := f.pm.LoadType(bg(), dup.Base().ID)
	if err != nil {
		t.Fatalf("LoadType duplicate: %v", err)
	}
	lw := loaded.(*watch.WatchProduct)
	if lw.Price != 150 || lw.Name != "Classic" || lw.Identity != products.NewIdentity("W-1", 2) {
		t.Fatalf("duplicate state: %+v", lw)
	}
	if lw.Watchface() == nil || lw.Watchface().ID != w.Watchface().ID {
		t.Fatalf("duplicate should share the watchface child")
	}
	if n := lw.Needles(); len(n) != 1 || n[0].Hand != watch.HandMinutes {
		t.Fatalf("needle link payload not copied: %+v", n)
	}

	recipes, err := f.pm.GetRecipes(bg(), loaded, products.ClassificationUnset)
	if err != nil {
		t.Fatalf("GetRecipes: %v", err)
	}
	if len(recipes) != 1 || recipes[0].Recipe().Name != "default" {
		t.Fatalf("expected only the default recipe copied, got %d", len(recipes))
	}
	if recipes[0].(*watch.WatchProductRecipe).CoresInstalled != 4 {
		t.Fatalf("recipe payload not copied")
	}

	evs := f.rec.all()
	if last := evs[len(evs)-1]; last.Change != events.ChangeDuplicated || last.TypeID != dup.Base().ID {
		t.Fatalf("unexpected last event: %+v", last)
	}
}

func TestDuplicateIdentityConflict(t *testing.T) {
	f := newFixture(t)
	w := storedWatch(t, f)
	other := &watch.NeedleProduct{}
	other.Identity = products.NewIdentity("W-1", 2)
	if _, err := f.pm.SaveType(bg(), other); err != nil {
		t.Fatalf("SaveType: %v", err)
	}

	_, err := f.pm.Duplicate(bg(), w, products.NewIdentity("W-1", 2))
	var conflict *products.IdentityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected IdentityConflictError, got %v", err)
	}

	unsaved := &watch.WatchProduct{}
	unsaved.Identity = products.NewIdentity("X", 1)
	if _, err := f.pm.Duplicate(bg(), unsaved, products.NewIdentity("X", 2)); !products.IsNotFound(err) {
		t.Fatalf("expected NotFound for unsaved template, got %v", err)
	}
	if _, err := f.pm.Duplicate(bg(), w, products.Latest("W-1")); !errors.Is(err, products.ErrInvalidGraph) {
		t.Fatalf("expected invalid graph for latest identity, got %v", err)
	}
}

func TestImportTypes(t *testing.T) {
	f := newFixture(t)
	doc := `
types:
  - kind: SmartWatchProduct
    identifier: SW-1
    revision: 1
    columns: {price: 300, weight: 0.1}
    parts:
      - role: Watchface
        identifier: F-9
        revision: 1
  - kind: WatchfaceProduct
    identifier: F-9
    revision: 1
    columns: {is_digital: true}
`
	if err := os.WriteFile(filepath.Join(f.dir, "smart.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	params := f.pm.Importers()
	if _, ok := params["yaml"]; !ok {
		t.Fatalf("importer not listed: %v", params)
	}

	imported, err := f.pm.ImportTypes(bg(), "yaml", importers.Parameters{importers.ParamPath: "smart.yaml"})
	if err != nil {
		t.Fatalf("ImportTypes: %v", err)
	}
	if len(imported) != 1 || imported[0].Base().ID == 0 {
		t.Fatalf("unexpected import result: %+v", imported)
	}
	loaded, err := f.pm.LoadTypeByIdentity(bg(), products.Latest("SW-1"))
	if err != nil {
		t.Fatalf("LoadTypeByIdentity: %v", err)
	}
	sw := loaded.(*watch.SmartWatchProduct)
	if sw.Price != 300 || sw.Watchface() == nil || !sw.Watchface().IsDigital {
		t.Fatalf("imported smart watch: %+v", sw)
	}

	if _, err := f.pm.ImportTypes(bg(), "missing", nil); !errors.Is(err, importers.ErrUnknownImporter) {
		t.Fatalf("expected ErrUnknownImporter, got %v", err)
	}
}

func TestInstances(t *testing.T) {
	f := newFixture(t)
	w := storedWatch(t, f)

	draft, err := f.pm.CreateInstance(bg(), w, false)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if draft.Instance().ID != 0 || draft.Instance().State != products.InstanceCreated {
		t.Fatalf("unsaved instance: %+v", draft.Instance())
	}

	inst, err := f.pm.CreateInstance(bg(), w, true)
	if err != nil {
		t.Fatalf("CreateInstance save: %v", err)
	}
	wi, ok := inst.(*watch.WatchInstance)
	if !ok || wi.ID == 0 {
		t.Fatalf("expected stored WatchInstance, got %T %+v", inst, inst.Instance())
	}
	wi.Identity = "SN-0001"
	wi.TimeSet = true
	if err := f.pm.SaveInstance(bg(), wi); err != nil {
		t.Fatalf("SaveInstance: %v", err)
	}

	byID, err := f.pm.GetInstance(bg(), wi.ID)
	if err != nil || !byID.(*watch.WatchInstance).TimeSet {
		t.Fatalf("GetInstance: %+v %v", byID, err)
	}
	byIdentity, err := f.pm.GetInstanceByIdentity(bg(), "SN-0001")
	if err != nil || byIdentity.Instance().ID != wi.ID {
		t.Fatalf("GetInstanceByIdentity: %+v %v", byIdentity, err)
	}
	all, err := f.pm.GetInstances(bg(), w.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetInstances: len=%d err=%v", len(all), err)
	}

	orphan := &watch.WatchProduct{}
	if _, err := f.pm.CreateInstance(bg(), orphan, true); !products.IsNotFound(err) {
		t.Fatalf("expected NotFound for unsaved type, got %v", err)
	}
	if _, err := f.pm.GetRecipes(bg(), orphan, products.ClassificationUnset); !products.IsNotFound(err) {
		t.Fatalf("expected NotFound for recipes of unsaved type, got %v", err)
	}
}
