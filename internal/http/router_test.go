package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productgraph/internal/data/repos"
	"github.com/yungbote/productgraph/internal/data/repos/testutil"
	"github.com/yungbote/productgraph/internal/domain/products"
	httpH "github.com/yungbote/productgraph/internal/http/handlers"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/samples/watch"
	"github.com/yungbote/productgraph/internal/services"
	"github.com/yungbote/productgraph/internal/storage"
)

type apiFixture struct {
	router *gin.Engine
	pm     services.ProductManagement
	dir    string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
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
	pm := services.NewProductManagement(db, log, store, registry, nil, nil)
	router := NewRouter(RouterConfig{
		Log:             log,
		ProductHandler:  httpH.NewProductHandler(log, pm, strategies),
		ImporterHandler: httpH.NewImporterHandler(log, pm, strategies),
		HealthHandler:   httpH.NewHealthHandler(),
	})
	return &apiFixture{router: router, pm: pm, dir: dir}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func (f *apiFixture) seedWatch(t *testing.T) *watch.WatchProduct {
	t.Helper()
	w := &watch.WatchProduct{Price: 80, Weight: 0.15}
	w.Identity = products.NewIdentity("W-7", 1)
	w.Name = "Field"
	face := &watch.WatchfaceProduct{}
	face.Identity = products.NewIdentity("F-7", 1)
	w.SetWatchface(face)
	if _, err := f.pm.SaveType(dbctx.Context{Ctx: context.Background()}, w); err != nil {
		t.Fatalf("SaveType: %v", err)
	}
	return w
}

func TestHealthcheck(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestGetType(t *testing.T) {
	f := newAPI(t)
	w := f.seedWatch(t)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/types/%d", w.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Type httpH.TypeView `json:"type"`
	}](t, rec).Type
	if got.Kind != watch.KindWatch || got.Identifier != "W-7" || got.Columns["price"] != 80.0 {
		t.Fatalf("unexpected view: %+v", got)
	}
	if len(got.Parts) != 1 || got.Parts[0].Role != watch.RoleWatchface || got.Parts[0].Product.Identifier != "F-7" {
		t.Fatalf("unexpected parts: %+v", got.Parts)
	}

	if rec := f.do(t, http.MethodGet, "/api/types/999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing type: status=%d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/types/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", rec.Code)
	}
}

func TestListTypes(t *testing.T) {
	f := newAPI(t)
	f.seedWatch(t)

	rec := f.do(t, http.MethodGet, "/api/types?identifier=W-7&revision=latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Types []httpH.TypeView `json:"types"`
	}](t, rec).Types
	if len(got) != 1 || got[0].Identifier != "W-7" {
		t.Fatalf("unexpected types: %+v", got)
	}

	if rec := f.do(t, http.MethodGet, "/api/types?revision=-3", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad revision: status=%d", rec.Code)
	}

	sw := &watch.SmartWatchProduct{}
	sw.Identity = products.NewIdentity("SW-7", 1)
	if _, err := f.pm.SaveType(dbctx.Context{Ctx: context.Background()}, sw); err != nil {
		t.Fatalf("SaveType: %v", err)
	}
	for query, want := range map[string]int{
		"kind=WatchProduct":                 1,
		"kind=WatchProduct&subkinds=true":   2,
		"kind=SmartWatchProduct&subkinds=1": 1,
	} {
		rec := f.do(t, http.MethodGet, "/api/types?"+query, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", query, rec.Code, rec.Body.String())
		}
		got := decode[struct {
			Types []httpH.TypeView `json:"types"`
		}](t, rec).Types
		if len(got) != want {
			t.Fatalf("%s: want=%d got=%d", query, want, len(got))
		}
	}
	if rec := f.do(t, http.MethodGet, "/api/types?kind=WatchProduct&subkinds=maybe", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad subkinds: status=%d", rec.Code)
	}
}

func TestUsedByEndpoint(t *testing.T) {
	f := newAPI(t)
	w := f.seedWatch(t)
	face := w.Watchface()

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/types/%d/used-by", face.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Types []httpH.TypeView `json:"types"`
	}](t, rec).Types
	if len(got) != 1 || got[0].ID != w.ID || got[0].Identifier != "W-7" {
		t.Fatalf("unexpected parents: %+v", got)
	}

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/types/%d/used-by", w.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[struct {
		Types []httpH.TypeView `json:"types"`
	}](t, rec).Types; len(got) != 0 {
		t.Fatalf("root should have no parents: %+v", got)
	}

	if rec := f.do(t, http.MethodGet, "/api/types/999/used-by", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing type: status=%d", rec.Code)
	}
}

func TestDuplicateEndpoint(t *testing.T) {
	f := newAPI(t)
	w := f.seedWatch(t)
	path := fmt.Sprintf("/api/types/%d/duplicate", w.ID)

	rec := f.do(t, http.MethodPost, path, map[string]any{"identifier": "W-7", "revision": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Type httpH.TypeView `json:"type"`
	}](t, rec).Type
	if got.Revision != 2 || got.ID == w.ID {
		t.Fatalf("unexpected duplicate: %+v", got)
	}

	rec = f.do(t, http.MethodPost, path, map[string]any{"identifier": "W-7", "revision": 2})
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflict: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodPost, path, map[string]any{"identifier": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty identity: status=%d", rec.Code)
	}
}

func TestRecipesAndInstancesEndpoints(t *testing.T) {
	f := newAPI(t)
	w := f.seedWatch(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	def := &watch.WatchProductRecipe{CoresInstalled: 1}
	def.Name = "default"
	def.Classification = products.ClassificationDefault
	part := &products.ProductionRecipe{}
	part.Name = "part"
	part.Classification = products.ClassificationPart
	if err := f.pm.SaveRecipes(dbc, w.ID, []products.ProductRecipe{def, part}); err != nil {
		t.Fatalf("SaveRecipes: %v", err)
	}

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/types/%d/recipes?classification=Part", w.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	recipes := decode[struct {
		Recipes []httpH.RecipeView `json:"recipes"`
	}](t, rec).Recipes
	if len(recipes) != 1 || recipes[0].Name != "part" {
		t.Fatalf("unexpected recipes: %+v", recipes)
	}
	if rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/types/%d/recipes?classification=Bogus", w.ID), nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad classification: status=%d", rec.Code)
	}

	inst, err := f.pm.CreateInstance(dbc, w, true)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/instances/%d", inst.Instance().ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	view := decode[struct {
		Instance httpH.InstanceView `json:"instance"`
	}](t, rec).Instance
	if view.Kind != watch.KindWatchInstance || view.Product.ID != w.ID {
		t.Fatalf("unexpected instance: %+v", view)
	}

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/types/%d/instances", w.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/api/instances/404", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing instance: status=%d", rec.Code)
	}
}

func TestImporterEndpoints(t *testing.T) {
	f := newAPI(t)
	doc := "types:\n  - kind: NeedleProduct\n    identifier: N-77\n    revision: 1\n"
	if err := os.WriteFile(filepath.Join(f.dir, "needles.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/api/importers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	list := decode[struct {
		Importers []httpH.ImporterView `json:"importers"`
	}](t, rec).Importers
	if len(list) != 1 || list[0].Name != "yaml" {
		t.Fatalf("unexpected importers: %+v", list)
	}

	rec = f.do(t, http.MethodPost, "/api/importers/yaml", map[string]any{"parameters": map[string]string{"path": "needles.yaml"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Types []httpH.TypeView `json:"types"`
	}](t, rec).Types
	if len(got) != 1 || got[0].ID == 0 || got[0].Identifier != "N-77" {
		t.Fatalf("unexpected import: %+v", got)
	}

	if rec := f.do(t, http.MethodPost, "/api/importers/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown importer: status=%d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/importers/yaml", map[string]any{"parameters": map[string]string{"path": "missing.yaml"}}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing file: status=%d", rec.Code)
	}
}
