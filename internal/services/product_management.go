package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/events"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/strategy"
)

// ProductStore is the graph loader/saver the facade delegates to.
type ProductStore interface {
	Strategies() *strategy.Strategies

	LoadTypes(dbc dbctx.Context, q products.ProductQuery) ([]products.ProductType, error)
	LoadType(dbc dbctx.Context, id int64) (products.ProductType, error)
	LoadTypeByIdentity(dbc dbctx.Context, identity products.ProductIdentity) (products.ProductType, error)
	LoadParents(dbc dbctx.Context, id int64) ([]products.ProductType, error)
	SaveType(dbc dbctx.Context, t products.ProductType) (int64, error)

	LoadRecipe(dbc dbctx.Context, id int64) (products.ProductRecipe, error)
	LoadRecipes(dbc dbctx.Context, productID int64, classification products.RecipeClassification) ([]products.ProductRecipe, error)
	SaveRecipe(dbc dbctx.Context, r products.ProductRecipe) (int64, error)
	SaveRecipes(dbc dbctx.Context, productID int64, recipes []products.ProductRecipe) error

	LoadInstance(dbc dbctx.Context, id int64) (products.ProductInstance, error)
	LoadInstanceByIdentity(dbc dbctx.Context, identity string) (products.ProductInstance, error)
	LoadInstances(dbc dbctx.Context, productID int64) ([]products.ProductInstance, error)
	SaveInstance(dbc dbctx.Context, inst products.ProductInstance) error
	SaveInstances(dbc dbctx.Context, instances []products.ProductInstance) error
}

// GraphMirror receives every committed type graph.
type GraphMirror interface {
	Mirror(ctx context.Context, root products.ProductType) error
}

type ProductManagement interface {
	LoadTypes(dbc dbctx.Context, q products.ProductQuery) ([]products.ProductType, error)
	LoadType(dbc dbctx.Context, id int64) (products.ProductType, error)
	LoadTypeByIdentity(dbc dbctx.Context, identity products.ProductIdentity) (products.ProductType, error)
	SaveType(dbc dbctx.Context, t products.ProductType) (int64, error)
	// UsedBy lists the types that reference id as a part.
	UsedBy(dbc dbctx.Context, id int64) ([]products.ProductType, error)
	// Duplicate stores a copy of template under newIdentity. Parts point at
	// the template's children; recipes matching CloneFilter are copied.
	Duplicate(dbc dbctx.Context, template products.ProductType, newIdentity products.ProductIdentity) (products.ProductType, error)

	Importers() map[string]importers.Parameters
	ImportTypes(dbc dbctx.Context, importerName string, params importers.Parameters) ([]products.ProductType, error)

	GetRecipes(dbc dbctx.Context, t products.ProductType, classification products.RecipeClassification) ([]products.ProductRecipe, error)
	LoadRecipe(dbc dbctx.Context, id int64) (products.ProductRecipe, error)
	SaveRecipe(dbc dbctx.Context, r products.ProductRecipe) (int64, error)
	SaveRecipes(dbc dbctx.Context, productID int64, recipes []products.ProductRecipe) error

	CreateInstance(dbc dbctx.Context, t products.ProductType, save bool) (products.ProductInstance, error)
	GetInstance(dbc dbctx.Context, id int64) (products.ProductInstance, error)
	GetInstanceByIdentity(dbc dbctx.Context, identity string) (products.ProductInstance, error)
	GetInstances(dbc dbctx.Context, productID int64) ([]products.ProductInstance, error)
	SaveInstance(dbc dbctx.Context, inst products.ProductInstance) error
	SaveInstances(dbc dbctx.Context, instances []products.ProductInstance) error
}

type productManagement struct {
	db        *gorm.DB
	log       *logger.Logger
	store     ProductStore
	importers *importers.Registry
	bus       events.Bus
	mirror    GraphMirror
}

// NewProductManagement wires the facade. bus and mirror may be nil.
func NewProductManagement(db *gorm.DB, baseLog *logger.Logger, store ProductStore, registry *importers.Registry, bus events.Bus, mirror GraphMirror) ProductManagement {
	if bus == nil {
		bus = events.Nop{}
	}
	return &productManagement{
		db:        db,
		log:       baseLog.With("service", "ProductManagement"),
		store:     store,
		importers: registry,
		bus:       bus,
		mirror:    mirror,
	}
}

// inTx runs fn in one transaction unless dbc already carries one.
func (pm *productManagement) inTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil || pm.db == nil {
		return fn(dbc)
	}
	return pm.db.WithContext(dbc.Context()).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func (pm *productManagement) LoadTypes(dbc dbctx.Context, q products.ProductQuery) ([]products.ProductType, error) {
	return pm.store.LoadTypes(dbc, q)
}

func (pm *productManagement) LoadType(dbc dbctx.Context, id int64) (products.ProductType, error) {
	return pm.store.LoadType(dbc, id)
}

func (pm *productManagement) LoadTypeByIdentity(dbc dbctx.Context, identity products.ProductIdentity) (products.ProductType, error) {
	return pm.store.LoadTypeByIdentity(dbc, identity)
}

func (pm *productManagement) UsedBy(dbc dbctx.Context, id int64) ([]products.ProductType, error) {
	return pm.store.LoadParents(dbc, id)
}

func (pm *productManagement) SaveType(dbc dbctx.Context, t products.ProductType) (int64, error) {
	id, err := pm.store.SaveType(dbc, t)
	if err != nil {
		return 0, err
	}
	pm.typeChanged(dbc, events.ChangeSaved, t)
	return id, nil
}

func (pm *productManagement) Duplicate(dbc dbctx.Context, template products.ProductType, newIdentity products.ProductIdentity) (products.ProductType, error) {
	if template == nil {
		return nil, fmt.Errorf("%w: nil template", products.ErrInvalidGraph)
	}
	if products.IsNew(template) {
		return nil, &products.NotFoundError{Entity: products.EntityType, Identity: template.Base().Identity.String()}
	}
	if err := newIdentity.Validate(); err != nil {
		return nil, err
	}
	if newIdentity.IsLatest() {
		return nil, fmt.Errorf("%w: duplicate needs a concrete revision", products.ErrInvalidGraph)
	}

	strategies := pm.store.Strategies()
	clone, err := strategies.CloneType(template)
	if err != nil {
		return nil, err
	}
	clone.Base().Identity = newIdentity
	for _, p := range template.Base().Parts {
		if p == nil {
			continue
		}
		link, err := strategies.CloneLink(p)
		if err != nil {
			return nil, err
		}
		link.Link().Parent = clone
		clone.Base().SetPart(p.Link().Role, link)
	}

	err = pm.inTx(dbc, func(dbc dbctx.Context) error {
		recipes, err := pm.store.LoadRecipes(dbc, template.Base().ID, products.CloneFilter)
		if err != nil {
			return err
		}
		if _, err := pm.store.SaveType(dbc, clone); err != nil {
			return err
		}
		for _, r := range recipes {
			copied, err := strategies.CloneRecipe(r)
			if err != nil {
				return err
			}
			copied.Recipe().Product = clone
			if _, err := pm.store.SaveRecipe(dbc, copied); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		pm.log.Warn("duplicate failed", "template", template.Base().Identity.String(), "identity", newIdentity.String(), "error", err)
		return nil, err
	}
	pm.typeChanged(dbc, events.ChangeDuplicated, clone)
	return clone, nil
}

func (pm *productManagement) Importers() map[string]importers.Parameters {
	return pm.importers.Parameters()
}

// ImportTypes runs the named importer and stores every returned graph in one
// transaction.
func (pm *productManagement) ImportTypes(dbc dbctx.Context, importerName string, params importers.Parameters) ([]products.ProductType, error) {
	imp, err := pm.importers.Get(importerName)
	if err != nil {
		return nil, err
	}
	completed, err := imp.Update(params.Clone())
	if err != nil {
		return nil, err
	}
	imported, err := imp.Import(dbc.Context(), completed)
	if err != nil {
		return nil, err
	}
	err = pm.inTx(dbc, func(dbc dbctx.Context) error {
		for _, t := range imported {
			if _, err := pm.store.SaveType(dbc, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, t := range imported {
		pm.typeChanged(dbc, events.ChangeImported, t)
	}
	pm.log.Info("types imported", "importer", importerName, "count", len(imported))
	return imported, nil
}

func (pm *productManagement) GetRecipes(dbc dbctx.Context, t products.ProductType, classification products.RecipeClassification) ([]products.ProductRecipe, error) {
	if t == nil || products.IsNew(t) {
		return nil, &products.NotFoundError{Entity: products.EntityType}
	}
	return pm.store.LoadRecipes(dbc, t.Base().ID, classification)
}

func (pm *productManagement) LoadRecipe(dbc dbctx.Context, id int64) (products.ProductRecipe, error) {
	return pm.store.LoadRecipe(dbc, id)
}

func (pm *productManagement) SaveRecipe(dbc dbctx.Context, r products.ProductRecipe) (int64, error) {
	return pm.store.SaveRecipe(dbc, r)
}

func (pm *productManagement) SaveRecipes(dbc dbctx.Context, productID int64, recipes []products.ProductRecipe) error {
	return pm.store.SaveRecipes(dbc, productID, recipes)
}

// CreateInstance builds an instance of t, stored right away when save is set.
func (pm *productManagement) CreateInstance(dbc dbctx.Context, t products.ProductType, save bool) (products.ProductInstance, error) {
	if t == nil {
		return nil, &products.NotFoundError{Entity: products.EntityType}
	}
	inst := products.NewInstance(t)
	if !save {
		return inst, nil
	}
	if err := pm.store.SaveInstance(dbc, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (pm *productManagement) GetInstance(dbc dbctx.Context, id int64) (products.ProductInstance, error) {
	return pm.store.LoadInstance(dbc, id)
}

func (pm *productManagement) GetInstanceByIdentity(dbc dbctx.Context, identity string) (products.ProductInstance, error) {
	return pm.store.LoadInstanceByIdentity(dbc, identity)
}

func (pm *productManagement) GetInstances(dbc dbctx.Context, productID int64) ([]products.ProductInstance, error) {
	return pm.store.LoadInstances(dbc, productID)
}

func (pm *productManagement) SaveInstance(dbc dbctx.Context, inst products.ProductInstance) error {
	return pm.store.SaveInstance(dbc, inst)
}

func (pm *productManagement) SaveInstances(dbc dbctx.Context, instances []products.ProductInstance) error {
	return pm.store.SaveInstances(dbc, instances)
}

// typeChanged notifies listeners. Inside a caller's transaction nothing is
// committed yet, so notification is left to the caller.
func (pm *productManagement) typeChanged(dbc dbctx.Context, change events.ChangeKind, t products.ProductType) {
	if dbc.Tx != nil {
		return
	}
	ctx := dbc.Context()
	if err := pm.bus.Publish(ctx, events.NewTypeChanged(change, t)); err != nil {
		pm.log.Warn("publish type changed failed", "type_id", t.Base().ID, "error", err)
	}
	if pm.mirror != nil {
		if err := pm.mirror.Mirror(ctx, t); err != nil {
			pm.log.Warn("mirror product graph failed", "type_id", t.Base().ID, "error", err)
		}
	}
}
