package catalog

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/productgraph/internal/data/repos/testutil"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/domain/rows"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
)

func typeRow(identifier string, revision int) *rows.ProductType {
	return &rows.ProductType{
		Identifier: identifier,
		Revision:   revision,
		Name:       identifier,
		TypeName:   "WatchProduct",
		Columns:    datatypes.JSON([]byte("{}")),
	}
}

func TestProductTypeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewProductTypeRepo(db, testutil.Logger(t))

	r1 := typeRow("W-100", 1)
	r2 := typeRow("W-100", 2)
	other := typeRow("X-200", 1)
	other.Name = "Sport Watch"
	for _, row := range []*rows.ProductType{r1, r2, other} {
		if err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if row.ID == 0 || row.Version != 1 {
			t.Fatalf("Create: id=%d version=%d", row.ID, row.Version)
		}
	}

	var conflict *products.IdentityConflictError
	if err := repo.Create(dbc, typeRow("W-100", 1)); !errors.As(err, &conflict) {
		t.Fatalf("Create duplicate: expected IdentityConflictError, got %v", err)
	}

	latest, err := repo.GetByIdentity(dbc, products.Latest("W-100"))
	if err != nil || latest == nil || latest.ID != r2.ID {
		t.Fatalf("GetByIdentity latest: row=%v err=%v", latest, err)
	}
	if got, err := repo.GetByIdentity(dbc, products.NewIdentity("W-100", 7)); err != nil || got != nil {
		t.Fatalf("GetByIdentity missing: row=%v err=%v", got, err)
	}

	found, err := repo.Find(dbc, products.ProductQuery{Identifier: "W-*", RevisionFilter: products.RevisionLatest})
	if err != nil || len(found) != 1 || found[0].ID != r2.ID {
		t.Fatalf("Find latest by prefix: len=%d err=%v", len(found), err)
	}
	found, err = repo.Find(dbc, products.ProductQuery{Name: "Sport"})
	if err != nil || len(found) != 1 || found[0].ID != other.ID {
		t.Fatalf("Find by name: len=%d err=%v", len(found), err)
	}

	r1.Name = "renamed"
	ok, err := repo.UpdateVersioned(dbc, r1, 1)
	if err != nil || !ok || r1.Version != 2 {
		t.Fatalf("UpdateVersioned: ok=%v err=%v version=%d", ok, err, r1.Version)
	}
	ok, err = repo.UpdateVersioned(dbc, r1, 1)
	if err != nil || ok {
		t.Fatalf("UpdateVersioned stale: ok=%v err=%v", ok, err)
	}
	if v, exists, err := repo.GetVersion(dbc, r1.ID); err != nil || !exists || v != 2 {
		t.Fatalf("GetVersion: v=%d exists=%v err=%v", v, exists, err)
	}
}

func TestPartLinkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewPartLinkRepo(db, testutil.Logger(t))

	a := &rows.PartLink{ParentID: 1, Role: "Needles[1]", Position: 1, ChildID: 9, TypeName: "NeedlePartLink", Columns: datatypes.JSON([]byte(`{"hand":1}`))}
	b := &rows.PartLink{ParentID: 1, Role: "Watchface", Position: 0, ChildID: 7, TypeName: "SimpleLink", Columns: datatypes.JSON([]byte("{}"))}
	for _, row := range []*rows.PartLink{a, b} {
		if err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(dbc, &rows.PartLink{ParentID: 1, Role: "Watchface", ChildID: 8, TypeName: "SimpleLink"}); !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for duplicate role, got %v", err)
	}

	got, err := repo.ListByParent(dbc, 1)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListByParent: len=%d err=%v", len(got), err)
	}
	if got[0].Role != "Watchface" || got[1].Role != "Needles[1]" {
		t.Fatalf("ListByParent order: %s, %s", got[0].Role, got[1].Role)
	}

	a.ChildID = 10
	if err := repo.Update(dbc, a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	users, err := repo.ListByChild(dbc, 10)
	if err != nil || len(users) != 1 || users[0].ID != a.ID {
		t.Fatalf("ListByChild: len=%d err=%v", len(users), err)
	}

	if err := repo.DeleteByIDs(dbc, []int64{b.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if got, _ := repo.ListByParent(dbc, 1); len(got) != 1 {
		t.Fatalf("after delete: len=%d", len(got))
	}

	seeded := testutil.SeedPartLink(t, dbc.Ctx, tx, 2, 10, "Watchface")
	users, err = repo.ListByChild(dbc, 10)
	if err != nil || len(users) != 2 || users[1].ID != seeded.ID {
		t.Fatalf("ListByChild after seed: len=%d err=%v", len(users), err)
	}
}

func TestProductRecipeRepoClassification(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewProductRecipeRepo(db, testutil.Logger(t))

	def := &rows.ProductRecipe{ProductID: 3, TypeName: "WatchProductRecipe", Name: "default", Classification: int(products.ClassificationDefault)}
	alt := &rows.ProductRecipe{ProductID: 3, TypeName: "WatchProductRecipe", Name: "alt", Classification: int(products.ClassificationAlternative | products.ClassificationPart)}
	for _, row := range []*rows.ProductRecipe{def, alt} {
		if err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.ListByProduct(dbc, 3, products.ClassificationUnset)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByProduct unset: len=%d err=%v", len(all), err)
	}
	parts, err := repo.ListByProduct(dbc, 3, products.ClassificationPart)
	if err != nil || len(parts) != 1 || parts[0].ID != alt.ID {
		t.Fatalf("ListByProduct part: len=%d err=%v", len(parts), err)
	}
}

func TestProductInstanceRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewProductInstanceRepo(db, testutil.Logger(t))
	product := testutil.SeedProductType(t, dbc.Ctx, tx, "W-5", 1, "WatchProduct")

	batch := []*rows.ProductInstance{
		{ProductID: product.ID, TypeName: "WatchInstance", Identity: "SN-1"},
		{ProductID: product.ID, TypeName: "WatchInstance", Identity: "SN-2"},
	}
	if err := repo.Create(dbc, batch); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if batch[0].ID == 0 || batch[1].ID == 0 {
		t.Fatalf("Create did not assign ids")
	}
	got, err := repo.GetByIdentity(dbc, "SN-2")
	if err != nil || got == nil || got.ID != batch[1].ID {
		t.Fatalf("GetByIdentity: row=%v err=%v", got, err)
	}
	list, err := repo.ListByProduct(dbc, product.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByProduct: len=%d err=%v", len(list), err)
	}
}
