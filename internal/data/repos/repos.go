package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/data/repos/catalog"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

type ProductTypeRepo = catalog.ProductTypeRepo
type PartLinkRepo = catalog.PartLinkRepo
type ProductInstanceRepo = catalog.ProductInstanceRepo
type ProductRecipeRepo = catalog.ProductRecipeRepo

func NewProductTypeRepo(db *gorm.DB, baseLog *logger.Logger) ProductTypeRepo {
	return catalog.NewProductTypeRepo(db, baseLog)
}
func NewPartLinkRepo(db *gorm.DB, baseLog *logger.Logger) PartLinkRepo {
	return catalog.NewPartLinkRepo(db, baseLog)
}
func NewProductInstanceRepo(db *gorm.DB, baseLog *logger.Logger) ProductInstanceRepo {
	return catalog.NewProductInstanceRepo(db, baseLog)
}
func NewProductRecipeRepo(db *gorm.DB, baseLog *logger.Logger) ProductRecipeRepo {
	return catalog.NewProductRecipeRepo(db, baseLog)
}

// Catalog groups the repos the product storage works on.
type Catalog struct {
	Types     ProductTypeRepo
	Links     PartLinkRepo
	Instances ProductInstanceRepo
	Recipes   ProductRecipeRepo
}

func NewCatalog(db *gorm.DB, baseLog *logger.Logger) Catalog {
	return Catalog{
		Types:     NewProductTypeRepo(db, baseLog),
		Links:     NewPartLinkRepo(db, baseLog),
		Instances: NewProductInstanceRepo(db, baseLog),
		Recipes:   NewProductRecipeRepo(db, baseLog),
	}
}
