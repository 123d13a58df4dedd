package watch

import (
	"time"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/strategy"
)

var (
	watchMapper = strategy.TypeFields[watchLike](
		strategy.FloatField("price",
			func(w watchLike) float64 { return w.watch().Price },
			func(w watchLike, v float64) { w.watch().Price = v }),
		strategy.FloatField("weight",
			func(w watchLike) float64 { return w.watch().Weight },
			func(w watchLike, v float64) { w.watch().Weight = v }),
	)

	watchfaceMapper = strategy.TypeFields[*WatchfaceProduct](
		strategy.BoolField("is_digital",
			func(f *WatchfaceProduct) bool { return f.IsDigital },
			func(f *WatchfaceProduct, v bool) { f.IsDigital = v }),
	)

	needleLinkMapper = strategy.LinkFields[*NeedlePartLink](
		strategy.IntField("hand",
			func(l *NeedlePartLink) NeedleHand { return l.Hand },
			func(l *NeedlePartLink, v NeedleHand) { l.Hand = v }),
	)

	watchInstanceMapper = strategy.InstanceFields[*WatchInstance](
		strategy.BoolField("time_set",
			func(i *WatchInstance) bool { return i.TimeSet },
			func(i *WatchInstance, v bool) { i.TimeSet = v }),
		strategy.TimeField("delivery_date",
			func(i *WatchInstance) time.Time { return i.DeliveryDate },
			func(i *WatchInstance, v time.Time) { i.DeliveryDate = v }).Optional(),
	)

	watchRecipeMapper = strategy.RecipeFields[*WatchProductRecipe](
		strategy.IntField("cores_installed",
			func(r *WatchProductRecipe) int { return r.CoresInstalled },
			func(r *WatchProductRecipe, v int) { r.CoresInstalled = v }),
		strategy.IntField("case_color_code",
			func(r *WatchProductRecipe) int { return r.Case.ColorCode },
			func(r *WatchProductRecipe, v int) { r.Case.ColorCode = v }),
		strategy.TextField("case_material",
			func(r *WatchProductRecipe) string { return r.Case.Material },
			func(r *WatchProductRecipe, v string) { r.Case.Material = v }).Optional(),
	)
)

// Declare adds the watch kinds without registering mappers, for callers
// that bind them through configuration.
func Declare(b *strategy.Builder) {
	b.Types.
		Declare(KindWatch, func() products.ProductType { return &WatchProduct{} }).
		Declare(KindSmartWatch, func() products.ProductType { return &SmartWatchProduct{} }, KindWatch).
		Declare(KindWatchface, func() products.ProductType { return &WatchfaceProduct{} }).
		Declare(KindNeedle, func() products.ProductType { return &NeedleProduct{} })
	b.Links.Declare(KindNeedleLink, func() products.PartLink { return &NeedlePartLink{} })
	b.Instances.Declare(KindWatchInstance, func() products.ProductInstance { return &WatchInstance{} })
	b.Recipes.Declare(KindWatchRecipe, func() products.ProductRecipe { return &WatchProductRecipe{} })

	b.Types.Publish(StrategyWatch, watchMapper).Publish(StrategyWatchface, watchfaceMapper)
	b.Links.Publish(StrategyNeedleLink, needleLinkMapper)
	b.Instances.Publish(StrategyInstance, watchInstanceMapper)
	b.Recipes.Publish(StrategyRecipe, watchRecipeMapper)
}

// Register declares the watch kinds and registers their mappers.
// NeedleProduct and SmartWatchProduct resolve through fallback.
func Register(b *strategy.Builder) {
	Declare(b)
	b.Types.Register(KindWatch, watchMapper).Register(KindWatchface, watchfaceMapper)
	b.Links.Register(KindNeedleLink, needleLinkMapper)
	b.Instances.Register(KindWatchInstance, watchInstanceMapper)
	b.Recipes.Register(KindWatchRecipe, watchRecipeMapper)
}

// Strategies builds a registry holding only the watch family.
func Strategies() (*strategy.Strategies, error) {
	b := strategy.NewBuilder()
	Register(b)
	return b.Build()
}
