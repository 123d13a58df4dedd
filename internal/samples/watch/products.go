// Package watch is a small product family used by the demo application and
// the tests: a watch composed of a watchface and needles, its instance kind
// and its recipe kind.
package watch

import (
	"time"

	"github.com/yungbote/productgraph/internal/domain/products"
)

const (
	KindWatch          = "WatchProduct"
	KindSmartWatch     = "SmartWatchProduct"
	KindWatchface      = "WatchfaceProduct"
	KindNeedle         = "NeedleProduct"
	KindNeedleLink     = "NeedlePartLink"
	KindWatchInstance  = "WatchInstance"
	KindWatchRecipe    = "WatchProductRecipe"
	RoleWatchface      = "Watchface"
	RoleNeedlePrefix   = "Needles"
	StrategyWatch      = "watch.product"
	StrategyWatchface  = "watch.face"
	StrategyNeedleLink = "watch.needle_link"
	StrategyInstance   = "watch.instance"
	StrategyRecipe     = "watch.recipe"
)

type WatchProduct struct {
	products.TypeBase
	Price  float64
	Weight float64
}

func (*WatchProduct) Kind() string { return KindWatch }

func (w *WatchProduct) watch() *WatchProduct { return w }

func (w *WatchProduct) Watchface() *WatchfaceProduct {
	link := w.Part(RoleWatchface)
	if link == nil {
		return nil
	}
	face, _ := link.Link().Product.(*WatchfaceProduct)
	return face
}

func (w *WatchProduct) SetWatchface(face *WatchfaceProduct) {
	if face == nil {
		w.RemovePart(RoleWatchface)
		return
	}
	w.SetPart(RoleWatchface, products.NewSimpleLink(RoleWatchface, face))
}

// Needles returns the needle links in index order.
func (w *WatchProduct) Needles() []*NeedlePartLink {
	var out []*NeedlePartLink
	for _, p := range w.IndexedParts(RoleNeedlePrefix) {
		if n, ok := p.(*NeedlePartLink); ok {
			out = append(out, n)
		}
	}
	return out
}

func (w *WatchProduct) AddNeedle(hand NeedleHand, needle *NeedleProduct) *NeedlePartLink {
	link := &NeedlePartLink{Hand: hand}
	link.Product = needle
	w.SetPart(products.IndexedRole(RoleNeedlePrefix, w.NextIndex(RoleNeedlePrefix)), link)
	return link
}

func (w *WatchProduct) CreateInstance() products.ProductInstance {
	return &WatchInstance{}
}

// watchLike matches WatchProduct and the kinds embedding it.
type watchLike interface {
	products.ProductType
	watch() *WatchProduct
}

// SmartWatchProduct has no mapper of its own and is stored through the
// WatchProduct mapper.
type SmartWatchProduct struct {
	WatchProduct
}

func (*SmartWatchProduct) Kind() string { return KindSmartWatch }

type WatchfaceProduct struct {
	products.TypeBase
	IsDigital bool
}

func (*WatchfaceProduct) Kind() string { return KindWatchface }

type NeedleProduct struct {
	products.TypeBase
}

func (*NeedleProduct) Kind() string { return KindNeedle }

type NeedleHand int

const (
	HandHours NeedleHand = iota
	HandMinutes
	HandSeconds
)

type NeedlePartLink struct {
	products.LinkBase
	Hand NeedleHand
}

func (*NeedlePartLink) Kind() string { return KindNeedleLink }

type WatchInstance struct {
	products.InstanceBase
	TimeSet      bool
	DeliveryDate time.Time
}

func (*WatchInstance) Kind() string { return KindWatchInstance }

type WatchCase struct {
	ColorCode int
	Material  string
}

type WatchProductRecipe struct {
	products.RecipeBase
	CoresInstalled int
	Case           WatchCase
}

func (*WatchProductRecipe) Kind() string { return KindWatchRecipe }
