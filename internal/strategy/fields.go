package strategy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
)

// Binding of one object property to one column.
type FieldBinding[T any] interface {
	Column() string
	save(obj T, row *columns.Row) error
	load(row *columns.Row, obj T) error
}

// Field binds a property of T with value type V to a column.
type Field[T any, V any] struct {
	column   string
	optional bool
	get      func(T) V
	set      func(T, V)
	put      func(*columns.Row, string, V)
	take     func(*columns.Row, string) (V, bool, error)
	check    func(V) error
}

func (f Field[T, V]) Column() string { return f.column }

// Optional lets load leave the property untouched when the column is
// absent.
func (f Field[T, V]) Optional() Field[T, V] {
	f.optional = true
	return f
}

func (f Field[T, V]) save(obj T, row *columns.Row) error {
	v := f.get(obj)
	if f.check != nil {
		if err := f.check(v); err != nil {
			return &columns.MappingError{Column: f.column, Reason: err.Error()}
		}
	}
	f.put(row, f.column, v)
	return nil
}

func (f Field[T, V]) load(row *columns.Row, obj T) error {
	v, ok, err := f.take(row, f.column)
	if err != nil {
		return err
	}
	if !ok {
		if f.optional {
			return nil
		}
		return &columns.MappingError{Column: f.column, Reason: "required column missing"}
	}
	f.set(obj, v)
	return nil
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// FloatField rejects NaN and infinities on save.
func FloatField[T any](column string, get func(T) float64, set func(T, float64)) Field[T, float64] {
	return Field[T, float64]{
		column: column, get: get, set: set,
		put: (*columns.Row).SetFloat, take: (*columns.Row).LookupFloat,
		check: func(v float64) error {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("float %v cannot be stored", v)
			}
			return nil
		},
	}
}

func IntField[T any, I integer](column string, get func(T) I, set func(T, I)) Field[T, I] {
	return Field[T, I]{
		column: column, get: get, set: set,
		put: func(r *columns.Row, c string, v I) { r.SetInt(c, int64(v)) },
		take: func(r *columns.Row, c string) (I, bool, error) {
			v, ok, err := r.LookupInt(c)
			return I(v), ok, err
		},
	}
}

func TextField[T any](column string, get func(T) string, set func(T, string)) Field[T, string] {
	return Field[T, string]{column: column, get: get, set: set, put: (*columns.Row).SetText, take: (*columns.Row).LookupText}
}

func BoolField[T any](column string, get func(T) bool, set func(T, bool)) Field[T, bool] {
	return Field[T, bool]{column: column, get: get, set: set, put: (*columns.Row).SetBool, take: (*columns.Row).LookupBool}
}

func TimeField[T any](column string, get func(T) time.Time, set func(T, time.Time)) Field[T, time.Time] {
	return Field[T, time.Time]{column: column, get: get, set: set, put: (*columns.Row).SetTime, take: (*columns.Row).LookupTime}
}

// Fields is an ordered set of property bindings for T.
type Fields[T any] []FieldBinding[T]

func (fs Fields[T]) Save(obj T, row *columns.Row) error {
	for _, f := range fs {
		if err := f.save(obj, row); err != nil {
			return err
		}
	}
	return nil
}

func (fs Fields[T]) Load(row *columns.Row, obj T) error {
	for _, f := range fs {
		if err := f.load(row, obj); err != nil {
			return err
		}
	}
	return nil
}

func withKind(err error, kind string) error {
	var me *columns.MappingError
	if errors.As(err, &me) && me.Kind == "" {
		me.Kind = kind
	}
	return err
}

func wrongObject(kind string, obj any) error {
	return &columns.MappingError{Kind: kind, Reason: fmt.Sprintf("mapper cannot handle %T", obj)}
}

type typeFields[T any] struct{ fields Fields[T] }

// TypeFields builds a TypeMapper for product types assignable to T.
func TypeFields[T any](fields ...FieldBinding[T]) TypeMapper {
	return typeFields[T]{fields: fields}
}

func (m typeFields[T]) SaveType(t products.ProductType, row *columns.Row) error {
	obj, ok := t.(T)
	if !ok {
		return wrongObject(t.Kind(), t)
	}
	return withKind(m.fields.Save(obj, row), t.Kind())
}

func (m typeFields[T]) LoadType(row *columns.Row, t products.ProductType) error {
	obj, ok := t.(T)
	if !ok {
		return wrongObject(t.Kind(), t)
	}
	return withKind(m.fields.Load(row, obj), t.Kind())
}

type instanceFields[T any] struct{ fields Fields[T] }

func InstanceFields[T any](fields ...FieldBinding[T]) InstanceMapper {
	return instanceFields[T]{fields: fields}
}

func (m instanceFields[T]) SaveInstance(i products.ProductInstance, row *columns.Row) error {
	obj, ok := i.(T)
	if !ok {
		return wrongObject(i.Kind(), i)
	}
	return withKind(m.fields.Save(obj, row), i.Kind())
}

func (m instanceFields[T]) LoadInstance(row *columns.Row, i products.ProductInstance) error {
	obj, ok := i.(T)
	if !ok {
		return wrongObject(i.Kind(), i)
	}
	return withKind(m.fields.Load(row, obj), i.Kind())
}

type linkFields[T any] struct{ fields Fields[T] }

func LinkFields[T any](fields ...FieldBinding[T]) LinkMapper {
	return linkFields[T]{fields: fields}
}

func (m linkFields[T]) SavePartLink(l products.PartLink, row *columns.Row) error {
	obj, ok := l.(T)
	if !ok {
		return wrongObject(l.Kind(), l)
	}
	return withKind(m.fields.Save(obj, row), l.Kind())
}

func (m linkFields[T]) LoadPartLink(row *columns.Row, l products.PartLink) error {
	obj, ok := l.(T)
	if !ok {
		return wrongObject(l.Kind(), l)
	}
	return withKind(m.fields.Load(row, obj), l.Kind())
}

type recipeFields[T any] struct{ fields Fields[T] }

func RecipeFields[T any](fields ...FieldBinding[T]) RecipeMapper {
	return recipeFields[T]{fields: fields}
}

func (m recipeFields[T]) SaveRecipe(r products.ProductRecipe, row *columns.Row) error {
	obj, ok := r.(T)
	if !ok {
		return wrongObject(r.Kind(), r)
	}
	return withKind(m.fields.Save(obj, row), r.Kind())
}

func (m recipeFields[T]) LoadRecipe(row *columns.Row, r products.ProductRecipe) error {
	obj, ok := r.(T)
	if !ok {
		return wrongObject(r.Kind(), r)
	}
	return withKind(m.fields.Load(row, obj), r.Kind())
}

type layeredTypes []TypeMapper

// LayerTypes runs base and derived mappers on the same row, in order.
func LayerTypes(mappers ...TypeMapper) TypeMapper { return layeredTypes(mappers) }

func (l layeredTypes) SaveType(t products.ProductType, row *columns.Row) error {
	for _, m := range l {
		if err := m.SaveType(t, row); err != nil {
			return err
		}
	}
	return nil
}

func (l layeredTypes) LoadType(row *columns.Row, t products.ProductType) error {
	for _, m := range l {
		if err := m.LoadType(row, t); err != nil {
			return err
		}
	}
	return nil
}

type layeredInstances []InstanceMapper

func LayerInstances(mappers ...InstanceMapper) InstanceMapper { return layeredInstances(mappers) }

func (l layeredInstances) SaveInstance(i products.ProductInstance, row *columns.Row) error {
	for _, m := range l {
		if err := m.SaveInstance(i, row); err != nil {
			return err
		}
	}
	return nil
}

func (l layeredInstances) LoadInstance(row *columns.Row, i products.ProductInstance) error {
	for _, m := range l {
		if err := m.LoadInstance(row, i); err != nil {
			return err
		}
	}
	return nil
}
