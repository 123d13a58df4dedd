// Package storage loads and saves product graphs, instances and recipes
// through the resolved mapping strategies. Every public operation runs in
// one database transaction; a failure anywhere rolls back the whole graph
// and leaves the caller's objects untouched.
package storage

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/data/repos"
	"github.com/yungbote/productgraph/internal/observability"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/strategy"
)

type ProductStorage struct {
	db         *gorm.DB
	log        *logger.Logger
	strategies *strategy.Strategies
	repos      repos.Catalog
	tracer     trace.Tracer
}

func New(db *gorm.DB, baseLog *logger.Logger, strategies *strategy.Strategies, catalog repos.Catalog) *ProductStorage {
	return &ProductStorage{
		db:         db,
		log:        baseLog.With("service", "ProductStorage"),
		strategies: strategies,
		repos:      catalog,
		tracer:     otel.Tracer("productgraph/storage"),
	}
}

func (s *ProductStorage) Strategies() *strategy.Strategies { return s.strategies }

// inTx runs fn in a transaction, nested as a savepoint when dbc already
// carries one. Functions queued on commit run only after success.
func (s *ProductStorage) inTx(dbc dbctx.Context, op string, fn func(dbc dbctx.Context, onCommit func(func())) error) error {
	ctx, span := s.tracer.Start(dbc.Context(), "storage."+op)
	defer span.End()
	start := time.Now()

	var applied []func()
	onCommit := func(f func()) { applied = append(applied, f) }

	base := dbc.Tx
	if base == nil {
		base = s.db
	}
	err := base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx}, onCommit)
	})

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Debug("storage operation failed", "op", op, "error", err)
	} else {
		for _, f := range applied {
			f()
		}
	}
	span.SetAttributes(attribute.String("storage.status", status))
	observability.Current().ObserveStorage(op, status, time.Since(start))
	return err
}

func encodeRow(row *columns.Row, kind string) (datatypes.JSON, error) {
	raw, err := row.Encode()
	if err != nil {
		return nil, withKind(fmt.Errorf("encode columns: %w", err), kind)
	}
	return datatypes.JSON(raw), nil
}

// sameColumns compares a stored document with a freshly mapped row by
// content, so formatting applied by the database does not count as change.
func sameColumns(stored datatypes.JSON, row *columns.Row) bool {
	decoded, err := columns.Decode(stored)
	if err != nil {
		return false
	}
	return decoded.Equal(row)
}
