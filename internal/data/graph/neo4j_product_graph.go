package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/platform/neo4jdb"
)

// Snapshot is the node and relationship payload of one saved product graph.
type Snapshot struct {
	Nodes   []map[string]any
	Parts   []map[string]any
	Parents []map[string]any
}

// Collect walks the graph under root once per node. Unsaved nodes are
// skipped together with the links that touch them.
func Collect(root products.ProductType, syncedAt time.Time) Snapshot {
	now := syncedAt.UTC().Format(time.RFC3339Nano)
	var snap Snapshot
	seen := map[int64]bool{}

	var walk func(t products.ProductType)
	walk = func(t products.ProductType) {
		if t == nil {
			return
		}
		b := t.Base()
		if b.ID == 0 || seen[b.ID] {
			return
		}
		seen[b.ID] = true
		snap.Nodes = append(snap.Nodes, map[string]any{
			"id":         b.ID,
			"identifier": b.Identity.Identifier,
			"revision":   int64(b.Identity.Revision),
			"name":       b.Name,
			"kind":       t.Kind(),
			"state":      b.State.String(),
			"version":    b.Version,
			"synced_at":  now,
		})

		roles := make([]string, 0, len(b.Parts))
		for _, p := range b.Parts {
			if p == nil {
				continue
			}
			l := p.Link()
			if l.Product == nil || l.Product.Base().ID == 0 {
				continue
			}
			roles = append(roles, l.Role)
			snap.Parts = append(snap.Parts, map[string]any{
				"id":        l.ID,
				"parent_id": b.ID,
				"child_id":  l.Product.Base().ID,
				"role":      l.Role,
				"kind":      p.Kind(),
				"synced_at": now,
			})
			walk(l.Product)
		}
		sort.Strings(roles)
		snap.Parents = append(snap.Parents, map[string]any{"id": b.ID, "roles": roles})
	}
	walk(root)
	return snap
}

// ProductMirror copies saved part-link topology into neo4j for traversal
// queries. A nil client turns every call into a no-op.
type ProductMirror struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewProductMirror(client *neo4jdb.Client, baseLog *logger.Logger) *ProductMirror {
	return &ProductMirror{client: client, log: baseLog.With("service", "ProductMirror")}
}

func (m *ProductMirror) Enabled() bool {
	return m != nil && m.client != nil && m.client.Driver != nil
}

func (m *ProductMirror) Mirror(ctx context.Context, root products.ProductType) error {
	if !m.Enabled() {
		return nil
	}
	return UpsertProductGraph(ctx, m.client, m.log, root)
}

func UpsertProductGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, root products.ProductType) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if root == nil || root.Base().ID == 0 {
		return fmt.Errorf("neo4j product graph sync: root not saved")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	snap := Collect(root, time.Now())

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// best-effort; may fail for restricted users
	for _, stmt := range []string{
		`CREATE CONSTRAINT product_type_id_unique IF NOT EXISTS FOR (p:ProductType) REQUIRE p.id IS UNIQUE`,
		`CREATE INDEX product_type_identity_idx IF NOT EXISTS FOR (p:ProductType) ON (p.identifier, p.revision)`,
	} {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
			continue
		}
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
UNWIND $nodes AS n
MERGE (p:ProductType {id: n.id})
SET p += n
`, map[string]any{"nodes": snap.Nodes}); err != nil {
			return nil, err
		}

		if err := run(ctx, tx, `
UNWIND $parents AS p
MATCH (a:ProductType {id: p.id})-[e:HAS_PART]->()
WHERE NOT e.role IN p.roles
DELETE e
`, map[string]any{"parents": snap.Parents}); err != nil {
			return nil, err
		}

		if len(snap.Parts) > 0 {
			if err := run(ctx, tx, `
UNWIND $parts AS r
MATCH (a:ProductType {id: r.parent_id})
MATCH (b:ProductType {id: r.child_id})
OPTIONAL MATCH (a)-[old:HAS_PART {role: r.role}]->(other)
WHERE other.id <> r.child_id
DELETE old
MERGE (a)-[e:HAS_PART {role: r.role}]->(b)
SET e.id = r.id,
    e.kind = r.kind,
    e.synced_at = r.synced_at
`, map[string]any{"parts": snap.Parts}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j product graph sync: %w", err)
	}
	if log != nil {
		log.Debug("product graph mirrored", "root_id", root.Base().ID, "nodes", len(snap.Nodes), "parts", len(snap.Parts))
	}
	return nil
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}
