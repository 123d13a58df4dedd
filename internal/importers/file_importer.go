package importers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/productgraph/internal/columns"
	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/strategy"
)

const (
	ParamPath      = "path"
	ParamRootsOnly = "roots_only"
)

// FileImporter reads product documents from YAML files:
//
//	types:
//	  - kind: WatchProduct
//	    identifier: W-1
//	    revision: 1
//	    name: Classic
//	    columns: {price: 99.5, weight: 0.2}
//	    parts:
//	      - role: Watchface
//	        identifier: F-1
//	        revision: 1
//
// Parts reference other entries of the same document. Column values go
// through the kind's mapper, so documents use the stored column names.
type FileImporter struct {
	name       string
	baseDir    string
	strategies *strategy.Strategies
	log        *logger.Logger
}

func NewFileImporter(name, baseDir string, strategies *strategy.Strategies, baseLog *logger.Logger) *FileImporter {
	if name == "" {
		name = "file"
	}
	return &FileImporter{
		name:       name,
		baseDir:    baseDir,
		strategies: strategies,
		log:        baseLog.With("importer", name),
	}
}

func (f *FileImporter) Name() string { return f.name }

func (f *FileImporter) Parameters() Parameters {
	return Parameters{ParamPath: "", ParamRootsOnly: "true"}
}

func (f *FileImporter) Update(current Parameters) (Parameters, error) {
	out := f.Parameters()
	for k, v := range current {
		if _, known := out[k]; !known {
			return nil, fmt.Errorf("importer %s: unknown parameter %q", f.name, k)
		}
		out[k] = strings.TrimSpace(v)
	}
	if _, err := strconv.ParseBool(out[ParamRootsOnly]); err != nil {
		return nil, fmt.Errorf("importer %s: %s must be a bool: %w", f.name, ParamRootsOnly, err)
	}
	if p := out[ParamPath]; p != "" && !filepath.IsAbs(p) && f.baseDir != "" {
		out[ParamPath] = filepath.Join(f.baseDir, p)
	}
	return out, nil
}

func (f *FileImporter) Import(ctx context.Context, params Parameters) ([]products.ProductType, error) {
	params, err := f.Update(params)
	if err != nil {
		return nil, err
	}
	path := params[ParamPath]
	if path == "" {
		return nil, fmt.Errorf("importer %s: %s is required", f.name, ParamPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer %s: %w", f.name, err)
	}
	rootsOnly, _ := strconv.ParseBool(params[ParamRootsOnly])

	importID := uuid.New()
	out, err := f.Parse(raw, rootsOnly)
	if err != nil {
		f.log.Warn("import failed", "import_id", importID.String(), "path", path, "error", err)
		return nil, err
	}
	f.log.Info("import parsed", "import_id", importID.String(), "path", path, "types", len(out))
	return out, nil
}

type document struct {
	Types []typeEntry `yaml:"types"`
}

type typeEntry struct {
	Kind       string         `yaml:"kind"`
	Identifier string         `yaml:"identifier"`
	Revision   int            `yaml:"revision"`
	Name       string         `yaml:"name"`
	State      string         `yaml:"state"`
	Columns    map[string]any `yaml:"columns"`
	Parts      []partEntry    `yaml:"parts"`
}

type partEntry struct {
	Role       string         `yaml:"role"`
	Kind       string         `yaml:"kind"`
	Identifier string         `yaml:"identifier"`
	Revision   int            `yaml:"revision"`
	Columns    map[string]any `yaml:"columns"`
}

// Parse builds the graphs described by raw. With rootsOnly, types that are
// only reached as parts are left out of the result.
func (f *FileImporter) Parse(raw []byte, rootsOnly bool) ([]products.ProductType, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse product document: %w", err)
	}

	byIdentity := make(map[products.ProductIdentity]products.ProductType, len(doc.Types))
	built := make([]products.ProductType, 0, len(doc.Types))
	for i, e := range doc.Types {
		t, err := f.buildType(e)
		if err != nil {
			return nil, fmt.Errorf("type %d (%s): %w", i, e.Identifier, err)
		}
		id := t.Base().Identity
		if _, dup := byIdentity[id]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", products.ErrInvalidGraph, id)
		}
		byIdentity[id] = t
		built = append(built, t)
	}

	referenced := map[products.ProductIdentity]bool{}
	for i, e := range doc.Types {
		parent := built[i]
		for _, p := range e.Parts {
			link, err := f.buildLink(p, byIdentity)
			if err != nil {
				return nil, fmt.Errorf("type %s part %q: %w", parent.Base().Identity, p.Role, err)
			}
			if parent.Base().Part(link.Link().Role) != nil {
				return nil, fmt.Errorf("%w: duplicate role %q on %s", products.ErrInvalidGraph, p.Role, parent.Base().Identity)
			}
			link.Link().Parent = parent
			parent.Base().SetPart(link.Link().Role, link)
			if link.Link().Product != parent {
				referenced[link.Link().Product.Base().Identity] = true
			}
		}
	}

	if !rootsOnly {
		return built, nil
	}
	roots := make([]products.ProductType, 0, len(built))
	for _, t := range built {
		if !referenced[t.Base().Identity] {
			roots = append(roots, t)
		}
	}
	if len(roots) == 0 {
		return built, nil
	}
	return roots, nil
}

func (f *FileImporter) buildType(e typeEntry) (products.ProductType, error) {
	kinds := f.strategies.Types()
	t, err := kinds.New(e.Kind)
	if err != nil {
		return nil, err
	}
	mapper, err := kinds.Resolve(e.Kind)
	if err != nil {
		return nil, err
	}
	cols, err := columns.FromMap(e.Columns)
	if err != nil {
		return nil, err
	}
	if err := mapper.LoadType(cols, t); err != nil {
		return nil, err
	}
	state, err := products.ParseProductState(e.State)
	if err != nil {
		return nil, err
	}
	base := t.Base()
	base.Identity = products.NewIdentity(e.Identifier, e.Revision)
	if err := base.Identity.Validate(); err != nil {
		return nil, err
	}
	base.Name = e.Name
	base.State = state
	return t, nil
}

func (f *FileImporter) buildLink(p partEntry, byIdentity map[products.ProductIdentity]products.ProductType) (products.PartLink, error) {
	kind := p.Kind
	if kind == "" {
		kind = products.KindSimpleLink
	}
	kinds := f.strategies.Links()
	link, err := kinds.New(kind)
	if err != nil {
		return nil, err
	}
	mapper, err := kinds.Resolve(kind)
	if err != nil {
		return nil, err
	}
	cols, err := columns.FromMap(p.Columns)
	if err != nil {
		return nil, err
	}
	if err := mapper.LoadPartLink(cols, link); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(p.Role)
	if role == "" {
		return nil, fmt.Errorf("%w: empty role", products.ErrInvalidGraph)
	}
	child, ok := byIdentity[products.NewIdentity(p.Identifier, p.Revision)]
	if !ok {
		return nil, fmt.Errorf("%w: part references unknown type %s", products.ErrInvalidGraph, products.NewIdentity(p.Identifier, p.Revision))
	}
	link.Link().Role = role
	link.Link().Product = child
	return link, nil
}
