package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/http/response"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/services"
	"github.com/yungbote/productgraph/internal/strategy"
)

type ProductHandler struct {
	log        *logger.Logger
	products   services.ProductManagement
	strategies *strategy.Strategies
}

func NewProductHandler(log *logger.Logger, pm services.ProductManagement, strategies *strategy.Strategies) *ProductHandler {
	return &ProductHandler{
		log:        log.With("handler", "ProductHandler"),
		products:   pm,
		strategies: strategies,
	}
}

var errBadRequest = errors.New("bad request")

func parseID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// GET /api/types/:id
func (h *ProductHandler) GetType(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	t, err := h.products.LoadType(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, "load_type", err)
		return
	}
	view, err := viewType(h.strategies, t)
	if err != nil {
		respondServiceError(c, h.log, "view_type", err)
		return
	}
	response.RespondOK(c, gin.H{"type": view})
}

// parseQuery reads identifier, name, kind, subkinds and revision ("latest",
// a number, or empty for all revisions).
func parseQuery(c *gin.Context) (products.ProductQuery, error) {
	q := products.ProductQuery{
		Identifier: strings.TrimSpace(c.Query("identifier")),
		Name:       strings.TrimSpace(c.Query("name")),
		Kind:       strings.TrimSpace(c.Query("kind")),
	}
	if raw := strings.TrimSpace(c.Query("subkinds")); raw != "" {
		sub, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("%w: invalid subkinds %q", errBadRequest, raw)
		}
		q.Subkinds = sub
	}
	switch rev := strings.TrimSpace(c.Query("revision")); rev {
	case "", "all":
		q.RevisionFilter = products.RevisionAll
	case "latest":
		q.RevisionFilter = products.RevisionLatest
	default:
		n, err := strconv.Atoi(rev)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: invalid revision %q", errBadRequest, rev)
		}
		q.RevisionFilter = products.RevisionSpecific
		q.Revision = n
	}
	return q, nil
}

// GET /api/types
func (h *ProductHandler) ListTypes(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	found, err := h.products.LoadTypes(requestDBC(c), q)
	if err != nil {
		respondServiceError(c, h.log, "load_types", err)
		return
	}
	out := make([]TypeView, 0, len(found))
	for _, t := range found {
		view, err := viewType(h.strategies, t)
		if err != nil {
			respondServiceError(c, h.log, "view_type", err)
			return
		}
		out = append(out, view)
	}
	response.RespondOK(c, gin.H{"types": out})
}

// GET /api/types/:id/used-by
func (h *ProductHandler) ListUsedBy(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	parents, err := h.products.UsedBy(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, "used_by", err)
		return
	}
	out := make([]TypeView, 0, len(parents))
	for _, t := range parents {
		view, err := viewType(h.strategies, t)
		if err != nil {
			respondServiceError(c, h.log, "view_type", err)
			return
		}
		out = append(out, view)
	}
	response.RespondOK(c, gin.H{"types": out})
}

type duplicateRequest struct {
	Identifier string `json:"identifier"`
	Revision   int    `json:"revision"`
}

// POST /api/types/:id/duplicate
func (h *ProductHandler) DuplicateType(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req duplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	identity := products.NewIdentity(req.Identifier, req.Revision)
	if err := identity.Validate(); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_identity", err)
		return
	}

	dbc := requestDBC(c)
	template, err := h.products.LoadType(dbc, id)
	if err != nil {
		respondServiceError(c, h.log, "load_type", err)
		return
	}
	dup, err := h.products.Duplicate(dbc, template, identity)
	if err != nil {
		respondServiceError(c, h.log, "duplicate", err)
		return
	}
	view, err := viewType(h.strategies, dup)
	if err != nil {
		respondServiceError(c, h.log, "view_type", err)
		return
	}
	response.RespondCreated(c, gin.H{"type": view})
}

// GET /api/types/:id/recipes
func (h *ProductHandler) ListRecipes(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	classification := products.ClassificationUnset
	if raw := strings.TrimSpace(c.Query("classification")); raw != "" {
		parsed, ok := products.ParseClassification(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_classification", fmt.Errorf("%w: classification %q", errBadRequest, raw))
			return
		}
		classification = parsed
	}

	dbc := requestDBC(c)
	t, err := h.products.LoadType(dbc, id)
	if err != nil {
		respondServiceError(c, h.log, "load_type", err)
		return
	}
	recipes, err := h.products.GetRecipes(dbc, t, classification)
	if err != nil {
		respondServiceError(c, h.log, "get_recipes", err)
		return
	}
	out := make([]RecipeView, 0, len(recipes))
	for _, r := range recipes {
		view, err := viewRecipe(h.strategies, r)
		if err != nil {
			respondServiceError(c, h.log, "view_recipe", err)
			return
		}
		out = append(out, view)
	}
	response.RespondOK(c, gin.H{"recipes": out})
}

// GET /api/types/:id/instances
func (h *ProductHandler) ListInstances(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	found, err := h.products.GetInstances(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, "get_instances", err)
		return
	}
	out := make([]InstanceView, 0, len(found))
	for _, inst := range found {
		view, err := viewInstance(h.strategies, inst)
		if err != nil {
			respondServiceError(c, h.log, "view_instance", err)
			return
		}
		out = append(out, view)
	}
	response.RespondOK(c, gin.H{"instances": out})
}

// GET /api/instances/:id
func (h *ProductHandler) GetInstance(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	inst, err := h.products.GetInstance(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, h.log, "get_instance", err)
		return
	}
	view, err := viewInstance(h.strategies, inst)
	if err != nil {
		respondServiceError(c, h.log, "view_instance", err)
		return
	}
	response.RespondOK(c, gin.H{"instance": view})
}
