package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productgraph/internal/http/response"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/apierr"
	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/services"
	"github.com/yungbote/productgraph/internal/strategy"
)

type ImporterHandler struct {
	log        *logger.Logger
	products   services.ProductManagement
	strategies *strategy.Strategies
}

func NewImporterHandler(log *logger.Logger, pm services.ProductManagement, strategies *strategy.Strategies) *ImporterHandler {
	return &ImporterHandler{
		log:        log.With("handler", "ImporterHandler"),
		products:   pm,
		strategies: strategies,
	}
}

// GET /api/importers
func (h *ImporterHandler) ListImporters(c *gin.Context) {
	params := h.products.Importers()
	out := make([]ImporterView, 0, len(params))
	for name, p := range params {
		out = append(out, ImporterView{Name: name, Parameters: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	response.RespondOK(c, gin.H{"importers": out})
}

type importRequest struct {
	Parameters importers.Parameters `json:"parameters"`
}

// POST /api/importers/:name
func (h *ImporterHandler) RunImport(c *gin.Context) {
	var req importRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	imported, err := h.products.ImportTypes(requestDBC(c), c.Param("name"), req.Parameters)
	if err != nil {
		if status, _ := errorStatus(err); status == http.StatusInternalServerError {
			// importer input problems surface as plain errors
			err = apierr.New(http.StatusUnprocessableEntity, "import_failed", err)
		}
		h.log.Warn("import failed", "importer", c.Param("name"), "error", err)
		respondServiceError(c, h.log, "import", err)
		return
	}
	out := make([]TypeView, 0, len(imported))
	for _, t := range imported {
		view, err := viewType(h.strategies, t)
		if err != nil {
			respondServiceError(c, h.log, "view_type", err)
			return
		}
		out = append(out, view)
	}
	response.RespondCreated(c, gin.H{"types": out})
}
