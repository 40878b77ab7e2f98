// Package batch exposes batch processing and result browsing.
package batch

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Jhojannt/mapping-repo/internal/repositories/processedmapping"
	"github.com/Jhojannt/mapping-repo/pkg/context"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/processor"
)

var validate = validator.New()

const defaultListLimit = 100

// Register registers batch routes
func Register(g *echo.Group) {
	g.POST("/process", ProcessBatch)
	g.GET("/:id/rows", ListBatchRows)
	g.GET("/rows", ListRecentRows)
}

// ProcessRequest is the request body for a batch run
type ProcessRequest struct {
	Rows     []models.InputRow `json:"rows" validate:"required,min=1,dive"`
	Override *models.RuleSet   `json:"override"`
}

// ProcessResponse carries the enriched rows and the batch summary
type ProcessResponse struct {
	Rows    []models.EnrichedRow `json:"rows"`
	Summary models.BatchSummary  `json:"summary"`
}

// ProcessBatch runs a batch of vendor rows through the matching pipeline
func ProcessBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, orchestrator, err := ectoinject.GetContext[*processor.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rows, summary, err := orchestrator.Process(ctx, tenantID, req.Rows, req.Override, nil)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProcessResponse{Rows: rows, Summary: summary})
}

// ListBatchRows returns the persisted rows of one batch
func ListBatchRows(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	batchID := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*processedmapping.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rows, err := repo.ListByBatch(ctx, tenantID, batchID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rows)
}

// ListRecentRows returns the tenant's most recently processed rows
func ListRecentRows(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	ctx, repo, err := ectoinject.GetContext[*processedmapping.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rows, err := repo.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rows)
}
