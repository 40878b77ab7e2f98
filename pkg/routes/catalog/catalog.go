// Package catalog exposes the tenant product catalog.
package catalog

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Jhojannt/mapping-repo/internal/repositories/productcatalog"
	"github.com/Jhojannt/mapping-repo/pkg/context"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/rowproc"
)

var validate = validator.New()

// Register registers catalog routes
func Register(g *echo.Group) {
	g.GET("", ListCatalog)
	g.POST("/staging", CreateStaging)
}

// ListCatalog returns the tenant's catalog entries
func ListCatalog(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	ctx, repo, err := ectoinject.GetContext[*productcatalog.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entries, err := repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entries)
}

// StagingResponse reports the outcome of a staging insert
type StagingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateStaging inserts a reviewer-approved entry under the staging sentinel
func CreateStaging(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var attrs models.CatalogAttributes
	if err := c.Bind(&attrs); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(attrs); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, reprocessor, err := ectoinject.GetContext[*rowproc.Reprocessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	ok, message := reprocessor.SaveAsStaging(ctx, tenantID, attrs, context.GetUserID(ctx))
	status := http.StatusCreated
	if !ok {
		status = http.StatusUnprocessableEntity
	}

	return c.JSON(status, StagingResponse{Success: ok, Message: message})
}
