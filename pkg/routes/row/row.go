// Package row exposes single-row reprocessing and review edits.
package row

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Jhojannt/mapping-repo/internal/repositories/processedmapping"
	"github.com/Jhojannt/mapping-repo/pkg/context"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/rowproc"
)

var validate = validator.New()

// Register registers row routes
func Register(g *echo.Group) {
	g.POST("/:id/reprocess", ReprocessRow)
	g.PUT("/:id", UpdateRow)
}

// ReprocessRequest optionally teaches a rule before the rematch
type ReprocessRequest struct {
	EditType    string `json:"edit_type" validate:"omitempty,oneof=synonym blacklist"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Phrase      string `json:"phrase"`
}

func (r ReprocessRequest) toEdit() (models.RuleEdit, error) {
	switch models.RuleType(r.EditType) {
	case models.RuleTypeSynonym:
		if r.Original == "" || r.Replacement == "" {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "synonym edits require original and replacement")
		}
		return models.SynonymEdit{Original: r.Original, Replacement: r.Replacement}, nil
	case models.RuleTypeBlacklist:
		if r.Phrase == "" {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "blacklist edits require a phrase")
		}
		return models.BlacklistEdit{Phrase: r.Phrase}, nil
	default:
		return nil, nil
	}
}

// ReprocessResponse reports the outcome of a single-row rematch
type ReprocessResponse struct {
	Success bool               `json:"success"`
	Row     models.EnrichedRow `json:"row"`
}

// ReprocessRow re-runs one persisted row through the pipeline, optionally
// applying a new rule first
func ReprocessRow(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	rowID := c.Param("id")

	var req ReprocessRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	edit, err := req.toEdit()
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*processedmapping.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	stored, err := repo.Get(ctx, tenantID, rowID)
	if err != nil {
		return err
	}

	ctx, reprocessor, err := ectoinject.GetContext[*rowproc.Reprocessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	ok, updated := reprocessor.Reprocess(ctx, tenantID, *stored, edit)
	if ok {
		if err := reprocessor.UpdateRow(ctx, tenantID, updated); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, ReprocessResponse{Success: ok, Row: updated})
}

// UpdateRequest carries reviewer edits for a processed row
type UpdateRequest struct {
	AcceptMap string `json:"accept_map"`
	DenyMap   string `json:"deny_map"`
	Action    string `json:"action"`
	Word      string `json:"word"`
}

// UpdateRow persists reviewer edits to a processed row
func UpdateRow(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	rowID := c.Param("id")

	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*processedmapping.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	stored, err := repo.Get(ctx, tenantID, rowID)
	if err != nil {
		return err
	}

	stored.AcceptMap = req.AcceptMap
	stored.DenyMap = req.DenyMap
	stored.Action = req.Action
	stored.Word = req.Word

	ctx, reprocessor, err := ectoinject.GetContext[*rowproc.Reprocessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := reprocessor.UpdateRow(ctx, tenantID, *stored); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stored)
}
