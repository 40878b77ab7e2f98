// Package rules exposes tenant rewrite rule management.
package rules

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Jhojannt/mapping-repo/pkg/context"
	"github.com/Jhojannt/mapping-repo/pkg/events"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	rulestore "github.com/Jhojannt/mapping-repo/pkg/rules"
)

var validate = validator.New()

// Register registers rule routes
func Register(g *echo.Group) {
	g.GET("", GetRules)
	g.PUT("", ReplaceRules)
	g.POST("/edits", ApplyEdit)
}

// GetRules returns the tenant's active rule set
func GetRules(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	ctx, store, err := ectoinject.GetContext[*rulestore.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rs, err := store.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rs)
}

// ReplaceRulesRequest is the request body for a full rule set replace
type ReplaceRulesRequest struct {
	Synonyms  map[string]string `json:"synonyms"`
	Blacklist []string          `json:"blacklist"`
	Version   int64             `json:"version" validate:"gte=0"`
}

// ReplaceRules swaps the tenant's full rule set
func ReplaceRules(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req ReplaceRulesRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rs := models.NewRuleSet()
	for k, v := range req.Synonyms {
		rs.Synonyms[k] = v
	}
	rs.Blacklist = append(rs.Blacklist, req.Blacklist...)

	ctx, store, err := ectoinject.GetContext[*rulestore.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := store.Replace(ctx, tenantID, rs, req.Version); err != nil {
		if errors.Is(err, rulestore.ErrVersionConflict) {
			return httperror.NewHTTPError(http.StatusConflict, "rule set was modified by another writer, re-read and retry")
		}
		return err
	}

	emitRulesUpdated(c, tenantID, req.Version+1)

	rs.Version = req.Version + 1
	return c.JSON(http.StatusOK, rs)
}

// RuleEditRequest is the request body for a single rule addition
type RuleEditRequest struct {
	Type        string `json:"type" validate:"required,oneof=synonym blacklist"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Phrase      string `json:"phrase"`
}

func (r RuleEditRequest) toEdit() (models.RuleEdit, error) {
	switch models.RuleType(r.Type) {
	case models.RuleTypeSynonym:
		if r.Original == "" || r.Replacement == "" {
			return nil, errors.New("synonym edits require original and replacement")
		}
		return models.SynonymEdit{Original: r.Original, Replacement: r.Replacement}, nil
	case models.RuleTypeBlacklist:
		if r.Phrase == "" {
			return nil, errors.New("blacklist edits require a phrase")
		}
		return models.BlacklistEdit{Phrase: r.Phrase}, nil
	default:
		return nil, errors.New("unknown edit type")
	}
}

// ApplyEdit folds one rule addition into the tenant's rule set
func ApplyEdit(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req RuleEditRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	edit, err := req.toEdit()
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, store, err := ectoinject.GetContext[*rulestore.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rs, err := store.ApplyEdit(ctx, tenantID, edit)
	if err != nil {
		if errors.Is(err, rulestore.ErrVersionConflict) {
			return httperror.NewHTTPError(http.StatusConflict, "rule set is under heavy modification, retry")
		}
		return err
	}

	emitRulesUpdated(c, tenantID, rs.Version)

	return c.JSON(http.StatusOK, rs)
}

// emitRulesUpdated publishes the change event when an emitter is wired.
func emitRulesUpdated(c echo.Context, tenantID string, version int64) {
	ctx := c.Request().Context()
	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err != nil || emitter == nil {
		return
	}
	_ = emitter.RulesUpdated(ctx, tenantID, version)
}
