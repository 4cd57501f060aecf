package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prisonrp/ruleswiki/internal/announcements"
	"github.com/prisonrp/ruleswiki/internal/categories"
	"github.com/prisonrp/ruleswiki/internal/rules"
	"github.com/prisonrp/ruleswiki/internal/staff"
	"github.com/prisonrp/ruleswiki/internal/validation"
	"github.com/prisonrp/ruleswiki/internal/workflow"
)

// abortError translates service errors into HTTP responses. Validation
// failures map to 400, authorization failures to 403, unknown resources to
// 404, conflicts to 409; anything else is a 500 with a generic message so
// storage errors never leak driver details to clients.
func abortError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rules.ErrNotFound),
		errors.Is(err, rules.ErrCategoryNotFound),
		errors.Is(err, rules.ErrReferenceNotFound),
		errors.Is(err, categories.ErrNotFound),
		errors.Is(err, announcements.ErrNotFound),
		errors.Is(err, staff.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, workflow.ErrInsufficientLevel),
		errors.Is(err, staff.ErrCannotManage):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, rules.ErrDuplicateReference),
		errors.Is(err, categories.ErrLetterTaken),
		errors.Is(err, categories.ErrInUse),
		errors.Is(err, rules.ErrHasSubRules),
		errors.Is(err, staff.ErrIdentityTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, workflow.ErrNotesRequired),
		errors.Is(err, workflow.ErrNotPending),
		errors.Is(err, rules.ErrSelfReference),
		errors.Is(err, rules.ErrParentNotMainRule),
		errors.Is(err, rules.ErrParentCategoryMismatch),
		errors.Is(err, categories.ErrInvalidLetter),
		errors.Is(err, announcements.ErrScheduleRequired),
		errors.Is(err, staff.ErrInvalidSteamID),
		errors.Is(err, staff.ErrIdentityRequired),
		errors.Is(err, staff.ErrSelfDeactivation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
