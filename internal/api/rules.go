package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/permission"
	"github.com/prisonrp/ruleswiki/internal/rules"
)

// ruleRequest is the write payload for rules. A client-supplied status field
// is deliberately absent: status is computed from the actor's permission
// level and the chosen mode.
type ruleRequest struct {
	Title        string             `json:"title" binding:"required"`
	Content      string             `json:"content" binding:"required"`
	CategoryID   int64              `json:"categoryId" binding:"required"`
	ParentRuleID *int64             `json:"parentRuleId"`
	Images       []models.RuleImage `json:"images"`
	Draft        bool               `json:"draft"`
}

func (req *ruleRequest) toInput() rules.Input {
	mode := permission.ModeSubmit
	if req.Draft {
		mode = permission.ModeDraft
	}
	return rules.Input{
		Title:        req.Title,
		Content:      req.Content,
		CategoryID:   req.CategoryID,
		ParentRuleID: req.ParentRuleID,
		Images:       req.Images,
		Mode:         mode,
	}
}

type reviewRequest struct {
	ReviewNotes string `json:"reviewNotes"`
}

// listStaffRules handles GET /api/staff/rules?status=&category=
func (r *Router) listStaffRules(c *gin.Context) {
	var categoryID int64
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category filter"})
			return
		}
		categoryID = id
	}
	status := c.Query("status")
	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}

	list, err := r.rules.ListStaff(c.Request.Context(), status, categoryID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": list})
}

// createRule handles POST /api/staff/rules
func (r *Router) createRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, content and categoryId are required"})
		return
	}

	rule, err := r.rules.Create(c.Request.Context(), req.toInput(), actor(c))
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// updateRule handles PUT /api/staff/rules/:id
func (r *Router) updateRule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, content and categoryId are required"})
		return
	}

	rule, err := r.rules.Update(c.Request.Context(), id, req.toInput(), actor(c))
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// deleteRule handles DELETE /api/staff/rules/:id
func (r *Router) deleteRule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.rules.Delete(c.Request.Context(), id, actor(c)); err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// approveRule handles PUT /api/staff/rules/:id/approve
func (r *Router) approveRule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req) // notes are optional on approval

	rule, err := r.rules.Approve(c.Request.Context(), id, actor(c), req.ReviewNotes)
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// rejectRule handles PUT /api/staff/rules/:id/reject
func (r *Router) rejectRule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	rule, err := r.rules.Reject(c.Request.Context(), id, actor(c), req.ReviewNotes)
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// listCrossReferences handles GET /api/rules/:id/cross-references
func (r *Router) listCrossReferences(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	refs, err := r.rules.GetCrossReferences(c.Request.Context(), id)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cross_references": refs})
}

// addCrossReference handles POST /api/rules/:id/cross-references
func (r *Router) addCrossReference(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req rules.ReferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_rule_id and reference_type are required"})
		return
	}

	ref, err := r.rules.AddCrossReference(c.Request.Context(), id, req, actor(c))
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusCreated, gin.H{"cross_reference": ref})
}

// removeCrossReference handles DELETE /api/rules/:id/cross-references/:refId
func (r *Router) removeCrossReference(c *gin.Context) {
	refID, ok := pathID(c, "refId")
	if !ok {
		return
	}

	if err := r.rules.RemoveCrossReference(c.Request.Context(), refID, actor(c)); err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"deleted": refID})
}

// pathID parses a numeric path parameter, replying 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
