package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prisonrp/ruleswiki/internal/categories"
)

// listStaffCategories handles GET /api/staff/categories
func (r *Router) listStaffCategories(c *gin.Context) {
	cats, err := r.categories.ListStaff(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// createCategory handles POST /api/staff/categories
func (r *Router) createCategory(c *gin.Context) {
	var req categories.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category payload"})
		return
	}

	cat, err := r.categories.Create(c.Request.Context(), req, actor(c).ID)
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

// updateCategory handles PUT /api/staff/categories/:id
func (r *Router) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req categories.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category payload"})
		return
	}

	cat, err := r.categories.Update(c.Request.Context(), id, req, actor(c).ID)
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

// deleteCategory handles DELETE /api/staff/categories/:id. Categories that
// still own rules are refused with 409.
func (r *Router) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.categories.Delete(c.Request.Context(), id, actor(c).ID); err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// reorderCategories handles POST /api/staff/categories/reorder
func (r *Router) reorderCategories(c *gin.Context) {
	var req struct {
		CategoryOrder []categories.OrderEntry `json:"categoryOrder" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "categoryOrder is required"})
		return
	}

	if err := r.categories.Reorder(c.Request.Context(), req.CategoryOrder, actor(c).ID); err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"reordered": len(req.CategoryOrder)})
}
