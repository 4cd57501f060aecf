package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prisonrp/ruleswiki/internal/staff"
)

type staffUserRequest struct {
	SteamID         string `json:"steam_id"`
	DiscordID       string `json:"discord_id"`
	Username        string `json:"username" binding:"required"`
	PermissionLevel string `json:"permission_level" binding:"required"`
	IsActive        *bool  `json:"is_active"`
}

func (req *staffUserRequest) toInput() staff.Input {
	return staff.Input{
		SteamID:         req.SteamID,
		DiscordID:       req.DiscordID,
		Username:        req.Username,
		PermissionLevel: req.PermissionLevel,
		IsActive:        req.IsActive,
	}
}

// listStaffUsers handles GET /api/staff/users
func (r *Router) listStaffUsers(c *gin.Context) {
	list, err := r.staff.List(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

// createStaffUser handles POST /api/staff/users
func (r *Router) createStaffUser(c *gin.Context) {
	var req staffUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and permission_level are required"})
		return
	}

	user, err := r.staff.Create(c.Request.Context(), req.toInput(), actor(c))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// updateStaffUser handles PUT /api/staff/users/:id
func (r *Router) updateStaffUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req staffUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and permission_level are required"})
		return
	}

	user, err := r.staff.Update(c.Request.Context(), id, req.toInput(), actor(c))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// deactivateStaffUser handles DELETE /api/staff/users/:id
func (r *Router) deactivateStaffUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.staff.Deactivate(c.Request.Context(), id, actor(c)); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": id})
}

// listActivity handles GET /api/staff/activity?limit=
func (r *Router) listActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	entries, err := r.recorder.Recent(c.Request.Context(), limit)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
