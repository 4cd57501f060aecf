package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prisonrp/ruleswiki/internal/announcements"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/permission"
)

type announcementRequest struct {
	Title            string     `json:"title" binding:"required"`
	Content          string     `json:"content" binding:"required"`
	Priority         int        `json:"priority"`
	IsActive         *bool      `json:"is_active"`
	AnnouncementType string     `json:"announcement_type"`
	ScheduledFor     *time.Time `json:"scheduled_for"`
	AutoExpireHours  *int64     `json:"auto_expire_hours"`
	Draft            bool       `json:"draft"`
}

func (req *announcementRequest) toInput() announcements.Input {
	mode := permission.ModeSubmit
	if req.Draft {
		mode = permission.ModeDraft
	}
	return announcements.Input{
		Title:            req.Title,
		Content:          req.Content,
		Priority:         req.Priority,
		IsActive:         req.IsActive,
		AnnouncementType: req.AnnouncementType,
		ScheduledFor:     req.ScheduledFor,
		AutoExpireHours:  req.AutoExpireHours,
		Mode:             mode,
	}
}

// listStaffAnnouncements handles GET /api/staff/announcements?status=
func (r *Router) listStaffAnnouncements(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}

	list, err := r.announcements.ListStaff(c.Request.Context(), status)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": list})
}

// createAnnouncement handles POST /api/staff/announcements
func (r *Router) createAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	a, err := r.announcements.Create(c.Request.Context(), req.toInput(), actor(c))
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusCreated, gin.H{"announcement": a})
}

// updateAnnouncement handles PUT /api/staff/announcements/:id
func (r *Router) updateAnnouncement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	a, err := r.announcements.Update(c.Request.Context(), id, req.toInput(), actor(c))
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"announcement": a})
}

// deleteAnnouncement handles DELETE /api/staff/announcements/:id
func (r *Router) deleteAnnouncement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.announcements.Delete(c.Request.Context(), id, actor(c)); err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// approveAnnouncement handles PUT /api/staff/announcements/:id/approve
func (r *Router) approveAnnouncement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	a, err := r.announcements.Approve(c.Request.Context(), id, actor(c), req.ReviewNotes)
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"announcement": a})
}

// rejectAnnouncement handles PUT /api/staff/announcements/:id/reject
func (r *Router) rejectAnnouncement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	a, err := r.announcements.Reject(c.Request.Context(), id, actor(c), req.ReviewNotes)
	if err != nil {
		abortError(c, err)
		return
	}

	r.invalidatePublicCache()
	c.JSON(http.StatusOK, gin.H{"announcement": a})
}
