package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prisonrp/ruleswiki/internal/cache"
	"github.com/prisonrp/ruleswiki/internal/models"
)

// publicCacheTTL keeps public reads fresh enough for a rules site while
// absorbing repeated page loads.
const publicCacheTTL = 60 * time.Second

// listPublicCategories handles GET /api/categories
func (r *Router) listPublicCategories(c *gin.Context) {
	key := "public:" + cache.HashKey("categories")
	if r.serveCached(c, key) {
		return
	}

	cats, err := r.categories.ListPublic(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	r.respondCached(c, key, gin.H{"categories": cats})
}

// listPublicRules handles GET /api/rules?category={letter}
func (r *Router) listPublicRules(c *gin.Context) {
	letter := c.Query("category")
	if letter == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category query parameter is required"})
		return
	}

	key := "public:" + cache.HashKey("rules", letter)
	if r.serveCached(c, key) {
		return
	}

	ruleList, err := r.rules.ListPublic(c.Request.Context(), letter)
	if err != nil {
		abortError(c, err)
		return
	}
	r.respondCached(c, key, gin.H{"rules": ruleList})
}

// getPublicRule handles GET /api/rules/:id — an approved rule with its
// cross-references, for deep links shared in Discord.
func (r *Router) getPublicRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	rule, err := r.rules.Get(c.Request.Context(), id)
	if err != nil {
		abortError(c, err)
		return
	}
	if rule.Status != models.StatusApproved {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	refs, err := r.rules.GetCrossReferences(c.Request.Context(), id)
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule, "cross_references": refs})
}

// listPublicAnnouncements handles GET /api/announcements
func (r *Router) listPublicAnnouncements(c *gin.Context) {
	key := "public:" + cache.HashKey("announcements")
	if r.serveCached(c, key) {
		return
	}

	list, err := r.announcements.ListPublic(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	r.respondCached(c, key, gin.H{"announcements": list})
}

// serveCached replies from the cache when possible.
func (r *Router) serveCached(c *gin.Context, key string) bool {
	body, err := r.cache.Get(key)
	if err != nil {
		return false
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
	return true
}

// respondCached sends the payload and stores it for subsequent reads.
func (r *Router) respondCached(c *gin.Context, key string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		abortError(c, err)
		return
	}
	if err := r.cache.Set(key, string(body), publicCacheTTL); err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("Failed to store cached response")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
