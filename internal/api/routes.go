package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/fault"
)

// registerRoutes sets up every API route on the gin router.
func (s *server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Exchange requests.
	api.POST("/requests", s.handleCreateRequest)
	api.GET("/requests/:id", s.handleGetRequest)
	api.POST("/requests/:id/accept", s.handleAccept)
	api.POST("/requests/:id/refuse", s.handleRefuse)
	api.POST("/requests/:id/cancel", s.handleCancel)

	// Messaging.
	api.GET("/requests/:id/messages", s.handleHistory)
	api.POST("/requests/:id/messages", s.handleSend)
	api.POST("/requests/:id/messages/read", s.handleMarkRead)

	// Reviews.
	api.GET("/requests/:id/reviews", s.handleRequestReviews)
	api.POST("/requests/:id/reviews", s.handleSubmitReview)
	api.PUT("/reviews/:id", s.handleEditReview)
	api.DELETE("/reviews/:id", s.handleDeleteReview)
	api.GET("/reviews", s.handlePublicReviews)
	api.GET("/users/:id/reviews", s.handleUserReviews)
	api.GET("/users/:id/stats", s.handleUserStats)

	// The acting user's dashboards.
	me := api.Group("/me")
	me.GET("/requests/sent", s.handleSent)
	me.GET("/requests/received", s.handleReceived)
	me.GET("/requests/pending-count", s.handlePendingCount)
	me.GET("/requests/counts", s.handleCounts)
	me.GET("/exchanges/active", s.handleActive)
	me.GET("/exchanges/completed", s.handleCompleted)
	me.GET("/messages/unread-count", s.handleUnreadCount)
	me.GET("/reviews/received", s.handleMyReviewsReceived)
	me.GET("/reviews/given", s.handleMyReviewsGiven)
}

// bind decodes the JSON body into v, writing a Validation response on
// malformed input.
func (s *server) bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, fault.Validation("malformed request body: %v", err))
		return false
	}
	return true
}

func (s *server) reviewID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		s.fail(c, fault.Validation("invalid review id %q", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}

func (s *server) intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.fail(c, fault.Validation("%s must be an integer", key))
		return 0, false
	}
	return n, true
}
