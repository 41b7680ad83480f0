package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/exchange"
	"github.com/zulandar/swapmeet/internal/models"
	"github.com/zulandar/swapmeet/internal/notify"
	"gorm.io/gorm"
)

type createRequestBody struct {
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	Proposal   string    `json:"proposal"`
	Message    string    `json:"message"`
	ProposedAt time.Time `json:"proposed_at"`
}

func (s *server) handleCreateRequest(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	var body createRequestBody
	if !s.bind(c, &body) {
		return
	}
	req, err := exchange.Create(s.db, exchange.CreateOpts{
		RequesterID: actor,
		Target:      models.Target{Kind: models.TargetKind(body.TargetKind), ID: body.TargetID},
		Proposal:    body.Proposal,
		Note:        body.Message,
		ProposedAt:  body.ProposedAt,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.publish(notify.NewEvent(notify.EventCreated, req, actor))
	c.JSON(http.StatusCreated, req)
}

func (s *server) handleGetRequest(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	req, err := exchange.View(s.db, c.Param("id"), actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

type transitionFunc func(db *gorm.DB, id, actorID string) (*models.ExchangeRequest, error)

func (s *server) transition(fn transitionFunc, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := s.actor(c)
		if !ok {
			return
		}
		req, err := fn(s.db, c.Param("id"), actor)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.publish(notify.NewEvent(kind, req, actor))
		c.JSON(http.StatusOK, req)
	}
}

func (s *server) handleAccept(c *gin.Context) {
	s.transition(exchange.Accept, notify.EventAccepted)(c)
}

func (s *server) handleRefuse(c *gin.Context) {
	s.transition(exchange.Refuse, notify.EventRefused)(c)
}

func (s *server) handleCancel(c *gin.Context) {
	s.transition(exchange.Cancel, notify.EventCancelled)(c)
}

func (s *server) handleSent(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	reqs, err := exchange.ListSent(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (s *server) handleReceived(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	reqs, err := exchange.ListReceived(s.db, actor, c.Query("status"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (s *server) handlePendingCount(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	n, err := exchange.CountPending(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// handleCounts returns how many requests the actor sent and received,
// optionally restricted to one status.
func (s *server) handleCounts(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	status := c.Query("status")
	sent, err := exchange.CountSent(s.db, actor, status)
	if err != nil {
		s.fail(c, err)
		return
	}
	received, err := exchange.CountReceived(s.db, actor, status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent, "received": received})
}

func (s *server) handleActive(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	reqs, err := exchange.Active(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (s *server) handleCompleted(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	reqs, err := exchange.Completed(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}
