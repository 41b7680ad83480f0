package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/messaging"
)

type sendBody struct {
	Content string `json:"content"`
}

func (s *server) handleSend(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	var body sendBody
	if !s.bind(c, &body) {
		return
	}
	msg, err := messaging.Send(s.db, c.Param("id"), actor, body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *server) handleHistory(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	msgs, err := messaging.History(s.db, c.Param("id"), actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *server) handleMarkRead(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	n, err := messaging.MarkRead(s.db, c.Param("id"), actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

func (s *server) handleUnreadCount(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	n, err := messaging.UnreadCount(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
