package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/exchange"
	"github.com/zulandar/swapmeet/internal/notify"
	"github.com/zulandar/swapmeet/internal/review"
)

type reviewBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *server) handleSubmitReview(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	var body reviewBody
	if !s.bind(c, &body) {
		return
	}
	res, err := review.Submit(s.db, review.SubmitOpts{
		RequestID: c.Param("id"),
		AuthorID:  actor,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	if req, err := exchange.Get(s.db, res.Review.RequestID); err == nil {
		evt := notify.NewEvent(notify.EventReviewed, req, actor)
		evt.Rating = res.Review.Rating
		s.publish(evt)
		if res.Completed {
			s.publish(notify.NewEvent(notify.EventCompleted, req, actor))
		}
	}
	c.JSON(http.StatusCreated, gin.H{"review": res.Review, "completed": res.Completed})
}

func (s *server) handleEditReview(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	id, ok := s.reviewID(c)
	if !ok {
		return
	}
	var body reviewBody
	if !s.bind(c, &body) {
		return
	}
	rev, err := review.Edit(s.db, id, actor, body.Rating, body.Comment)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

func (s *server) handleDeleteReview(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	id, ok := s.reviewID(c)
	if !ok {
		return
	}
	if err := review.Delete(s.db, id, actor); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) handleRequestReviews(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	if _, err := exchange.View(s.db, c.Param("id"), actor); err != nil {
		s.fail(c, err)
		return
	}
	revs, err := review.ForRequest(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, revs)
}

func (s *server) handlePublicReviews(c *gin.Context) {
	minRating, ok := s.intQuery(c, "min_rating")
	if !ok {
		return
	}
	revs, err := review.Public(s.db, review.PublicFilter{MinRating: minRating, Query: c.Query("q")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, revs)
}

func (s *server) handleUserReviews(c *gin.Context) {
	limit, ok := s.intQuery(c, "limit")
	if !ok {
		return
	}
	revs, err := review.Recent(s.db, c.Param("id"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, revs)
}

func (s *server) handleUserStats(c *gin.Context) {
	stats, err := review.StatsFor(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *server) handleMyReviewsReceived(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	revs, err := review.Received(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, revs)
}

func (s *server) handleMyReviewsGiven(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	revs, err := review.Given(s.db, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, revs)
}
