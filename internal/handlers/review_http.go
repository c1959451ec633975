package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/service"
)

type ReviewHTTP struct {
	S service.ReviewService
}

func NewReviewHTTP(s service.ReviewService) *ReviewHTTP { return &ReviewHTTP{S: s} }

type reviewBody struct {
	ProductID uint   `json:"productId" binding:"required"`
	MemberID  uint   `json:"memberId" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Review    string `json:"review"`
}

func (h *ReviewHTTP) AddRating(c *gin.Context) {
	var in reviewBody
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input data")
		return
	}
	if !sameMember(c, in.MemberID) {
		return
	}
	id, err := h.S.AddRating(c.Request.Context(), in.ProductID, in.MemberID, in.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "ratingId": id})
}

func (h *ReviewHTTP) AddReview(c *gin.Context) {
	var in reviewBody
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input data")
		return
	}
	if !sameMember(c, in.MemberID) {
		return
	}
	id, err := h.S.AddReview(c.Request.Context(), in.ProductID, in.MemberID, in.Review, in.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "reviewId": id})
}

func (h *ReviewHTTP) ForProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.S.ForProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHTTP) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	u, _ := currentUser(c)
	if err := h.S.Delete(c.Request.Context(), id, u.ID, u.Role == model.RoleAdmin); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted successfully"})
}
