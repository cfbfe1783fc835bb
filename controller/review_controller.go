package controller

import (
	"net/http"

	"smarthotel/service"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviews *service.ReviewService
}

func NewReviewController(reviews *service.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (rc *ReviewController) SubmitReview(c *gin.Context) {
	var req service.ReviewInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid review payload")
		return
	}
	review, err := rc.reviews.Submit(requestContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Review submitted successfully", review)
}

func (rc *ReviewController) MenuReviews(c *gin.Context) {
	menuID, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	reviews, err := rc.reviews.ListByMenu(requestContext(c), menuID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", reviews)
}

func (rc *ReviewController) DeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.reviews.Delete(requestContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Review deleted successfully", nil)
}

func (rc *ReviewController) Predict(c *gin.Context) {
	var req struct {
		Review string `json:"review" form:"review" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "review is required")
		return
	}
	sentiment, err := rc.reviews.Predict(requestContext(c), req.Review)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"sentiment": sentiment})
}
