package service

import (
	"context"
	"errors"
	"strings"

	"smarthotel/apperror"
	"smarthotel/logger"
	"smarthotel/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const anonymousReviewer = "Anonymous"

type ReviewService struct {
	db         *gorm.DB
	classifier Classifier
}

// NewReviewService accepts a nil classifier; reviews are then labelled unknown.
func NewReviewService(db *gorm.DB, classifier Classifier) *ReviewService {
	return &ReviewService{db: db, classifier: classifier}
}

type ReviewInput struct {
	MenuID       uint   `json:"menu_id" form:"menu_id" validate:"required"`
	Rating       int    `json:"rating" form:"rating" validate:"gte=1,lte=5"`
	Feedback     string `json:"feedback" form:"feedback" validate:"required"`
	CustomerName string `json:"customer_name" form:"customer_name"`
}

func (s *ReviewService) Submit(ctx context.Context, in ReviewInput) (*model.Review, error) {
	in.Feedback = strings.TrimSpace(in.Feedback)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var menu model.MenuItem
	if err := s.db.WithContext(ctx).Select("id", "name").First(&menu, in.MenuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("menu item not found")
		}
		return nil, apperror.Dependency("failed to fetch menu item", err)
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = anonymousReviewer
	}
	review := model.Review{
		MenuID:       in.MenuID,
		Rating:       in.Rating,
		Feedback:     in.Feedback,
		CustomerName: name,
		Sentiment:    s.label(ctx, in.Feedback),
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, apperror.Dependency("failed to save review", err)
	}
	review.FoodName = menu.Name
	return &review, nil
}

// label never fails: classifier errors degrade to "unknown".
func (s *ReviewService) label(ctx context.Context, text string) string {
	if s.classifier == nil {
		return model.SentimentUnknown
	}
	sentiment, err := s.classifier.Classify(ctx, text)
	if err != nil {
		logger.Warn(ctx, "sentiment classification failed", zap.Error(err))
		return model.SentimentUnknown
	}
	return sentiment
}

// Predict exposes the classifier directly.
func (s *ReviewService) Predict(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.Validation("review text is required")
	}
	if s.classifier == nil {
		return "", apperror.Unavailable("sentiment classifier not configured")
	}
	sentiment, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return "", apperror.New(apperror.KindUnavailable, "sentiment classifier unavailable", err)
	}
	return sentiment, nil
}

func (s *ReviewService) ListByMenu(ctx context.Context, menuID uint) ([]model.Review, error) {
	reviews := []model.Review{}
	err := s.db.WithContext(ctx).Table("reviews").
		Select("reviews.*, menu_items.name AS food_name").
		Joins("LEFT JOIN menu_items ON menu_items.id = reviews.menu_id").
		Where("reviews.menu_id = ?", menuID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, apperror.Dependency("failed to fetch reviews", err)
	}
	return reviews, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return apperror.Dependency("failed to delete review", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("review not found")
	}
	return nil
}
