package model

import (
	"strings"
	"time"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentUnknown  = "unknown"
)

// NormalizeSentiment lowercases a classifier label and maps anything outside
// the known set to SentimentUnknown.
func NormalizeSentiment(label string) string {
	switch l := strings.ToLower(strings.TrimSpace(label)); l {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return l
	}
	return SentimentUnknown
}

type Review struct {
	ID           uint      `json:"review_id" gorm:"primaryKey"`
	MenuID       uint      `json:"menu_id" gorm:"not null;index"`
	Rating       int       `json:"rating" gorm:"not null"`
	Feedback     string    `json:"feedback" gorm:"type:text;not null"`
	CustomerName string    `json:"customer_name"`
	Sentiment    string    `json:"sentiment" gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time `json:"created_at"`
	FoodName     string    `json:"food_name,omitempty" gorm:"->;-:migration"`
}

// PasswordReset is the cached state of one reset request.
type PasswordReset struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Verified bool   `json:"verified"`
	Attempts int    `json:"attempts"`
}
