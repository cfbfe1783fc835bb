package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smarthotel/apperror"
	"smarthotel/logger"
	"smarthotel/metrics"
	"smarthotel/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recentActivityLimit = 5

type LoyaltyService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLoyaltyService(db *gorm.DB) *LoyaltyService {
	return &LoyaltyService{db: db, now: time.Now}
}

type LoyaltySnapshot struct {
	UserID             uint                    `json:"user_id"`
	Name               string                  `json:"name"`
	Email              string                  `json:"email"`
	ImageURL           string                  `json:"image_url"`
	LoyaltyPoints      int                     `json:"loyalty_points"`
	Tier               model.Tier              `json:"tier"`
	DiscountPercentage float64                 `json:"discount_percentage"`
	RedeemedDiscount   bool                    `json:"redeemed_discount"`
	PointsToNextReward int                     `json:"points_to_next_reward"`
	RecentActivities   []model.LoyaltyActivity `json:"recent_activities"`
}

// GetLoyaltySnapshot brings the customer's loyalty row up to date with their
// completed orders and returns it. Nothing is written when nothing changed.
func (s *LoyaltyService) GetLoyaltySnapshot(ctx context.Context, userID uint) (*LoyaltySnapshot, error) {
	if userID == 0 {
		return nil, apperror.Unauthorized("user not authenticated")
	}

	var snapshot *LoyaltySnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("user not found")
			}
			return err
		}

		loyalty, err := lockOrCreateLoyalty(tx, &user)
		if err != nil {
			return err
		}
		completed, err := completedOrders(tx, userID)
		if err != nil {
			return err
		}

		changed := false
		earned := (completed - loyalty.RedeemedOrders) * model.PointsPerCompletedOrder
		if loyalty.LoyaltyPoints < earned {
			loyalty.LoyaltyPoints = earned
			changed = true
		}

		tier, discount := model.TierFor(loyalty.LoyaltyPoints)
		if tier != loyalty.Tier {
			activity := model.LoyaltyActivity{
				UserID:       userID,
				Description:  fmt.Sprintf("For %s you will get %g%% discount", tier, discount),
				PointsChange: 0,
				Amount:       fmt.Sprintf("%g%% discount", discount),
				ActivityTime: s.now(),
			}
			if err := tx.Create(&activity).Error; err != nil {
				return err
			}
			loyalty.Tier = tier
			loyalty.DiscountPercentage = discount
			loyalty.RedeemedDiscount = false
			changed = true
			metrics.LoyaltyEvents.WithLabelValues("tier_change", string(tier)).Inc()
		} else if loyalty.DiscountPercentage != discount {
			loyalty.DiscountPercentage = discount
			changed = true
		}

		if changed {
			if err := tx.Save(loyalty).Error; err != nil {
				return err
			}
		}

		activities := []model.LoyaltyActivity{}
		err = tx.Where("user_id = ?", userID).
			Order("activity_time DESC, id DESC").
			Limit(recentActivityLimit).
			Find(&activities).Error
		if err != nil {
			return err
		}

		snapshot = &LoyaltySnapshot{
			UserID:             user.ID,
			Name:               user.Name,
			Email:              user.Email,
			ImageURL:           user.ImageURL,
			LoyaltyPoints:      loyalty.LoyaltyPoints,
			Tier:               loyalty.Tier,
			DiscountPercentage: loyalty.DiscountPercentage,
			RedeemedDiscount:   loyalty.RedeemedDiscount,
			PointsToNextReward: model.PointsToNextTier(loyalty.LoyaltyPoints),
			RecentActivities:   activities,
		}
		return nil
	})
	if err != nil {
		return nil, loyaltyError(err)
	}
	return snapshot, nil
}

// RedeemSilverDiscount uses the one-time 15% Silver benefit.
func (s *LoyaltyService) RedeemSilverDiscount(ctx context.Context, userID uint) (*model.CustomerLoyalty, error) {
	if userID == 0 {
		return nil, apperror.Unauthorized("user not authenticated")
	}

	var loyalty *model.CustomerLoyalty
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if loyalty, err = lockLoyalty(tx, userID); err != nil {
			return err
		}
		if loyalty.Tier != model.TierSilver || loyalty.DiscountPercentage != 15 {
			return apperror.Forbidden("only Silver tier customers can redeem the 15% discount")
		}
		if loyalty.RedeemedDiscount {
			return apperror.Forbidden("discount already redeemed")
		}

		if err := tx.Model(loyalty).Update("redeemed_discount", true).Error; err != nil {
			return err
		}
		return tx.Create(&model.LoyaltyActivity{
			UserID:       userID,
			Description:  "You have used your redeem",
			PointsChange: 0,
			Amount:       "15% discount",
			ActivityTime: s.now(),
		}).Error
	})
	if err != nil {
		return nil, loyaltyError(err)
	}

	metrics.LoyaltyEvents.WithLabelValues("redeem", string(model.TierSilver)).Inc()
	logger.Info(ctx, "silver discount redeemed", zap.Uint("user_id", userID))
	return loyalty, nil
}

// RedeemPlatinumDiscount spends every point for the 50% benefit. Orders
// completed so far stop counting towards future points.
func (s *LoyaltyService) RedeemPlatinumDiscount(ctx context.Context, userID uint) (*model.CustomerLoyalty, error) {
	if userID == 0 {
		return nil, apperror.Unauthorized("user not authenticated")
	}

	var loyalty *model.CustomerLoyalty
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if loyalty, err = lockLoyalty(tx, userID); err != nil {
			return err
		}
		if loyalty.Tier != model.TierPlatinum || loyalty.DiscountPercentage != 50 {
			return apperror.Forbidden("only Platinum tier customers can redeem the 50% discount")
		}

		completed, err := completedOrders(tx, userID)
		if err != nil {
			return err
		}
		spent := loyalty.LoyaltyPoints

		err = tx.Model(loyalty).Updates(map[string]interface{}{
			"loyalty_points":      0,
			"tier":                model.TierBronze,
			"discount_percentage": 0,
			"redeemed_discount":   false,
			"redeemed_orders":     completed,
		}).Error
		if err != nil {
			return err
		}
		return tx.Create(&model.LoyaltyActivity{
			UserID:       userID,
			Description:  "Redeemed 50% Platinum discount",
			PointsChange: -spent,
			Amount:       "50% discount",
			ActivityTime: s.now(),
		}).Error
	})
	if err != nil {
		return nil, loyaltyError(err)
	}

	metrics.LoyaltyEvents.WithLabelValues("redeem", string(model.TierPlatinum)).Inc()
	logger.Info(ctx, "platinum discount redeemed", zap.Uint("user_id", userID))
	return loyalty, nil
}

func lockLoyalty(tx *gorm.DB, userID uint) (*model.CustomerLoyalty, error) {
	var loyalty model.CustomerLoyalty
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&loyalty).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("loyalty record not found")
	}
	if err != nil {
		return nil, err
	}
	return &loyalty, nil
}

// lockOrCreateLoyalty inserts a Bronze row on first use. A concurrent first
// call for the same user loses the insert and reads the winner's row.
func lockOrCreateLoyalty(tx *gorm.DB, user *model.User) (*model.CustomerLoyalty, error) {
	loyalty, err := lockLoyalty(tx, user.ID)
	if err == nil {
		return loyalty, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.CustomerLoyalty{
		UserID:       user.ID,
		CustomerName: user.Name,
		Tier:         model.TierBronze,
	}).Error
	if err != nil {
		return nil, err
	}
	return lockLoyalty(tx, user.ID)
}

func completedOrders(tx *gorm.DB, userID uint) (int, error) {
	var n int64
	err := tx.Model(&model.Order{}).
		Where("customer_id = ? AND status = ?", userID, model.OrderCompleted).
		Count(&n).Error
	return int(n), err
}

func loyaltyError(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Dependency("failed to update loyalty", err)
}
