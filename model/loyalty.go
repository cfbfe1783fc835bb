package model

import "time"

type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

const (
	PointsPerCompletedOrder = 50

	silverThreshold   = 1000
	goldThreshold     = 2000
	platinumThreshold = 3000
)

// TierFor returns the tier and discount percentage earned by a point balance.
func TierFor(points int) (Tier, float64) {
	switch {
	case points >= platinumThreshold:
		return TierPlatinum, 50
	case points >= goldThreshold:
		return TierGold, 25
	case points >= silverThreshold:
		return TierSilver, 15
	default:
		return TierBronze, 0
	}
}

// PointsToNextTier is 0 once Platinum is reached.
func PointsToNextTier(points int) int {
	var next int
	switch {
	case points >= platinumThreshold:
		return 0
	case points >= goldThreshold:
		next = platinumThreshold
	case points >= silverThreshold:
		next = goldThreshold
	default:
		next = silverThreshold
	}
	if d := next - points; d > 0 {
		return d
	}
	return 0
}

type CustomerLoyalty struct {
	UserID             uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	CustomerName       string    `json:"customer_name"`
	LoyaltyPoints      int       `json:"loyalty_points" gorm:"not null;default:0"`
	Tier               Tier      `json:"tier" gorm:"type:varchar(20);not null;default:'Bronze'"`
	DiscountPercentage float64   `json:"discount_percentage" gorm:"type:decimal(5,2);not null;default:0"`
	RedeemedDiscount   bool      `json:"redeemed_discount" gorm:"not null;default:false"`
	RedeemedOrders     int       `json:"-" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (CustomerLoyalty) TableName() string { return "customer_loyalty" }

type LoyaltyActivity struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"-" gorm:"not null;index"`
	Description  string    `json:"description"`
	PointsChange int       `json:"points_change"`
	Amount       string    `json:"amount"`
	ActivityTime time.Time `json:"activity_time" gorm:"not null;index"`
}

func (LoyaltyActivity) TableName() string { return "loyalty_activities" }
