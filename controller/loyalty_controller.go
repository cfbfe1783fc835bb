package controller

import (
	"net/http"

	"smarthotel/service"
	"smarthotel/utils"

	"github.com/gin-gonic/gin"
)

type LoyaltyController struct {
	loyalty *service.LoyaltyService
}

func NewLoyaltyController(loyalty *service.LoyaltyService) *LoyaltyController {
	return &LoyaltyController{loyalty: loyalty}
}

// All loyalty endpoints act on the caller from the token, never on a body id.

func (lc *LoyaltyController) GetLoyalty(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	snapshot, err := lc.loyalty.GetLoyaltySnapshot(requestContext(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", snapshot)
}

func (lc *LoyaltyController) RedeemSilver(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	loyalty, err := lc.loyalty.RedeemSilverDiscount(requestContext(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "15% discount redeemed", loyalty)
}

func (lc *LoyaltyController) RedeemPlatinum(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	loyalty, err := lc.loyalty.RedeemPlatinumDiscount(requestContext(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "50% discount redeemed", loyalty)
}
