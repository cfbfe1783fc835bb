package controller

import (
	"net/http"

	"smarthotel/apperror"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (hc *HealthController) Healthz(c *gin.Context) {
	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		respondError(c, apperror.New(apperror.KindUnavailable, "database unavailable", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
