package route

import (
	"smarthotel/controller"
	"smarthotel/metrics"
	"smarthotel/model"
	"smarthotel/utils"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Orders    *controller.OrderController
	Loyalty   *controller.LoyaltyController
	Users     *controller.UserController
	Menu      *controller.MenuController
	Reviews   *controller.ReviewController
	Dashboard *controller.DashboardController
	Health    *controller.HealthController
}

const (
	admin    = string(model.RoleAdmin)
	chef     = string(model.RoleChef)
	customer = string(model.RoleCustomer)
)

func SetupRoutes(router *gin.Engine, issuer *utils.TokenIssuer, limiter *utils.RateLimiter, h Controllers) {
	authRequired := utils.AuthMiddleware(issuer)

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public
	authGroup := router.Group("/")
	authGroup.Use(limiter.Middleware())
	{
		authGroup.POST("/register", h.Users.Register)
		authGroup.POST("/login", h.Users.Login)
		authGroup.POST("/refresh-token", h.Users.RefreshToken)
		authGroup.POST("/password_reset", h.Users.RequestPasswordReset)
		authGroup.POST("/password_reset_OTP", h.Users.VerifyResetOTP)
		authGroup.POST("/update_password", h.Users.UpdatePassword)
	}
	router.GET("/menu", h.Menu.ListMenu)
	router.GET("/menu/categories", h.Menu.Categories)
	router.GET("/get_menu/:id", h.Menu.GetMenuItem)
	router.GET("/reviews/:menu_id", h.Reviews.MenuReviews)
	router.POST("/predict", h.Reviews.Predict)

	// Any signed-in user
	userGroup := router.Group("/")
	userGroup.Use(authRequired)
	{
		userGroup.PUT("/api/update-profile", h.Users.UpdateProfile)
		userGroup.POST("/pendingorders", h.Orders.CustomerOrders)
		userGroup.GET("/orders/:id", h.Orders.GetOrder)
		userGroup.GET("/loyalty", h.Loyalty.GetLoyalty)
		userGroup.POST("/loyalty/redeem/silver", h.Loyalty.RedeemSilver)
		userGroup.POST("/loyalty/redeem", h.Loyalty.RedeemPlatinum)
		userGroup.POST("/reviews", h.Reviews.SubmitReview)
	}

	customerGroup := router.Group("/")
	customerGroup.Use(authRequired, utils.RequireRoles(customer, admin))
	{
		customerGroup.POST("/place-order", h.Orders.PlaceOrder)
	}

	chefGroup := router.Group("/")
	chefGroup.Use(authRequired, utils.RequireRoles(chef, admin))
	{
		chefGroup.GET("/pending-orders", h.Orders.PendingOrders)
		chefGroup.POST("/accept-order", h.Orders.AcceptOrder)
		chefGroup.POST("/reject-order", h.Orders.RejectOrder)
		chefGroup.POST("/complete-order", h.Orders.CompleteOrder)
	}

	adminGroup := router.Group("/")
	adminGroup.Use(authRequired, utils.RequireRoles(admin))
	{
		adminGroup.POST("/users", h.Users.CreateUser)
		adminGroup.POST("/add_menu", h.Menu.AddMenuItem)
		adminGroup.POST("/add_menu/excel", h.Menu.BulkAddMenu)
		adminGroup.PUT("/update_menu/:id", h.Menu.UpdateMenuItem)
		adminGroup.DELETE("/delete_menu/:id", h.Menu.DeleteMenuItem)
		adminGroup.DELETE("/reviews/:id", h.Reviews.DeleteReview)
		adminGroup.GET("/dashboard-stats", h.Dashboard.Stats)
		adminGroup.GET("/sales-stats", h.Dashboard.SalesStats)
		adminGroup.GET("/category-revenue", h.Dashboard.CategoryRevenue)
		adminGroup.GET("/sales-report.xlsx", h.Dashboard.SalesReport)
	}
}
