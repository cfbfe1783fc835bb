package controller

import (
	"net/http"

	"smarthotel/apperror"
	"smarthotel/model"
	"smarthotel/service"
	"smarthotel/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	users *service.UserService
	reset *service.ResetService
}

// NewUserController accepts a nil reset service when no cache is configured;
// the reset endpoints then answer 503.
func NewUserController(users *service.UserService, reset *service.ResetService) *UserController {
	return &UserController{users: users, reset: reset}
}

func (uc *UserController) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}
	user, err := uc.users.Register(requestContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "User registered successfully", user)
}

// CreateUser is the admin path for staff accounts.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid account payload")
		return
	}
	user, err := uc.users.CreateAccount(requestContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Account created successfully", user)
}

func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" form:"email" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}
	res, err := uc.users.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Login successful", res)
}

func (uc *UserController) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" form:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Refresh token is required"})
		return
	}
	pair, err := uc.users.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", pair)
}

// UpdateProfile edits the caller's profile. Admins may pass user_id to edit
// someone else.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req struct {
		service.ProfileInput
		UserID uint `json:"user_id" form:"user_id"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid profile payload")
		return
	}

	target, _ := utils.CurrentUserID(c)
	if req.UserID != 0 && req.UserID != target {
		if utils.CurrentRole(c) != string(model.RoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "cannot edit another user's profile"})
			return
		}
		target = req.UserID
	}

	user, err := uc.users.UpdateProfile(requestContext(c), target, req.ProfileInput)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Profile updated successfully", user)
}

func (uc *UserController) RequestPasswordReset(c *gin.Context) {
	if uc.reset == nil {
		respondError(c, apperror.Unavailable("password reset is not available"))
		return
	}
	var req struct {
		Email string `json:"email" form:"email" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "email is required")
		return
	}
	token, err := uc.reset.RequestReset(requestContext(c), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "OTP sent to your email", gin.H{"reset_token": token})
}

func (uc *UserController) VerifyResetOTP(c *gin.Context) {
	if uc.reset == nil {
		respondError(c, apperror.Unavailable("password reset is not available"))
		return
	}
	var req struct {
		ResetToken string `json:"reset_token" form:"reset_token" binding:"required"`
		OTP        string `json:"otp" form:"otp" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "reset_token and otp are required")
		return
	}
	if err := uc.reset.VerifyOTP(requestContext(c), req.ResetToken, req.OTP); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "OTP verified", nil)
}

func (uc *UserController) UpdatePassword(c *gin.Context) {
	if uc.reset == nil {
		respondError(c, apperror.Unavailable("password reset is not available"))
		return
	}
	var req struct {
		ResetToken string `json:"reset_token" form:"reset_token" binding:"required"`
		Password   string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "reset_token and password are required")
		return
	}
	if err := uc.reset.UpdatePassword(requestContext(c), req.ResetToken, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Password updated successfully", nil)
}
