package service

import (
	"context"
	"errors"
	"strings"

	"smarthotel/apperror"
	"smarthotel/auth"
	"smarthotel/model"
	"smarthotel/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	tokens *utils.TokenIssuer
}

func NewUserService(db *gorm.DB, tokens *utils.TokenIssuer) *UserService {
	return &UserService{db: db, tokens: tokens}
}

type RegisterInput struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Phone    string `json:"phone" form:"phone" validate:"required,number,len=10"`
	Role     string `json:"role" form:"role" validate:"required,oneof=Admin Chef Customer"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResult struct {
	TokenPair
	User *model.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register is the public sign-up path and only creates customers. An empty
// role means Customer.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if strings.TrimSpace(in.Role) == "" {
		in.Role = string(model.RoleCustomer)
	}
	return s.createUser(ctx, in, false)
}

// CreateAccount lets an administrator create an account with any role.
func (s *UserService) CreateAccount(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.createUser(ctx, in, true)
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, allowStaff bool) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	role := model.UserRole(in.Role)
	if role != model.RoleCustomer && !allowStaff {
		return nil, apperror.Forbidden("staff accounts are created by an administrator")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
		return nil, apperror.Dependency("failed to check email", err)
	}
	if existing > 0 {
		return nil, apperror.Duplicate("email already registered")
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Dependency("failed to hash password", err)
	}

	user := model.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: hashed,
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Duplicate("email already registered")
		}
		return nil, apperror.Dependency("failed to create user", err)
	}
	return &user, nil
}

// Login answers wrong email and wrong password identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, apperror.Dependency("failed to fetch user", err)
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	access, refresh, err := s.tokens.GenerateTokens(string(user.Role), user.ID)
	if err != nil {
		return nil, apperror.Dependency("failed to generate tokens", err)
	}
	return &LoginResult{
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
		User:      &user,
	}, nil
}

func (s *UserService) Refresh(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.Validation("refresh_token is required")
	}
	access, refresh, err := s.tokens.RefreshTokens(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

type ProfileInput struct {
	FullName string `json:"full_name" form:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone" form:"phone" validate:"required,number,len=10"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Dependency("failed to fetch user", err)
	}

	err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"name":  in.FullName,
		"phone": in.Phone,
	}).Error
	if err != nil {
		return nil, apperror.Dependency("failed to update profile", err)
	}
	return &user, nil
}

// SetPassword replaces the stored hash for the account with this email.
func (s *UserService) SetPassword(ctx context.Context, email, password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperror.Validation("password must be at least 8 characters")
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return apperror.Dependency("failed to hash password", err)
	}

	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", normalizeEmail(email)).
		Update("password", hashed)
	if res.Error != nil {
		return apperror.Dependency("failed to update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", normalizeEmail(email)).Count(&n).Error
	if err != nil {
		return false, apperror.Dependency("failed to check email", err)
	}
	return n > 0, nil
}
