package model

import (
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "Admin"
	RoleChef     UserRole = "Chef"
	RoleCustomer UserRole = "Customer"
)

type User struct {
	gorm.Model
	Name         string   `json:"name" gorm:"not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	Phone        string   `json:"phone"`
	Password     string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;index"`
	ImageURL     string   `json:"image_url"`
	OrdersPlaced int      `json:"orders_placed" gorm:"not null;default:0"`
}
