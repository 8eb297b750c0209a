package models

import "time"

// User is a registered account as held by a user store.
type User struct {
	ID          string
	Name        string
	Email       string
	Password    string // bcrypt hash, never serialized
	PhoneNumber string
	Address     string
	CreatedAt   time.Time
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name        *string
	Email       *string
	Password    *string
	PhoneNumber *string
	Address     *string
}

// CreateUserDto is the JSON body for POST /users/register.
type CreateUserDto struct {
	Name        string `json:"name"        validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,mobile_in"`
	Address     string `json:"address"`
}

// LoginUserDto is the JSON body for POST /users/login.
type LoginUserDto struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserDto is the JSON body for PUT /users/update. Setting Password
// requires OldPassword. A name that is present must not be empty.
type UpdateUserDto struct {
	Name        *string `json:"name"        validate:"omitempty,min=1"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,mobile_in"`
	Address     *string `json:"address"`
	OldPassword *string `json:"oldPassword"`
}
