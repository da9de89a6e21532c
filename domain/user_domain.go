package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login successful"
	MessageSuccessGetMe          = "user retrieved successfully"
	MessageSuccessUpdateUser     = "user updated successfully"
	MessageSuccessForgotPassword = "password reset email sent"
	MessageSuccessResetPassword  = "password reset successfully"
	MessageSuccessDeleteAccount  = "account deleted successfully"
	MessageSuccessGetStarHistory = "star transaction history retrieved successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetMe          = "failed to retrieve user"
	MessageFailedUpdateUser     = "failed to update user"
	MessageFailedForgotPassword = "failed to send password reset email"
	MessageFailedResetPassword  = "failed to reset password"
	MessageFailedDeleteAccount  = "failed to delete account"
	MessageFailedGetStarHistory = "failed to retrieve star transaction history"

	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidDateOfBirth = errors.New("invalid date of birth")
)

type (
	RegisterRequest struct {
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=8"`
		Role        string `json:"role" validate:"required,oneof=client pharmacist"`
		FirstName   string `json:"first_name" validate:"required"`
		LastName    string `json:"last_name" validate:"required"`
		DateOfBirth string `json:"date_of_birth" validate:"omitempty"`
		Gender      string `json:"gender" validate:"omitempty"`
		Phone       string `json:"phone" validate:"omitempty"`
	}

	RegisterResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	MeResponse struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Role      string `json:"role"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`

		// Client-only fields.
		Stars  int    `json:"stars,omitempty"`
		QRCode string `json:"qr_code,omitempty"`
	}

	UpdateUserRequest struct {
		FirstName string `json:"first_name" validate:"omitempty"`
		LastName  string `json:"last_name" validate:"omitempty"`
		Phone     string `json:"phone" validate:"omitempty"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	StarTransactionResponse struct {
		ID          string    `json:"id"`
		Amount      int       `json:"amount"`
		Type        string    `json:"type"`
		Description string    `json:"description"`
		Balance     int       `json:"balance"`
		CreatedAt   time.Time `json:"created_at"`
	}
)
