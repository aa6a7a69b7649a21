package controllers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/models"
	"github.com/bantay-barangay/backend/internal/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"userType" binding:"required,oneof=Official Resident"`
}

type RegisterRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	MiddleName      string `json:"middleName"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Address         string `json:"address" binding:"required"`
	PhoneNumber     string `json:"phoneNumber" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	UserType        string `json:"userType" binding:"required,oneof=Official Resident"`
}

type AuthResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password, models.UserType(req.UserType))
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		case errors.Is(err, services.ErrProfileNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Your account exists but your profile data is missing"})
		case errors.Is(err, services.ErrRoleMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "This account is registered under a different user type"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed, please try again"})
		}
		return
	}

	token, expiresAt, err := generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     token,
		User:      *user,
		ExpiresAt: expiresAt,
	})
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Passwords do not match"})
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		UserType:    models.UserType(req.UserType),
	})
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed, please try again"})
		}
		return
	}

	token, expiresAt, err := generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Success:   true,
		Message:   "Registration successful",
		Token:     token,
		User:      *user,
		ExpiresAt: expiresAt,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	ac.auth.Logout()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

func generateToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(24 * time.Hour)
	claims := jwt.MapClaims{
		"user_id":  user.UserID,
		"email":    user.Email,
		"name":     user.FullName(),
		"userType": user.UserType.String(),
		"exp":      expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	return tokenString, expiresAt, err
}
