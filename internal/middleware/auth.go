package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bantay-barangay/backend/internal/models"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if userID, exists := claims["user_id"]; exists {
				c.Set("user_id", userID.(string))
			}
			if email, exists := claims["email"]; exists {
				c.Set("user_email", email.(string))
			}
			if name, exists := claims["name"]; exists {
				c.Set("user_name", name.(string))
			}
			if userType, exists := claims["userType"]; exists {
				c.Set("user_type", userType.(string))
			}
		}

		c.Next()
	}
}

// RequireOfficial gates the review and resolution routes. The real
// authorization boundary is the role check at login; this keeps a
// resident token away from the official surface.
func RequireOfficial() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType := c.GetString("user_type")
		if userType != models.UserTypeOfficial.String() {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Official access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
