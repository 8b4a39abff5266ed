package handlers

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"photofolio_api/internal/middleware"
	"photofolio_api/internal/models"
)

// AuthHandler signs admins in with Google and issues bearer tokens for the
// admin routes. Unknown Google accounts are rejected even when the token
// itself is valid.
type AuthHandler struct {
	db            *gorm.DB
	audience      string
	jwtSecret     string
	allowedAdmins []string
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	var admins []string
	for _, email := range strings.Split(os.Getenv("ALLOWED_ADMINS"), ",") {
		if trimmed := strings.TrimSpace(email); trimmed != "" {
			admins = append(admins, trimmed)
		}
	}
	return &AuthHandler{
		db:            db,
		audience:      os.Getenv("GOOGLE_CLIENT_ID"),
		jwtSecret:     os.Getenv("JWT_SECRET"),
		allowedAdmins: admins,
	}
}

type googleLoginInput struct {
	Credential string `json:"credential"`
}

// GoogleLogin verifies a Google ID token, checks the admin allow-list and
// returns a signed bearer token.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var input googleLoginInput
	if err := c.Bind(&input); err != nil || input.Credential == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing credential")
	}

	payload, err := idtoken.Validate(c.Request().Context(), input.Credential, h.audience)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid Google token")
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no email found")
	}

	if !h.isAllowedAdmin(email) {
		log.Printf("unauthorized login attempt: %s", email)
		return echo.NewHTTPError(http.StatusForbidden, "access denied: not an admin")
	}

	var user models.User
	err = h.db.WithContext(c.Request().Context()).First(&user, "email = ?", email).Error
	if err == gorm.ErrRecordNotFound {
		name, _ := payload.Claims["name"].(string)
		user = models.User{Email: email, Name: name}
		if picture, ok := payload.Claims["picture"].(string); ok && picture != "" {
			user.Avatar = &picture
		}
		if err := h.db.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	claims := middleware.AdminClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) isAllowedAdmin(email string) bool {
	for _, allowed := range h.allowedAdmins {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}
