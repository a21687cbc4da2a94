package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/werkyrie/shopdesk/internal/jwtutil"
	"github.com/werkyrie/shopdesk/internal/logger"
	"github.com/werkyrie/shopdesk/internal/metrics"
	"github.com/werkyrie/shopdesk/internal/model"
)

// AuthHandler serves login, registration and the current-user endpoint.
type AuthHandler struct {
	db  *gorm.DB
	jwt *jwtutil.JWTUtil
}

// NewAuthHandler creates an auth handler over the users table.
func NewAuthHandler(db *gorm.DB, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

// Login verifies credentials and issues a JWT carrying the user's role.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	metrics.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		metrics.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RecordAuthError("invalid_request")
		return err
	}

	var user model.User
	if result := h.db.Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		metrics.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		metrics.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.jwt.GenerateToken(user.Email, user.ID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		metrics.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Register creates a new dashboard user. New users start as viewers; an
// admin promotes them by updating the role attribute.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		metrics.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RecordAuthError("incomplete_registration")
		return err
	}

	var existing model.User
	if result := h.db.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		metrics.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		metrics.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     model.RoleViewer,
	}
	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		metrics.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Me returns the authenticated user's identity and role.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    claims.UserID,
		"email": claims.Email,
		"role":  claims.Role,
	})
}

// SeedAdmin creates an admin user from configuration if that email is not
// registered yet. Intended for first-boot provisioning.
func SeedAdmin(db *gorm.DB, email, password string, log *zap.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	var existing model.User
	if result := db.Where("email = ?", email).First(&existing); result.Error == nil {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := model.User{Email: email, Password: string(hashed), Role: model.RoleAdmin}
	if result := db.Create(&user); result.Error != nil {
		return result.Error
	}
	log.Info("Seeded admin user", zap.String("email", email))
	return nil
}
