package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/config"
	"github.com/loomline/loomline-backend-go/database"
	"github.com/loomline/loomline-backend-go/models"
	"github.com/loomline/loomline-backend-go/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     utils.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(72 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RegisterUser creates a credential account and signs the caller in with a
// token cookie. Emails are lowercased before every lookup and write.
func RegisterUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	collection := database.Collection("users")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	err := collection.FindOne(ctx, bson.M{"email": req.Email}).Err()
	if err == nil {
		return apperr.Validation("Email already registered")
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Provider:  "credentials",
		Cart:      []models.CartItem{},
		Wishlist:  []primitive.ObjectID{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		return err
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, false)
	if err != nil {
		return err
	}
	setTokenCookie(c, token)

	log.Info().Str("userId", user.ID.Hex()).Msg("user registered")
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

// LoginUser checks credentials and issues a token cookie.
func LoginUser(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		return apperr.Auth("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperr.Auth("Invalid email or password")
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, false)
	if err != nil {
		return err
	}
	setTokenCookie(c, token)

	return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

// AdminLogin checks the submitted credentials against the environment-
// configured admin account and issues an admin-scoped token cookie.
func AdminLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	adminEmail := strings.ToLower(config.GetEnv("ADMIN_EMAIL", ""))
	adminPassword := config.GetEnv("ADMIN_PASSWORD", "")
	if adminEmail == "" || adminPassword == "" {
		return apperr.Configuration("Admin credentials are not configured")
	}

	if req.Email != adminEmail || req.Password != adminPassword {
		return apperr.Auth("Invalid admin credentials")
	}

	token, err := utils.GenerateJWT("", adminEmail, true)
	if err != nil {
		return err
	}
	setTokenCookie(c, token)

	log.Info().Msg("admin signed in")
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}
