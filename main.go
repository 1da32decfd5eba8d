package main

import (
	"context"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/config"
	"github.com/loomline/loomline-backend-go/database"
	customMiddleware "github.com/loomline/loomline-backend-go/middleware"
	"github.com/loomline/loomline-backend-go/routes"
)

// requestValidator adapts go-playground/validator to echo's Validator
// interface, surfacing violations as taxonomy validation errors.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnv()

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(customMiddleware.MetricsMiddleware())

	// Three connect attempts with a fixed delay before giving up.
	var connectErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if _, connectErr = database.Connect(context.Background()); connectErr == nil {
			break
		}
		log.Warn().Err(connectErr).Int("attempt", attempt).Msg("database connect failed")
		time.Sleep(2 * time.Second)
	}
	if connectErr != nil {
		log.Fatal().Err(connectErr).Msg("could not connect to database")
	}

	routes.SetupRoutes(e)

	port := config.GetEnv("PORT", "3000")
	log.Info().Str("port", port).Msg("server starting")
	if err := e.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
