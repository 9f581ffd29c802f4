package main

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// newServer wires the middleware chain and routes onto a fresh echo instance.
func (app *application) newServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = app.errorHandler

	e.Use(app.cors())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(app.requestLogger())
	e.Use(app.recoverPanic())
	e.Use(app.rateLimiter())

	if app.config.metrics.enabled {
		// One registry per server instance.
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "myflix",
			Registerer: reg,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: reg,
		}))
	}

	app.routes(e)

	return e
}

func (app *application) routes(e *echo.Echo) {
	e.GET("/", app.welcomeHandler)
	e.GET("/healthcheck", app.healthcheckHandler)

	e.POST("/login", app.loginHandler)
	e.POST("/users", app.registerUserHandler)

	authed := app.requireAuthentication
	owner := app.requireSameUser

	e.GET("/users", app.listUsersHandler, authed)
	e.GET("/users/:username", app.showUserHandler, authed)
	e.PUT("/users/:username", app.updateUserHandler, authed, owner)
	e.DELETE("/users/:username", app.deleteUserHandler, authed, owner)
	e.POST("/users/:username/movies/:movieId", app.addFavoriteHandler, authed, owner)
	e.DELETE("/users/:username/movies/:movieId", app.removeFavoriteHandler, authed, owner)

	e.GET("/movies", app.listMoviesHandler, authed)
	e.GET("/movies/:title", app.showMovieHandler, authed)
	e.GET("/genres/:name", app.showGenreHandler, authed)
	e.GET("/directors/:name", app.showDirectorHandler, authed)
}
