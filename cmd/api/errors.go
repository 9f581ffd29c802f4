package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nlachan/movie-api/internal/validator"
)

const serverErrorMessage = "the server encountered a problem and could not process your request"

func (app *application) logError(c echo.Context, err error) {
	app.logger.Error(err.Error(),
		slog.String("method", c.Request().Method),
		slog.String("uri", c.Request().URL.RequestURI()),
		slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
	)
}

// errorHandler renders every error returned by handlers and middleware.
// Client errors keep their message, everything else is logged and
// replaced with a generic 500.
func (app *application) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := envelope{"error": serverErrorMessage}

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he) && he.Code < http.StatusInternalServerError:
		status = he.Code
		switch msg := he.Message.(type) {
		case validator.Errors:
			body = envelope{"errors": msg}
		case error:
			body = envelope{"error": msg.Error()}
		default:
			body = envelope{"error": msg}
		}
	case errors.As(err, &he):
		status = he.Code
		app.logError(c, fmt.Errorf("%v: %w", he.Message, err))
	default:
		app.logError(c, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		app.logError(c, err)
	}
}

func (app *application) badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}

func (app *application) notFound(message string) error {
	return echo.NewHTTPError(http.StatusNotFound, message)
}

func (app *application) failedValidation(errs validator.Errors) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, errs)
}

func (app *application) editConflict() error {
	return echo.NewHTTPError(http.StatusConflict, "unable to update the record due to an edit conflict, please try again")
}

func (app *application) invalidCredentials() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication credentials")
}

func (app *application) invalidAuthenticationToken(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing authentication token")
}

func (app *application) notPermitted() error {
	return echo.NewHTTPError(http.StatusForbidden, "you are not allowed to access another user's account")
}
