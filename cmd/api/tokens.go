package main

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nlachan/movie-api/internal/auth"
)

// loginHandler exchanges a username and password for a signed token.
// Every failure, including a malformed body, is the same 401.
func (app *application) loginHandler(c echo.Context) error {
	var input struct {
		Username string `json:"Username" form:"Username"`
		Password string `json:"Password" form:"Password"`
	}

	if err := c.Bind(&input); err != nil {
		return app.invalidCredentials()
	}

	user, err := app.authenticator.Authenticate(c.Request().Context(), input.Username, input.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			app.logError(c, err)
		}
		return app.invalidCredentials()
	}

	token, err := app.tokens.Issue(user.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{"user": user, "token": token})
}
