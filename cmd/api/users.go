package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nlachan/movie-api/internal/data"
	"github.com/nlachan/movie-api/internal/validator"
)

func (app *application) registerUserHandler(c echo.Context) error {
	var input struct {
		Username string `json:"Username" form:"Username"`
		Password string `json:"Password" form:"Password"`
		Email    string `json:"Email" form:"Email"`
		Birthday string `json:"Birthday" form:"Birthday"`
	}

	if err := c.Bind(&input); err != nil {
		return app.badRequest("request body contains badly-formed JSON")
	}

	v := validator.New()

	data.ValidateUsername(v, input.Username)
	data.ValidatePlainText(v, input.Password)
	data.ValidateEmail(v, input.Email)
	birthday := data.ValidateBirthday(v, input.Birthday)

	if !v.Valid() {
		return app.failedValidation(v.Errors)
	}

	ctx := c.Request().Context()

	_, err := app.models.Users.GetByUsername(ctx, input.Username)
	switch {
	case err == nil:
		return app.badRequest(input.Username + " already exists")
	case !errors.Is(err, data.ErrNoRecordFound):
		return err
	}

	user := &data.User{
		Username: input.Username,
		Email:    input.Email,
		Birthday: birthday,
	}

	if err := user.Password.Set(input.Password); err != nil {
		return err
	}

	if data.ValidateUser(v, user); !v.Valid() {
		return app.failedValidation(v.Errors)
	}

	err = app.models.Users.Insert(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			return app.badRequest(input.Username + " already exists")
		default:
			return err
		}
	}

	if app.mailer != nil {
		app.background(func() {
			if err := app.mailer.Send(user.Email, "user_welcome.tmpl", user); err != nil {
				app.logger.Error(fmt.Sprintf("send welcome email to %s: %v", user.Username, err))
			}
		})
	}

	c.Response().Header().Set(echo.HeaderLocation, "/users/"+user.Username)

	return c.JSON(http.StatusCreated, envelope{"user": user})
}

func (app *application) listUsersHandler(c echo.Context) error {
	users, err := app.models.Users.GetAll(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{"users": users})
}

func (app *application) showUserHandler(c echo.Context) error {
	user, err := app.models.Users.GetByUsername(c.Request().Context(), app.readPathParam(c, "username"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("user not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"user": user})
}

func (app *application) updateUserHandler(c echo.Context) error {
	ctx := c.Request().Context()
	username := app.readPathParam(c, "username")

	user, err := app.models.Users.GetByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("user not found")
		default:
			return err
		}
	}

	var input struct {
		Username *string `json:"Username"`
		Password *string `json:"Password"`
		Email    *string `json:"Email"`
		Birthday *string `json:"Birthday"`
	}

	if err := c.Bind(&input); err != nil {
		return app.badRequest("request body contains badly-formed JSON")
	}

	v := validator.New()

	if input.Username != nil {
		data.ValidateUsername(v, *input.Username)
		user.Username = *input.Username
	}
	if input.Email != nil {
		data.ValidateEmail(v, *input.Email)
		user.Email = *input.Email
	}
	// An empty Birthday leaves the stored one in place.
	if input.Birthday != nil && *input.Birthday != "" {
		user.Birthday = data.ValidateBirthday(v, *input.Birthday)
	}
	if input.Password != nil {
		data.ValidatePlainText(v, *input.Password)
	}

	if !v.Valid() {
		return app.failedValidation(v.Errors)
	}

	if input.Password != nil {
		if err := user.Password.Set(*input.Password); err != nil {
			return err
		}
	}

	if user.Username != username {
		_, err := app.models.Users.GetByUsername(ctx, user.Username)
		switch {
		case err == nil:
			return app.badRequest(user.Username + " already exists")
		case !errors.Is(err, data.ErrNoRecordFound):
			return err
		}
	}

	err = app.models.Users.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrEditConflict):
			return app.editConflict()
		case errors.Is(err, data.ErrDuplicateUsername):
			return app.badRequest(user.Username + " already exists")
		default:
			return err
		}
	}

	if user.Username == username {
		return c.JSON(http.StatusOK, envelope{"user": user})
	}

	// The caller's token names the old username, which no longer exists.
	token, err := app.tokens.Issue(user.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{"user": user, "token": token})
}

func (app *application) deleteUserHandler(c echo.Context) error {
	username := app.readPathParam(c, "username")

	err := app.models.Users.Delete(c.Request().Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound(username + " was not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"message": username + " was deleted."})
}

func (app *application) addFavoriteHandler(c echo.Context) error {
	ctx := c.Request().Context()
	movieID := app.readPathParam(c, "movieId")

	_, err := app.models.Movies.Get(ctx, movieID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("movie not found")
		default:
			return err
		}
	}

	user, err := app.models.Users.AddFavorite(ctx, app.readPathParam(c, "username"), movieID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("user not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"user": user})
}

func (app *application) removeFavoriteHandler(c echo.Context) error {
	user, err := app.models.Users.RemoveFavorite(c.Request().Context(), app.readPathParam(c, "username"), app.readPathParam(c, "movieId"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("user not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"user": user})
}
