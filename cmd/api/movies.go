package main

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nlachan/movie-api/internal/data"
)

func (app *application) listMoviesHandler(c echo.Context) error {
	movies, err := app.models.Movies.GetAll(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{"movies": movies})
}

func (app *application) showMovieHandler(c echo.Context) error {
	movie, err := app.models.Movies.GetByTitle(c.Request().Context(), app.readPathParam(c, "title"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("movie not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"movie": movie})
}

func (app *application) showGenreHandler(c echo.Context) error {
	genre, err := app.models.Movies.GetGenre(c.Request().Context(), app.readPathParam(c, "name"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("genre not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"genre": genre})
}

func (app *application) showDirectorHandler(c echo.Context) error {
	director, err := app.models.Movies.GetDirector(c.Request().Context(), app.readPathParam(c, "name"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return app.notFound("director not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"director": director})
}
