package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (app *application) welcomeHandler(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome to my movie page!")
}

func (app *application) healthcheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.env,
			"version":     version,
		},
	})
}
