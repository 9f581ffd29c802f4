package main

import (
	"fmt"
	"net/url"

	"github.com/labstack/echo/v4"
)

type envelope map[string]interface{}

// readPathParam returns the unescaped value of a path parameter, so titles
// and names with spaces or punctuation match the stored values.
func (app *application) readPathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return value
}

func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Error(fmt.Sprint(err))
			}
		}()

		fn()
	}()
}
