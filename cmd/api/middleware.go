package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const usernameContextKey = "username"

func (app *application) contextSetUsername(c echo.Context, username string) {
	c.Set(usernameContextKey, username)
}

func (app *application) contextGetUsername(c echo.Context) string {
	username, ok := c.Get(usernameContextKey).(string)
	if !ok {
		panic("missing username value in request context")
	}
	return username
}

// requireAuthentication verifies the bearer token and stores the username
// it was issued for in the request context. It never touches the store.
func (app *application) requireAuthentication(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add(echo.HeaderVary, echo.HeaderAuthorization)

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return app.invalidAuthenticationToken(c)
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			return app.invalidAuthenticationToken(c)
		}

		claims, err := app.tokens.Verify(headerParts[1])
		if err != nil {
			return app.invalidAuthenticationToken(c)
		}

		app.contextSetUsername(c, claims.Username)
		return next(c)
	}
}

// requireSameUser must run after requireAuthentication.
func (app *application) requireSameUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if app.contextGetUsername(c) != app.readPathParam(c, "username") {
			return app.notPermitted()
		}
		return next(c)
	}
}

func (app *application) recoverPanic() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					c.Response().Header().Set("Connection", "close")
					app.logger.Error("PANIC",
						slog.String("method", c.Request().Method),
						slog.String("uri", c.Request().URL.RequestURI()),
						slog.String("panic", fmt.Sprint(r)),
						slog.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("%v", r)
				}
			}()
			return next(c)
		}
	}
}

func (app *application) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:        true,
		LogURI:           true,
		LogError:         true,
		LogMethod:        true,
		LogLatency:       true,
		LogRequestID:     true,
		LogContentLength: true,
		HandleError:      true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("content_length", v.ContentLength),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
				app.logger.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR", attrs...)
				return nil
			}
			app.logger.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST", attrs...)
			return nil
		},
	})
}

func (app *application) rateLimiter() echo.MiddlewareFunc {
	store := app.limiterStore
	if store == nil {
		store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(app.config.limiter.rps),
			Burst:     app.config.limiter.burst,
			ExpiresIn: 3 * time.Minute,
		})
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return !app.config.limiter.enabled
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// cors rejects requests whose Origin is not on the trusted list. Requests
// without an Origin header pass through untouched.
func (app *application) cors() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			for _, trusted := range app.config.cors.trustedOrigins {
				if origin == trusted {
					return true, nil
				}
			}
			return false, echo.NewHTTPError(http.StatusForbidden,
				"The CORS policy for this application doesn't allow access from origin "+origin)
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	})
}
