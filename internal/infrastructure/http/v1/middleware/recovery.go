// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"salesdocs/internal/core/apperror"
	"salesdocs/pkg/logger"
)

// Recovery turns a handler panic into INTERNAL_ERROR. The stack trace is
// logged; the client only gets the request id.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			route := c.FullPath()
			if route == "" {
				route = c.Request.URL.Path
			}
			logger.FromContext(c.Request.Context()).WithComponent("http").Errorw("handler panicked",
				"panic", rec,
				"method", c.Request.Method,
				"route", route,
				"response_started", c.Writer.Written(),
				"stack", string(debug.Stack()),
			)

			_ = c.Error(
				apperror.NewInternal(fmt.Errorf("panic in %s %s: %v", c.Request.Method, route, rec)).
					WithDetail("request_id", c.GetString("request_id")),
			)
			c.Abort()
		}()
		c.Next()
	}
}
