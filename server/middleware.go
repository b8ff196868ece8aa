package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spektr-org/menulens/engine"
)

// Headers read or written by the API.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAllowedOwners = "X-Allowed-Owners"
)

const (
	ctxRequestID = "request_id"
	ctxScope     = "scope"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Error("server: request", fields...)
			return
		}
		logger.Info("server: request", fields...)
	}
}

// ownerScope turns the comma-separated X-Allowed-Owners header set by the
// upstream auth proxy into an engine.AccessScope.
func ownerScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		var scope engine.AccessScope
		for _, owner := range strings.Split(c.GetHeader(HeaderAllowedOwners), ",") {
			if owner = strings.TrimSpace(owner); owner != "" {
				scope.AllowedOwners = append(scope.AllowedOwners, owner)
			}
		}
		c.Set(ctxScope, scope)
		c.Next()
	}
}

func scopeOf(c *gin.Context) engine.AccessScope {
	if v, ok := c.Get(ctxScope); ok {
		if scope, ok := v.(engine.AccessScope); ok {
			return scope
		}
	}
	return engine.AccessScope{}
}
