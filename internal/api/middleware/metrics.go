package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/metrics"
)

// Metrics collects HTTP request metrics labelled by route template, so
// /api/events/:id is one series no matter how many events exist.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		metrics.RequestInProgress.WithLabelValues(method, route).Inc()
		defer metrics.RequestInProgress.WithLabelValues(method, route).Dec()

		start := time.Now()

		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		metrics.RequestCounter.WithLabelValues(status, method, route).Inc()
		metrics.RequestDuration.WithLabelValues(status, method, route).Observe(time.Since(start).Seconds())
	}
}
