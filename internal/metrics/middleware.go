package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Метка endpoint для запросов, не попавших ни в один маршрут
const endpointUnmatched = "unmatched"

// HTTPMetricsMiddleware записывает счетчик и длительность HTTP запросов.
// Меткой endpoint служит шаблон маршрута (например /api/v1/tracks/:id),
// а не сырой путь: иначе кардинальность метрик росла бы с числом треков
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = endpointUnmatched
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		elapsed := time.Since(start).Seconds()
		HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(elapsed)
		HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	}
}
