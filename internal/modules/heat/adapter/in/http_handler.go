package in

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pursue/internal/modules/heat/dto"
	heatin "pursue/internal/modules/heat/port/in"
	"pursue/internal/platform/clock"
	apperrors "pursue/internal/platform/errors"
	"pursue/internal/platform/logging"
)

const (
	JobKeyHeader = "X-Job-Key"
	UserIDHeader = "X-User-ID"
	callerKey    = "caller_id"
)

type HTTPHandler struct {
	usecase  heatin.Usecase
	jobKey   string
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

func NewHTTPHandler(usecase heatin.Usecase, jobKey string, gatherer prometheus.Gatherer, logger *zap.Logger) HTTPHandler {
	return HTTPHandler{usecase: usecase, jobKey: jobKey, gatherer: gatherer, logger: logging.OrNop(logger)}
}

func (h HTTPHandler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.accessLog())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	jobs := router.Group("/internal/jobs", h.requireJobKey())
	jobs.POST("/heat", h.runBatch)

	groups := router.Group("/groups/:group_id", h.requireCaller())
	groups.GET("/heat", h.summary)
	groups.GET("/heat/history", h.history)
	return router
}

// requireJobKey rejects the request before any engine code runs. An empty
// configured key disables the endpoint.
func (h HTTPHandler) requireJobKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(JobKeyHeader)
		if h.jobKey == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(h.jobKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (h HTTPHandler) requireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

func (h HTTPHandler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		h.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}

type batchQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

func (h HTTPHandler) runBatch(c *gin.Context) {
	var query batchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	input := dto.BatchInput{}
	if query.Date != "" {
		date, err := clock.ParseDate(query.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.Date = &date
	}
	out, err := h.usecase.RunBatch(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("heat batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "batch failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Days is a pointer so an explicit days=0 is validated rather than read as
// "not given".
type historyQuery struct {
	Days *int `form:"days" binding:"omitempty,min=1,max=90"`
}

func (h HTTPHandler) history(c *gin.Context) {
	var query historyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer between 1 and 90"})
		return
	}
	input := dto.HistoryInput{GroupID: c.Param("group_id"), CallerID: c.GetString(callerKey)}
	if query.Days != nil {
		input.Days = *query.Days
	}
	out, err := h.usecase.History(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) summary(c *gin.Context) {
	out, err := h.usecase.Summary(c.Request.Context(), c.Param("group_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"heat": out})
}

func (h HTTPHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("heat request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
