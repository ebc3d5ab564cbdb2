package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"boilerplate_backend/internal/logger"
	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Pinger - *sql.DB или любая другая зависимость, которую проверяет readiness
type Pinger interface {
	PingContext(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

type MonitoringHandler struct {
	*BaseHandler
	db        Pinger
	metrics   http.Handler
	startedAt time.Time
}

func NewMonitoringHandler(base *BaseHandler, db Pinger, metricsHandler http.Handler) *MonitoringHandler {
	return &MonitoringHandler{
		BaseHandler: base,
		db:          db,
		metrics:     metricsHandler,
		startedAt:   time.Now(),
	}
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapInUse  uint64 `json:"heapInUse"`
	NumGC      uint32 `json:"numGC"`
}

type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Uptime     float64     `json:"uptime"`
	Memory     MemoryStats `json:"memory"`
	Goroutines int         `json:"goroutines"`
	GoVersion  string      `json:"goVersion"`
	PID        int         `json:"pid"`
}

// Alertmanager webhook, только нужные поля
type AlertWebhook struct {
	Status string `json:"status"`
	Alerts []struct {
		Status      string            `json:"status"`
		Labels      map[string]string `json:"labels"`
		Annotations map[string]string `json:"annotations"`
		StartsAt    time.Time         `json:"startsAt"`
	} `json:"alerts"`
}

// Home godoc
// @Summary  Приветствие
// @Tags     monitoring
// @Produce  json
// @Success  200  {object}  SuccessResponse{data=dto.MessageResponse}
// @Router   / [get]
func (h *MonitoringHandler) Home(c *gin.Context) {
	h.RespondOK(c, gin.H{"message": "Hello World!"})
}

// Metrics godoc
// @Summary  Метрики Prometheus
// @Tags     monitoring
// @Produce  plain
// @Success  200  {string}  string
// @Router   /monitoring/metrics [get]
func (h *MonitoringHandler) Metrics(c *gin.Context) {
	h.metrics.ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary  Состояние процесса
// @Tags     monitoring
// @Produce  json
// @Success  200  {object}  SuccessResponse{data=HealthResponse}
// @Router   /monitoring/health [get]
func (h *MonitoringHandler) Health(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	h.RespondOK(c, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startedAt).Seconds(),
		Memory: MemoryStats{
			Alloc:      ms.Alloc,
			TotalAlloc: ms.TotalAlloc,
			Sys:        ms.Sys,
			HeapInUse:  ms.HeapInuse,
			NumGC:      ms.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
		PID:        os.Getpid(),
	})
}

// Readiness godoc
// @Summary  Готовность принимать трафик
// @Tags     monitoring
// @Produce  json
// @Success  200  {object}  SuccessResponse
// @Failure  503  {object}  apperrors.ErrorResponse
// @Router   /monitoring/readiness [get]
func (h *MonitoringHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.HandleServiceError(c, apperrors.ErrServiceUnavailable.WithMessage("Database is not reachable").WithError(err))
		return
	}

	h.RespondOK(c, gin.H{"status": "ready", "database": "connected"})
}

// Liveness godoc
// @Summary  Процесс жив
// @Tags     monitoring
// @Produce  json
// @Success  200  {object}  SuccessResponse
// @Router   /monitoring/liveness [get]
func (h *MonitoringHandler) Liveness(c *gin.Context) {
	h.RespondOK(c, gin.H{"status": "ok"})
}

// Alerts godoc
// @Summary  Вебхук Alertmanager
// @Tags     monitoring
// @Accept   json
// @Produce  json
// @Param    request  body      AlertWebhook  true  "Пакет алертов"
// @Success  200      {object}  SuccessResponse
// @Router   /monitoring/alerts [post]
func (h *MonitoringHandler) Alerts(c *gin.Context) {
	var payload AlertWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.HandleServiceError(c, apperrors.ErrInvalidBody)
		return
	}

	ctx := c.Request.Context()
	for _, alert := range payload.Alerts {
		logger.CtxWarn(ctx, "alert received",
			"status", alert.Status,
			"alertname", alert.Labels["alertname"],
			"severity", alert.Labels["severity"],
			"summary", alert.Annotations["summary"],
			"starts_at", alert.StartsAt,
		)
	}

	h.RespondOK(c, gin.H{"received": len(payload.Alerts)})
}
