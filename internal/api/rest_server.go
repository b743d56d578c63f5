// Package api - админ-REST сервер твиков: состояние спаунеров, сброс, перезагрузка конфигурации.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/app"
	"github.com/annel0/blockverse-tweaks/internal/auth"
	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/middleware"
	"github.com/annel0/blockverse-tweaks/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API сервер
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	tweaks     *app.Tweaks
	world      *world.World
	auth       *auth.Service
	webhooks   *OutboundWebhookManager
	configPath string
	tickWait   time.Duration
	metrics    *ServerMetrics
	log        *logging.Logger
}

// Config содержит зависимости REST сервера
type Config struct {
	Port       int
	Tweaks     *app.Tweaks
	World      *world.World
	Auth       *auth.Service
	Webhooks   *OutboundWebhookManager // может быть nil
	Registerer prometheus.Registerer   // HTTP-метрики; nil - без метрик
	Gatherer   prometheus.Gatherer     // источник /metrics; nil - без маршрута
	ConfigPath string                  // файл для перезагрузки без тела запроса
	// TickWait ограничивает ожидание команды в потоке тиков
	TickWait time.Duration
}

// NewRestServer создаёт сервер и настраивает маршруты
func NewRestServer(cfg Config) *RestServer {
	if cfg.Port == 0 {
		cfg.Port = 8088
	}
	if cfg.TickWait <= 0 {
		cfg.TickWait = 5 * time.Second
	}

	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logging.GetAPILogger()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("tweaks_api"))
	router.Use(middleware.NewRequestLogger(log).Handler())

	promMw := middleware.NewPrometheusMiddleware("tweaks_api", cfg.Registerer)
	router.Use(promMw.Handler())
	if cfg.Gatherer != nil {
		router.GET("/metrics", middleware.MetricsHandler(cfg.Gatherer))
	}

	rs := &RestServer{
		router:     router,
		tweaks:     cfg.Tweaks,
		world:      cfg.World,
		auth:       cfg.Auth,
		webhooks:   cfg.Webhooks,
		configPath: cfg.ConfigPath,
		tickWait:   cfg.TickWait,
		metrics:    NewServerMetrics(),
		log:        log,
	}
	rs.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	rs.setupRoutes()
	return rs
}

func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	api.POST("/auth/login", rs.handleLogin)

	protected := api.Group("/")
	protected.Use(rs.jwtMiddleware())
	{
		protected.GET("/server", rs.handleServerInfo)
		protected.GET("/features", rs.handleFeatures)
		protected.GET("/spawners", rs.handleListSpawners)
		protected.GET("/spawners/:dim/:x/:y/:z", rs.handleGetSpawner)

		admin := protected.Group("/")
		admin.Use(rs.adminMiddleware())
		{
			admin.POST("/spawners/:dim/:x/:y/:z/reset", rs.handleResetSpawner)
			admin.POST("/config/reload", rs.handleReloadConfig)
			admin.POST("/admin/register", rs.handleRegister)

			admin.GET("/admin/webhooks", rs.handleGetWebhooks)
			admin.POST("/admin/webhooks", rs.handleCreateWebhook)
			admin.GET("/admin/webhooks/events", rs.handleGetWebhookEventTypes)
			admin.GET("/admin/webhooks/:id", rs.handleGetWebhook)
			admin.DELETE("/admin/webhooks/:id", rs.handleDeleteWebhook)
		}
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// Start слушает порт в отдельной горутине
func (rs *RestServer) Start() {
	go func() {
		rs.log.Info("REST API запущен на %s", rs.httpServer.Addr)
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.log.Error("Ошибка REST API: %v", err)
		}
	}()
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Shutdown(ctx context.Context) error {
	return rs.httpServer.Shutdown(ctx)
}

// GenericResponse - общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Message: "Неверный формат запроса"})
		return
	}

	token, expires, acc, err := rs.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrBadCredentials) {
		rs.log.Warn("Неудачный вход: %s", req.Username)
		c.JSON(http.StatusUnauthorized, LoginResponse{Message: "Неверное имя пользователя или пароль"})
		return
	}
	if err != nil {
		rs.log.Error("Ошибка входа %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, LoginResponse{Message: "Внутренняя ошибка сервера"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		Message:   "Вход выполнен",
		Token:     token,
		ExpiresAt: expires,
		IsAdmin:   acc.IsAdmin,
	})
}

func (rs *RestServer) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: "Неверный формат запроса"})
		return
	}

	acc, err := rs.auth.Register(c.Request.Context(), req.Username, req.Password, req.IsAdmin)
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		c.JSON(http.StatusConflict, GenericResponse{Message: "Пользователь уже существует"})
		return
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, GenericResponse{
			Message: fmt.Sprintf("Пароль должен быть не короче %d символов", auth.MinPasswordLength),
		})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, GenericResponse{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: "Пользователь создан",
		Data: gin.H{
			"id":       acc.ID,
			"username": acc.Username,
			"is_admin": acc.IsAdmin,
		},
	})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	data := gin.H{
		"uptime": rs.metrics.GetUptime(),
		"memory": rs.metrics.GetDetailedMemoryStats(),
	}
	if cpu, err := rs.metrics.GetCPUUsage(); err == nil {
		data["cpu_percent"] = cpu
	}
	if rss, err := rs.metrics.GetRSS(); err == nil {
		data["rss_mb"] = rss
	}
	if rs.world != nil {
		data["dimension"] = rs.world.Dimension().String()
		data["tick"] = rs.world.CurrentTick()
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: data})
}
