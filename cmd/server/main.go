package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/api"
	"github.com/annel0/blockverse-tweaks/internal/app"
	"github.com/annel0/blockverse-tweaks/internal/auth"
	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/eventbus"
	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/observability"
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или TWEAKS_CONFIG)")
	flag.Parse()

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *configPath == "" {
		*configPath = os.Getenv("TWEAKS_CONFIG")
	}

	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	level := logging.ParseLevel(cfg.Logging.Level)
	logging.Default().SetLevels(level, logging.TRACE)
	logging.GetLoggerManager().SetConsoleLevel(level)
	defer func() {
		if err := logging.GetLoggerManager().CloseAll(); err != nil {
			logging.Warn("⚠️  Ошибка закрытия логов компонентов: %v", err)
		}
	}()

	logging.Info("🎮 Запуск blockverse-tweaks...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)
	if err != nil {
		logging.Warn("⚠️  OpenTelemetry не инициализирован: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// === ШИНА СОБЫТИЙ ===
	bus, err := app.OpenBus(cfg.EventBus)
	if err != nil {
		logging.Error("❌ Ошибка подключения шины событий: %v", err)
		os.Exit(1)
	}
	if _, err := eventbus.StartLoggingListener(ctx, bus, logging.GetComponentLogger("events")); err != nil {
		logging.Warn("⚠️  Логирование событий недоступно: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.Start()

	// === ХРАНИЛИЩА ===
	repo, err := app.OpenRepo(ctx, cfg.Storage)
	if err != nil {
		logging.Error("❌ Ошибка открытия хранилища %s: %v", cfg.Storage.Backend, err)
		os.Exit(1)
	}

	accounts, err := app.OpenAccounts(ctx, cfg.Auth)
	if err != nil {
		logging.Error("❌ Ошибка открытия хранилища учётных записей %s: %v", cfg.Auth.Backend, err)
		os.Exit(1)
	}
	issuer, err := auth.NewTokenIssuer(cfg.Server.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Error("❌ Неверный server.jwt_secret: %v", err)
		os.Exit(1)
	}
	if cfg.Server.JWTSecret == "" {
		logging.Warn("⚠️  server.jwt_secret не задан: токены будут недействительны после перезапуска")
	}
	authService := auth.NewService(accounts, issuer)
	if _, err := authService.Bootstrap(ctx, cfg.Auth.AdminUser, cfg.Auth.GetAdminPassword()); err != nil {
		logging.Error("❌ Не удалось создать администратора: %v", err)
	}

	// === МИР И ТВИКИ ===
	wcfg := world.DefaultConfig()
	wcfg.Seed = cfg.World.Seed
	if dim, ok := resource.TryParse(cfg.World.Dimension); ok {
		wcfg.Dimension = dim
	} else {
		logging.Warn("⚠️  Неверное измерение %q, используется %s", cfg.World.Dimension, wcfg.Dimension)
	}
	if cfg.World.ChunkDir != "" {
		chunks, err := world.NewFileChunkStore(cfg.World.ChunkDir)
		if err != nil {
			logging.Error("❌ Ошибка открытия хранилища чанков: %v", err)
			os.Exit(1)
		}
		wcfg.Chunks = chunks
	}
	w := world.New(wcfg)

	tweaks := app.New(cfg, app.Options{Repo: repo, Bus: bus, Registerer: reg})
	tweaks.Attach(w)

	gen := world.NewGenerator(cfg.World.Seed)
	gen.MaxSpawners = cfg.World.Spawners
	placed := gen.Populate(w, vec.Vec2{}, cfg.World.Radius)
	logging.Info("🌍 Мир %s: расставлено спаунеров: %d", w.Dimension(), len(placed))

	// === ВНЕШНИЕ ИНТЕРФЕЙСЫ ===
	webhooks := api.NewOutboundWebhookManager(cfg.Telemetry.ServiceName, reg)
	webhooks.LoadConfig(cfg.Webhooks)
	if err := webhooks.Start(ctx, bus); err != nil {
		logging.Warn("⚠️  Исходящие webhook'и недоступны: %v", err)
	}

	restPort := cfg.Server.GetRESTPort()
	rest := api.NewRestServer(api.Config{
		Port:       restPort,
		Tweaks:     tweaks,
		World:      w,
		Auth:       authService,
		Webhooks:   webhooks,
		Registerer: reg,
		Gatherer:   reg,
		ConfigPath: *configPath,
	})
	rest.Start()

	metricsPort := cfg.Server.GetMetricsPort()
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", metricsPort),
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка сервера метрик: %v", err)
		}
	}()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		w.Run(ctx, cfg.Server.TickRate, cfg.Storage.FlushEvery)
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost:%d", restPort)
	logging.Info("   📈 Метрики: http://localhost:%d/metrics", metricsPort)
	logging.Info("   💾 Хранилище: %s, шина событий: %s, учётные записи: %s",
		cfg.Storage.Backend, cfg.EventBus.Backend, cfg.Auth.Backend)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := rest.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	_ = metricsServer.Shutdown(shutdownCtx)

	// Остановка мира выполняет финальное сохранение счётчиков
	cancel()
	<-worldDone

	tweaks.Close()
	webhooks.Stop()
	exporter.Stop()
	if err := repo.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия хранилища: %v", err)
	}
	if err := authService.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия хранилища учётных записей: %v", err)
	}
	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия шины событий: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
