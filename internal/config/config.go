package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации сервера твиков.
type Config struct {
	Features  FeaturesConfig  `yaml:"features"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	World     WorldConfig     `yaml:"world"`
	Auth      AuthConfig      `yaml:"auth"`
	Webhooks  []WebhookConfig `yaml:"webhooks"`
}

// FeaturesConfig - настройки игровых функций, сгруппированные по модулям
type FeaturesConfig struct {
	TemporarySpawners TemporarySpawnersConfig `yaml:"temporary_spawners"`
	CustomStackSize   CustomStackSizeConfig   `yaml:"custom_stack_size"`
}

// TemporarySpawnersConfig - «спаунеры больше не спавнят мобов бесконечно»
type TemporarySpawnersConfig struct {
	Enabled bool `yaml:"enabled"`
	// Минимум мобов у точки спавна мира; лимит = (min + расстояние/8) * multiplier
	MinSpawnableMobs int     `yaml:"min_spawnable_mobs"`
	Multiplier       float64 `yaml:"spawnable_mobs_multiplier"`
	// +100% опыта за разрушение спаунера на каждые 1024 блока от точки спавна
	BonusExperience bool `yaml:"bonus_experience_far_from_spawn"`
	// Предмет, которым можно снова включить отключённый спаунер
	ReagentItem string `yaml:"reagent_item"`
	// Мобы (и опционально измерения), чьи спаунеры не отключаются: "minecraft:blaze,minecraft:the_nether"
	EntityBlacklist            []string `yaml:"entity_blacklist"`
	EntityBlacklistAsWhitelist bool     `yaml:"entity_blacklist_as_whitelist"`
}

// CustomStackSizeConfig - "modid:itemid,size" или "#modid:tag,size"
type CustomStackSizeConfig struct {
	Enabled          bool     `yaml:"enabled"`
	CustomStackSizes []string `yaml:"custom_stack_sizes"`
}

// StorageConfig выбирает хранилище счётчиков спаунеров
type StorageConfig struct {
	Backend string       `yaml:"backend"` // memory | badger | redis | maria
	Badger  BadgerConfig `yaml:"badger"`
	Redis   RedisConfig  `yaml:"redis"`
	Maria   MariaConfig  `yaml:"maria"`
	// Период сброса изменённых счётчиков в хранилище
	FlushEvery time.Duration `yaml:"flush_every"`
}

type BadgerConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type MariaConfig struct {
	DSN string `yaml:"dsn"`
}

type EventBusConfig struct {
	Backend   string `yaml:"backend"` // memory | jetstream
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type ServerConfig struct {
	RESTPort    int    `yaml:"rest_port"`
	MetricsPort int    `yaml:"metrics_port"`
	JWTSecret   string `yaml:"jwt_secret"` // base64, минимум 32 байта
	TickRate    int    `yaml:"tick_rate"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// AuthConfig - учётные записи админ-API
type AuthConfig struct {
	Backend  string        `yaml:"backend"` // memory | maria | mongo
	Maria    MariaConfig   `yaml:"maria"`
	Mongo    MongoConfig   `yaml:"mongo"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	// Администратор, создаваемый при пустом хранилище учётных записей.
	// Пароль можно передать через TWEAKS_ADMIN_PASSWORD.
	AdminUser     string `yaml:"admin_user"`
	AdminPassword string `yaml:"admin_password"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// GetAdminPassword возвращает пароль администратора: config -> env
func (a *AuthConfig) GetAdminPassword() string {
	if a.AdminPassword != "" {
		return a.AdminPassword
	}
	return os.Getenv("TWEAKS_ADMIN_PASSWORD")
}

// WebhookConfig - исходящий webhook, получающий события твиков
type WebhookConfig struct {
	Name       string        `yaml:"name"`
	URL        string        `yaml:"url"`
	Secret     string        `yaml:"secret"` // HMAC-SHA256 подпись тела
	Events     []string      `yaml:"events"` // "*" - все события
	RetryCount int           `yaml:"retry_count"`
	Timeout    time.Duration `yaml:"timeout"`
}

// WorldConfig - параметры демонстрационного мира
type WorldConfig struct {
	Seed      int64  `yaml:"seed"`
	Dimension string `yaml:"dimension"`
	Radius    int    `yaml:"radius"`
	Spawners  int    `yaml:"spawners"`
	ChunkDir  string `yaml:"chunk_dir"` // каталог выгруженных чанков; пусто - в памяти
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Features: FeaturesConfig{
			TemporarySpawners: TemporarySpawnersConfig{
				Enabled:          true,
				MinSpawnableMobs: 25,
				Multiplier:       1.0,
				BonusExperience:  true,
				EntityBlacklist:  []string{},
			},
			CustomStackSize: CustomStackSizeConfig{
				Enabled:          true,
				CustomStackSizes: []string{},
			},
		},
		Storage: StorageConfig{
			Backend:    "memory",
			Badger:     BadgerConfig{Path: "data"},
			Redis:      RedisConfig{Addr: "localhost:6379", Key: "tweaks:spawners"},
			FlushEvery: 30 * time.Second,
		},
		EventBus: EventBusConfig{
			Backend:   "memory",
			URL:       "nats://127.0.0.1:4222",
			Stream:    "TWEAKS",
			Retention: 24,
			Buffer:    1024,
		},
		Server: ServerConfig{
			TickRate: 20,
		},
		Logging: LoggingConfig{
			Level: "INFO",
			Dir:   "logs",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "blockverse-tweaks",
		},
		World: WorldConfig{
			Seed:      12345,
			Dimension: "minecraft:overworld",
			Radius:    2048,
			Spawners:  32,
		},
		Auth: AuthConfig{
			Backend:   "memory",
			Mongo:     MongoConfig{URI: "mongodb://localhost:27017", Database: "blockverse"},
			TokenTTL:  24 * time.Hour,
			AdminUser: "admin",
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "TWEAKS_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "TWEAKS_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Validate приводит значения к допустимым диапазонам
func (c *Config) Validate() error {
	ts := &c.Features.TemporarySpawners
	if ts.MinSpawnableMobs < 0 {
		ts.MinSpawnableMobs = 0
	}
	if ts.Multiplier < 0 {
		ts.Multiplier = 0
	}
	if c.Server.TickRate <= 0 {
		c.Server.TickRate = 20
	}

	switch c.Storage.Backend {
	case "", "memory", "badger", "redis", "maria":
	default:
		return fmt.Errorf("неизвестное хранилище %q", c.Storage.Backend)
	}
	switch c.EventBus.Backend {
	case "", "memory", "jetstream":
	default:
		return fmt.Errorf("неизвестная шина событий %q", c.EventBus.Backend)
	}
	switch c.Auth.Backend {
	case "", "memory", "maria", "mongo":
	default:
		return fmt.Errorf("неизвестное хранилище учётных записей %q", c.Auth.Backend)
	}
	for i, wh := range c.Webhooks {
		if wh.URL == "" {
			return fmt.Errorf("webhook #%d: пустой url", i)
		}
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV TWEAKS_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TWEAKS_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse разбирает YAML поверх значений по умолчанию
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
