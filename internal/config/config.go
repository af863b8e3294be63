package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Blob     BlobConfig     `mapstructure:"blob"`
	ETL      ETLConfig      `mapstructure:"etl"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	IdempotencyTTL  time.Duration `mapstructure:"idempotency_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectInterval time.Duration `mapstructure:"connect_interval"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL is the form golang-migrate and the ETL tooling expect.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig with an empty Addr disables caching and idempotency.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	ConsumerGroup string        `mapstructure:"consumer_group"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	Outbox        bool          `mapstructure:"outbox"`
}

type BlobConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	LogBucket string `mapstructure:"log_bucket"`
}

type ETLConfig struct {
	APIBaseURL    string        `mapstructure:"api_base_url"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	Parallelism   int           `mapstructure:"parallelism"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	WorkDir       string        `mapstructure:"work_dir"`
	RestoreBatch  int           `mapstructure:"restore_batch"`
	BackupPageRow int           `mapstructure:"backup_page_rows"`
}

type ReportConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps config keys to the unprefixed variable names used by
// existing deployments' .env files.
var legacyEnv = map[string]string{
	"db.host":       "DB_HOST",
	"db.port":       "DB_PORT",
	"db.name":       "DB_NAME",
	"db.user":       "DB_USER",
	"db.password":   "DB_PASSWORD",
	"db.sslmode":    "DB_SSLMODE",
	"redis.addr":    "REDIS_ADDR",
	"kafka.brokers": "KAFKA_BROKERS",
	"server.port":   "PORT",
}

// Load reads .env, then an optional config file, then HRDATA_* variables.
// Precedence: environment > file > defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HRDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "HRDATA_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.rate_limit_rps", 50)
	v.SetDefault("server.rate_limit_burst", 100)
	v.SetDefault("server.idempotency_ttl", "24h")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "hrdata")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", "1h")
	v.SetDefault("db.connect_attempts", 30)
	v.SetDefault("db.connect_interval", "1s")
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.consumer_group", "hrdata-report-cache")
	v.SetDefault("kafka.poll_interval", "2s")
	v.SetDefault("kafka.batch_size", 50)
	v.SetDefault("kafka.outbox", false)

	v.SetDefault("blob.endpoint", "localhost:9000")
	v.SetDefault("blob.use_ssl", false)
	v.SetDefault("blob.log_bucket", "etl-logs")

	v.SetDefault("etl.api_base_url", "http://localhost:8000")
	v.SetDefault("etl.chunk_size", 1000)
	v.SetDefault("etl.parallelism", 4)
	v.SetDefault("etl.http_timeout", "60s")
	v.SetDefault("etl.work_dir", "")
	v.SetDefault("etl.restore_batch", 500)
	v.SetDefault("etl.backup_page_rows", 5000)

	v.SetDefault("report.cache_ttl", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be within 1-65535")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("config: db.host and db.name are required")
	}
	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("config: db.connect_attempts must be at least 1")
	}
	if c.ETL.ChunkSize < 1 || c.ETL.ChunkSize > 1000 {
		return fmt.Errorf("config: etl.chunk_size must be within 1-1000")
	}
	if c.ETL.Parallelism < 1 {
		return fmt.Errorf("config: etl.parallelism must be at least 1")
	}
	return nil
}

// splitList accepts both yaml lists and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
