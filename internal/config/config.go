package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Storage    Storage    `yaml:"storage"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	Tracing    Tracing    `yaml:"tracing"`
	CORS       CORS       `yaml:"cors"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type Minio struct {
	Endpoint       string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey      string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey      string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL         bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Bucket         string `yaml:"bucket" env-default:"course-assets"`
	PublicBaseURL  string `yaml:"public_base_url" env:"MINIO_PUBLIC_BASE_URL"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env-default:"524288000"`
}

type ES struct {
	Hosts           []string `yaml:"hosts" env:"ES_HOSTS" env-separator:","`
	Index           string   `yaml:"index" env-default:"courses"`
	Password        string   `yaml:"password" env:"ES_PASSWORD"`
	ReindexSchedule string   `yaml:"reindex_schedule" env-default:"@every 1h"`
}

type Redis struct {
	Addr string        `yaml:"addr" env:"REDIS_ADDR"`
	TTL  time.Duration `yaml:"ttl" env-default:"10m"`
}

type JWT struct {
	SecretKey string `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	Issuer    string `yaml:"issuer" env-default:"learnforge"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"PG_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PG_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"PG_USER"`
	Password string `yaml:"password" env:"PG_PASSWORD"`
	DBName   string `yaml:"dbname" env:"PG_DBNAME"`
	Migrate  bool   `yaml:"migrate" env-default:"true"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout        time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"4s"`
}

type Tracing struct {
	Enabled     bool   `yaml:"enabled" env:"TRACING_ENABLED"`
	ServiceName string `yaml:"service_name" env-default:"learnforge"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

func MustLoad() *Config {
	// a missing .env is fine
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Can not read config file %s", err)
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
