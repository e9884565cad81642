package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "arttoys"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ARTTOYS_APP_ENV" required:"true"`
	Port         string `envconfig:"ARTTOYS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARTTOYS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARTTOYS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ARTTOYS_DB_DSN"`

	Host     string `envconfig:"ARTTOYS_DB_HOST"`
	Port     int    `envconfig:"ARTTOYS_DB_PORT" default:"5432"`
	User     string `envconfig:"ARTTOYS_DB_USER"`
	Password string `envconfig:"ARTTOYS_DB_PASSWORD"`
	Name     string `envconfig:"ARTTOYS_DB_NAME"`
	SSLMode  string `envconfig:"ARTTOYS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARTTOYS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARTTOYS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARTTOYS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARTTOYS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARTTOYS_REDIS_URL"`
	Address      string        `envconfig:"ARTTOYS_REDIS_ADDR"`
	Password     string        `envconfig:"ARTTOYS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARTTOYS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARTTOYS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARTTOYS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARTTOYS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARTTOYS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARTTOYS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARTTOYS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARTTOYS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ARTTOYS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARTTOYS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARTTOYS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARTTOYS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARTTOYS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARTTOYS_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ARTTOYS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARTTOYS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	pieces := map[string]string{
		"ARTTOYS_DB_HOST": db.Host,
		"ARTTOYS_DB_USER": db.User,
		"ARTTOYS_DB_NAME": db.Name,
	}
	for _, key := range []string{"ARTTOYS_DB_HOST", "ARTTOYS_DB_USER", "ARTTOYS_DB_NAME"} {
		if pieces[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either ARTTOYS_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
