package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	RateLimit     RateLimitConfig
	AuthRateLimit AuthRateLimitConfig
	Geocoding     GeocodingConfig
	Search        SearchConfig
	Import        ImportConfig
	Seed          SeedConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"STORELOCATOR_APP_ENV" required:"true"`
	Port         string `envconfig:"STORELOCATOR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STORELOCATOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STORELOCATOR_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STORELOCATOR_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STORELOCATOR_DB_DSN"`
	Driver string `envconfig:"STORELOCATOR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STORELOCATOR_DB_HOST"`
	LegacyPort     int    `envconfig:"STORELOCATOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STORELOCATOR_DB_USER"`
	LegacyPassword string `envconfig:"STORELOCATOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"STORELOCATOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"STORELOCATOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STORELOCATOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STORELOCATOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STORELOCATOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STORELOCATOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STORELOCATOR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STORELOCATOR_REDIS_ADDR"`
	Password     string        `envconfig:"STORELOCATOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"STORELOCATOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STORELOCATOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STORELOCATOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STORELOCATOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STORELOCATOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STORELOCATOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                string `envconfig:"STORELOCATOR_JWT_SECRET" required:"true"`
	Issuer                string `envconfig:"STORELOCATOR_JWT_ISSUER" default:"storelocator"`
	AccessTokenTTLMinutes int    `envconfig:"STORELOCATOR_ACCESS_TOKEN_EXPIRE_MINUTES" default:"15"`
	RefreshTokenTTLDays   int    `envconfig:"STORELOCATOR_REFRESH_TOKEN_EXPIRE_DAYS" default:"7"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.AccessTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STORELOCATOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STORELOCATOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STORELOCATOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STORELOCATOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STORELOCATOR_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	PerMinute int `envconfig:"STORELOCATOR_RATE_LIMIT_PER_MINUTE" default:"10"`
	PerHour   int `envconfig:"STORELOCATOR_RATE_LIMIT_PER_HOUR" default:"100"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STORELOCATOR_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"STORELOCATOR_LOGIN_RATE_IP_LIMIT" default:"10"`
	LoginEmailLimit int           `envconfig:"STORELOCATOR_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
}

type GeocodingConfig struct {
	BaseURL        string        `envconfig:"STORELOCATOR_GEOCODING_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent      string        `envconfig:"STORELOCATOR_GEOCODING_USER_AGENT" default:"storelocator-backend"`
	RequestTimeout time.Duration `envconfig:"STORELOCATOR_GEOCODING_REQUEST_TIMEOUT" default:"5s"`
	MaxAttempts    int           `envconfig:"STORELOCATOR_GEOCODING_MAX_ATTEMPTS" default:"3"`
	CacheTTLDays   int           `envconfig:"STORELOCATOR_GEOCODING_CACHE_TTL_DAYS" default:"30"`
}

// CacheTTL returns the geocoding cache lifetime.
func (g GeocodingConfig) CacheTTL() time.Duration {
	if g.CacheTTLDays <= 0 {
		return 0
	}
	return time.Duration(g.CacheTTLDays) * 24 * time.Hour
}

type SearchConfig struct {
	ResultsCacheTTLMinutes int     `envconfig:"STORELOCATOR_SEARCH_RESULTS_CACHE_TTL_MINUTES" default:"10"`
	DefaultRadiusMiles     float64 `envconfig:"STORELOCATOR_SEARCH_DEFAULT_RADIUS_MILES" default:"10"`
	MaxRadiusMiles         float64 `envconfig:"STORELOCATOR_SEARCH_MAX_RADIUS_MILES" default:"100"`
}

// ResultsCacheTTL returns the search results cache lifetime.
func (s SearchConfig) ResultsCacheTTL() time.Duration {
	if s.ResultsCacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.ResultsCacheTTLMinutes) * time.Minute
}

type ImportConfig struct {
	Concurrency int `envconfig:"STORELOCATOR_IMPORT_CONCURRENCY" default:"4"`
	MaxRows     int `envconfig:"STORELOCATOR_IMPORT_MAX_ROWS" default:"10000"`
}

type SeedConfig struct {
	AdminEmail    string `envconfig:"STORELOCATOR_SEED_ADMIN_EMAIL" default:"admin@test.com"`
	AdminPassword string `envconfig:"STORELOCATOR_SEED_ADMIN_PASSWORD"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STORELOCATOR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STORELOCATOR_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
