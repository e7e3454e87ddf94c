package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// EnvPrefix namespaces every environment override, e.g. AUTH_JWT_SECRET.
const EnvPrefix = "AUTH"

type Config struct {
	Env string `mapstructure:"env" validate:"oneof=dev staging prod"`

	HTTP          HTTPConfig          `mapstructure:"http"`
	Log           LogConfig           `mapstructure:"log"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Store         StoreConfig         `mapstructure:"store"`
	Authorization AuthorizationConfig `mapstructure:"authorization"`
	Issuer        IssuerConfig        `mapstructure:"issuer"`

	HousekeepingInterval time.Duration `mapstructure:"housekeeping_interval" validate:"gt=0"`
}

type HTTPConfig struct {
	Addr                string        `mapstructure:"addr" validate:"required"`
	ReadHeaderTimeout   time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// JWTConfig is immutable once loaded. Either Secret or RSAKeyPath must be
// set; with both, tokens are signed RS256 and HS256 tokens still verify.
type JWTConfig struct {
	Secret     string `mapstructure:"secret" validate:"omitempty,min=32"`
	RSAKeyPath string `mapstructure:"rsa_key_path"`
	RSABits    int    `mapstructure:"rsa_bits" validate:"min=2048"`

	Issuer           string `mapstructure:"issuer" validate:"required"`
	Audience         string `mapstructure:"audience" validate:"required"`
	ValidateIssuer   bool   `mapstructure:"validate_issuer"`
	ValidateAudience bool   `mapstructure:"validate_audience"`

	SubjectClaimType string `mapstructure:"subject_claim_type" validate:"required"`
	RoleClaimType    string `mapstructure:"role_claim_type" validate:"required"`

	AccessTTL  time.Duration `mapstructure:"access_ttl" validate:"gt=0"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl" validate:"gt=0"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory sqlite redis postgres"`
	DSN    string `mapstructure:"dsn" validate:"required_unless=Driver memory"`

	// KeyPrefix namespaces keys in a shared redis.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// AuthorizationConfig selects how protected endpoints are authorized and
// which roles are granted what. Grants only come from the config file, and
// viper lower-cases their role names.
type AuthorizationConfig struct {
	Mode        string              `mapstructure:"mode" validate:"oneof=permission route"`
	Permissions map[string][]string `mapstructure:"permissions"`
	Routes      map[string][]string `mapstructure:"routes"`
}

// IssuerConfig covers the trusted callers allowed to mint tokens.
type IssuerConfig struct {
	KeyHash string `mapstructure:"key_hash" validate:"required,startswith=$argon2id$"`
	Pepper  string `mapstructure:"pepper"`

	RateLimit      int           `mapstructure:"rate_limit" validate:"min=1"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" validate:"min=1"`
	RateWindow     time.Duration `mapstructure:"rate_window" validate:"gt=0"`
}

var ErrNoSigningKey = errors.New("config: jwt.secret or jwt.rsa_key_path is required")

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_header_timeout", 3*time.Second)
	v.SetDefault("http.shutdown_grace_period", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.rsa_key_path", "")
	v.SetDefault("jwt.rsa_bits", 2048)
	v.SetDefault("jwt.issuer", "tokenauth")
	v.SetDefault("jwt.audience", "tokenauth")
	v.SetDefault("jwt.validate_issuer", true)
	v.SetDefault("jwt.validate_audience", true)
	v.SetDefault("jwt.subject_claim_type", jwtx.ClaimSubject)
	v.SetDefault("jwt.role_claim_type", jwtx.ClaimRole)
	v.SetDefault("jwt.access_ttl", jwtx.DefaultAccessTokenTTL)
	v.SetDefault("jwt.refresh_ttl", jwtx.DefaultRefreshTokenTTL)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.key_prefix", "tokenauth:")

	v.SetDefault("authorization.mode", "permission")

	v.SetDefault("issuer.key_hash", "")
	v.SetDefault("issuer.pepper", "")
	v.SetDefault("issuer.rate_limit", 30)
	v.SetDefault("issuer.rate_limit_burst", 10)
	v.SetDefault("issuer.rate_window", time.Minute)

	v.SetDefault("housekeeping_interval", time.Hour)
}

// LoadConfig reads defaults, then the config file, then AUTH_* environment
// variables. An empty path searches ./tokenauth.yaml and
// /etc/tokenauth/tokenauth.yaml and tolerates neither existing.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("tokenauth")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/tokenauth")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.JWT.Secret == "" && c.JWT.RSAKeyPath == "" {
		return ErrNoSigningKey
	}
	return nil
}
