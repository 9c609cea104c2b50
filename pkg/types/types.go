package types

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type LovebugConfig struct {
	Port           string   `env:"PORT,required,notEmpty"`
	Host           string   `env:"HOST" envDefault:"0.0.0.0"`
	MongodbUrl     string   `env:"MONGODB_URL,required,notEmpty"`
	DatabaseName   string   `env:"DATABASE_NAME" envDefault:"lovebug_map"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	TwitterApiKey            string `env:"TWITTER_API_KEY"`
	TwitterApiSecret         string `env:"TWITTER_API_SECRET"`
	TwitterAccessToken       string `env:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessTokenSecret string `env:"TWITTER_ACCESS_TOKEN_SECRET"`
	TwitterBearerToken       string `env:"TWITTER_BEARER_TOKEN"`
	TwitterApiBaseUrl        string `env:"TWITTER_API_BASE_URL" envDefault:"https://api.twitter.com"`

	OpenaiApiKey string `env:"OPENAI_API_KEY"`
	OpenaiModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	Environment          string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"INFO"`
	CrawlIntervalMinutes int    `env:"CRAWL_INTERVAL_MINUTES" envDefault:"10"`
	MaxCrawlResults      int    `env:"MAX_CRAWL_RESULTS" envDefault:"100"`

	RedisUrl        string `env:"REDIS_URL"`
	CacheTtlSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	Timezone    string `env:"TIMEZONE" envDefault:"Asia/Seoul"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`
	AdminApiKey string `env:"ADMIN_API_KEY"`
}

// LoadConfig reads an optional .env file into the process environment and
// parses the environment once.
func LoadConfig() (*LovebugConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error parsing .env: %w", err)
	}

	return ParseConfig(nil)
}

// ParseConfig parses and validates the configuration. A nil environment
// means the process environment.
func ParseConfig(environment map[string]string) (*LovebugConfig, error) {
	config := LovebugConfig{}

	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.ParseWithOptions(&config, opts); err != nil {
		return nil, err
	}

	origins := config.AllowedOrigins[:0]
	for _, origin := range config.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	config.AllowedOrigins = origins

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *LovebugConfig) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port))
	}

	if c.CrawlIntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("CRAWL_INTERVAL_MINUTES must be positive, got %d", c.CrawlIntervalMinutes))
	}

	if c.MaxCrawlResults <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CRAWL_RESULTS must be positive, got %d", c.MaxCrawlResults))
	}

	if c.CacheTtlSeconds <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.CacheTtlSeconds))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if (c.TwitterApiKey == "") != (c.TwitterApiSecret == "") {
		errs = append(errs, errors.New("TWITTER_API_KEY and TWITTER_API_SECRET must be set together"))
	}

	if (c.TwitterAccessToken == "") != (c.TwitterAccessTokenSecret == "") {
		errs = append(errs, errors.New("TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_TOKEN_SECRET must be set together"))
	}

	if _, err := url.Parse(c.TwitterApiBaseUrl); err != nil {
		errs = append(errs, fmt.Errorf("TWITTER_API_BASE_URL is invalid: %w", err))
	}

	if c.RedisUrl != "" {
		if _, err := redis.ParseURL(c.RedisUrl); err != nil {
			errs = append(errs, fmt.Errorf("REDIS_URL is invalid: %w", err))
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE is invalid: %w", err))
	}

	return errors.Join(errs...)
}

func (c *LovebugConfig) CrawlInterval() time.Duration {
	return time.Duration(c.CrawlIntervalMinutes) * time.Minute
}

func (c *LovebugConfig) CacheTtl() time.Duration {
	return time.Duration(c.CacheTtlSeconds) * time.Second
}

func (c *LovebugConfig) HasTwitterCredentials() bool {
	return c.TwitterBearerToken != "" || c.TwitterApiKey != ""
}

// RedactedMongodbUrl hides the password part of the connection string.
func (c *LovebugConfig) RedactedMongodbUrl() string {
	u, err := url.Parse(c.MongodbUrl)
	if err != nil {
		return redactUserinfo(c.MongodbUrl)
	}

	return u.Redacted()
}

// redactUserinfo masks everything between the scheme and the last '@' of a
// connection string url.Parse rejected.
func redactUserinfo(raw string) string {
	at := strings.LastIndex(raw, "@")
	if at < 0 {
		return raw
	}

	prefix := ""
	if scheme, _, ok := strings.Cut(raw, "://"); ok {
		prefix = scheme + "://"
	}

	return prefix + "xxxxx@" + raw[at+1:]
}

// AllowsAnyOrigin reports whether the CORS allow-list is the wildcard.
func (c *LovebugConfig) AllowsAnyOrigin() bool {
	for _, origin := range c.AllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}

	return len(c.AllowedOrigins) == 0
}
