package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                int           `env:"PORT" envDefault:"8080"`
	Dsn                 string        `env:"DSN"`
	AutoMigrate         bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	JwtSecret           string        `env:"JWT_SECRET"`
	JwtExpires          string        `env:"JWT_EXPIRES" envDefault:"24h"`
	AdminEmails         []string      `env:"ADMIN_EMAILS" envSeparator:","`
	CloudinaryCloudName string        `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string        `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string        `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string        `env:"CLOUDINARY_FOLDER" envDefault:"complaints"`
	GoogleClientID      string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL   string        `env:"GOOGLE_REDIRECT_URL"`
	RedisURL            string        `env:"REDIS_URL"`
	VoteGuardTTL        time.Duration `env:"VOTE_GUARD_TTL" envDefault:"10s"`
	KafkaBrokers        string        `env:"KAFKA_BROKERS"`
	KafkaTopic          string        `env:"KAFKA_TOPIC" envDefault:"complaint-events"`
	SubmitRatePerMin    int           `env:"SUBMIT_RATE_PER_MIN" envDefault:"6"`
	SubmitBurst         int           `env:"SUBMIT_BURST" envDefault:"3"`
	MaxImageBytes       int64         `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
}

func New() *Config {
	if loadErr := godotenv.Load(".env"); loadErr != nil {
		log.Printf("[Env]: unable to load .env file %v", loadErr)
	}

	var cfg Config

	if parseErr := env.Parse(&cfg); parseErr != nil {
		log.Printf("[Env]: failed to parse environment variables: %v", parseErr)
	}

	return &cfg
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Dsn == "" {
		errs = append(errs, errors.New("DSN is required"))
	}
	if c.JwtSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := time.ParseDuration(c.JwtExpires); err != nil {
		errs = append(errs, errors.New("JWT_EXPIRES must be a duration such as 24h"))
	}
	return errors.Join(errs...)
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
