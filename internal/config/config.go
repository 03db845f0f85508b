package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port   string // サーバーポート（8080）
	AppEnv string // dev/prod
	//debug/info/warn/error
	LogLevel string

	DBDriver    string // postgres / mysql / sqlite
	DatabaseURL string // 指定があれば最優先

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDB       string

	JWTSecret string        // JWT署名シークレット
	JWTTTL    time.Duration // トークン有効期限（24h）

	UploadDir       string // 画像の保存先
	UploadMaxBytes  int64
	PublicImagePath string // 画像の公開パス（/images）

	CORSOrigins []string

	RazorpayKeyID     string
	RazorpayKeySecret string
	PaymentCurrency   string

	KafkaBrokers []string // 空ならイベントは送らない
	KafkaTopic   string

	AdminEmail    string
	AdminUsername string
	AdminPassword string

	SeedSampleData bool
}

// Loadは環境変数（.envがあれば先に読む）
func Load() (Config, error) {
	_ = godotenv.Load()

	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	myPort, err := atoiDefault("MYSQL_PORT", 3306)
	if err != nil {
		return Config{}, err
	}
	maxBytes, err := atoiDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("JWT_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	seed, err := boolDefault("SEED_SAMPLE_DATA", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		MySQLHost:     getenv("MYSQL_HOST", "localhost"),
		MySQLPort:     myPort,
		MySQLUser:     getenv("MYSQL_USER", "root"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDB:       getenv("MYSQL_DB", "storefront"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    ttl,

		UploadDir:       getenv("UPLOAD_DIR", "./public/images"),
		UploadMaxBytes:  int64(maxBytes),
		PublicImagePath: getenv("PUBLIC_IMAGE_PATH", "/images"),

		CORSOrigins: splitCSV(getenv("CORS_ORIGINS", "*")),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		PaymentCurrency:   getenv("PAYMENT_CURRENCY", "INR"),

		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "order_events"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		SeedSampleData: seed,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "mysql":
	case "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for sqlite")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, mysql or sqlite")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.AdminEmail != "" && len(c.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
