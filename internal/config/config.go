package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"go-stock-ledger/pkg/database"
	"go-stock-ledger/pkg/mailer"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name          string `yaml:"name"`
	Port          string `yaml:"port"`
	PublicBaseURL string `yaml:"public_base_url"` // e.g. http://127.0.0.1:8000, used in emailed links
	SiteName      string `yaml:"site_name"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
	TimeZone string `yaml:"timezone"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type StorageConfig struct {
	S3Region  string `yaml:"s3_region"`
	S3Bucket  string `yaml:"s3_bucket"`
	UploadDir string `yaml:"upload_dir"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Config struct {
	App     AppConfig     `yaml:"app"`
	DB      DBConfig      `yaml:"database"`
	Mail    MailConfig    `yaml:"mail"`
	Storage StorageConfig `yaml:"storage"`
	Admin   AdminConfig   `yaml:"admin"`
}

// Default returns the settings used when neither YAML nor env override them
func Default() Config {
	return Config{
		App: AppConfig{
			Name:          "Stock Ledger v1.0",
			Port:          "3000",
			PublicBaseURL: "http://127.0.0.1:3000",
			SiteName:      "STOCK LEDGER",
		},
		DB:      DBConfig{Driver: "postgres", TimeZone: "UTC"},
		Mail:    MailConfig{Port: 587, From: "admin@example.com"},
		Storage: StorageConfig{UploadDir: "uploads"},
		Admin:   AdminConfig{Username: "admin", Email: "admin@example.com", Password: "admin123"},
	}
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then env vars
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := Default()
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if err := loadYAML(file, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Database converts the DB section for pkg/database
func (c Config) Database() database.Config {
	return database.Config{
		Driver:   c.DB.Driver,
		DSN:      c.DB.DSN,
		Host:     c.DB.Host,
		User:     c.DB.User,
		Password: c.DB.Password,
		Name:     c.DB.Name,
		Port:     c.DB.Port,
		TimeZone: c.DB.TimeZone,
	}
}

// SMTP converts the mail section for pkg/mailer
func (c Config) SMTP() mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Username,
		Password: c.Mail.Password,
		From:     c.Mail.From,
	}
}

func loadYAML(filename string, cfg *Config) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", filename, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.App.Name, "APP_NAME")
	setString(&cfg.App.Port, "PORT")
	setString(&cfg.App.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.App.SiteName, "SITE_NAME")

	setString(&cfg.DB.Driver, "DB_DRIVER")
	setString(&cfg.DB.DSN, "DATABASE_URL")
	setString(&cfg.DB.Host, "DB_HOST")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")
	setString(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.TimeZone, "DB_TIMEZONE")

	setString(&cfg.Mail.Host, "SMTP_HOST")
	setInt(&cfg.Mail.Port, "SMTP_PORT")
	setString(&cfg.Mail.Username, "SMTP_USER")
	setString(&cfg.Mail.Password, "SMTP_PASSWORD")
	setString(&cfg.Mail.From, "MAIL_FROM")

	setString(&cfg.Storage.S3Region, "AWS_REGION")
	setString(&cfg.Storage.S3Bucket, "S3_BUCKET")
	setString(&cfg.Storage.UploadDir, "UPLOAD_DIR")

	setString(&cfg.Admin.Username, "ADMIN_USERNAME")
	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Printf("Warning: ignoring %s=%q: %v", key, v, err)
		}
	}
}
