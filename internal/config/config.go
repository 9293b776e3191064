package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port string
	Env  string

	DB DB

	// TZOffset is the business timezone as a UTC offset, e.g. "+05:30".
	// Dashboard buckets convert stored UTC timestamps to this zone.
	TZOffset string

	SMTP   SMTP
	Twilio Twilio
	Drive  Drive

	// URLs rendered as QR codes in the invoice footer.
	FeedbackURL  string
	InstagramURL string
}

type DB struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type Twilio struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
}

type Drive struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RefreshToken string
	FolderID     string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (loaded by main) > default.
func Load() Config {
	return Config{
		Port:     getEnv("PORT", "3001"),
		Env:      getEnv("APP_ENV", "development"),
		TZOffset: getEnv("BUSINESS_TZ_OFFSET", "+05:30"),
		DB: DB{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "invoices"),
		},
		SMTP: SMTP{
			Host: os.Getenv("SMTP_HOST"),
			Port: parseInt("SMTP_PORT", 587),
			User: os.Getenv("EMAIL_USER"),
			Pass: os.Getenv("EMAIL_PASS"),
			From: getEnv("EMAIL_FROM", os.Getenv("EMAIL_USER")),
		},
		Twilio: Twilio{
			AccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
			WhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		},
		Drive: Drive{
			ClientID:     os.Getenv("GOOGLE_DRIVE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_DRIVE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_DRIVE_REDIRECT_URI"),
			RefreshToken: os.Getenv("GOOGLE_DRIVE_REFRESH_TOKEN"),
			FolderID:     os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		},
		FeedbackURL:  getEnv("FEEDBACK_FORM_URL", "https://forms.gle/m8R2yVTzMPMAX8dm6"),
		InstagramURL: getEnv("INSTAGRAM_URL", "https://www.instagram.com/embellish._nj/"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}
