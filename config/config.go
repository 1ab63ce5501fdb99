package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type Config struct {
	ServerPort  string
	BaseURL     string
	DatabaseDSN string

	AccessSecret  string
	EncryptionKey string

	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	CloudinaryUrl string

	Google OAuthProvider
	Kakao  OAuthProvider
	Naver  OAuthProvider

	OAuthRedirectSuccess string
	OAuthRedirectFailure string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:  getEnv("SERVER_PORT", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		AccessSecret:  os.Getenv("ACCESS_SECRET"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		CloudinaryUrl: os.Getenv("CLOUDINARY_URL"),

		Google: OAuthProvider{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URI"),
		},
		Kakao: OAuthProvider{
			ClientID:     os.Getenv("KAKAO_CLIENT_ID"),
			ClientSecret: os.Getenv("KAKAO_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("KAKAO_REDIRECT_URI"),
		},
		Naver: OAuthProvider{
			ClientID:     os.Getenv("NAVER_CLIENT_ID"),
			ClientSecret: os.Getenv("NAVER_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("NAVER_REDIRECT_URI"),
		},

		OAuthRedirectSuccess: getEnv("OAUTH_REDIRECT_SUCCESS", "http://localhost:3001/auth/success"),
		OAuthRedirectFailure: getEnv("OAUTH_REDIRECT_FAILURE", "http://localhost:3001/auth/failure"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
