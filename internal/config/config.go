// config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI      string
	MongoDBName   string
	AuthURL       string
	RabbitURL     string
	Port          string
	MerchantName  string
	MerchantCity  string
	EncryptionKey string
}

func Load() *Config {
	// .env es solo para desarrollo local; si no existe, seguimos con el entorno.
	_ = godotenv.Load()

	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "kaiserhaus_db"),
		AuthURL:       getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:     getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:          getEnv("PORT", "8080"),
		MerchantName:  getEnv("MERCHANT_NAME", "Kaiserhaus"),
		MerchantCity:  getEnv("MERCHANT_CITY", "SAO PAULO"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
