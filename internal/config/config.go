package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
	AWSRegion    string `mapstructure:"AWS_REGION"`
	DeliveryFee  string `mapstructure:"DELIVERY_FEE"` // flat fee per delivery, e.g. "50.00"
	OrderPrefix  string `mapstructure:"ORDER_PREFIX"` // brand prefix on order numbers
	StripeAPIKey string
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DELIVERY_FEE", "50.00")
	viper.SetDefault("ORDER_PREFIX", "FE")
	viper.SetDefault("AWS_REGION", "ap-south-1")

	viper.AutomaticEnv() // Read in environment variables that match

	err := viper.ReadInConfig()
	if err != nil {
		// Allow a missing .env file, everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")

	return &cfg, nil
}
