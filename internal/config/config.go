package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/salonhq/salon-api/internal/model"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Booking  BookingConfig  `mapstructure:"booking"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// BookingConfig carries the slot-grid profiles. The legacy system
// hard-coded hours per call site (09:00-18:00 for scheduled bookings,
// 09:00-21:00 in 15-minute steps for walk-ins); here both are configuration.
type BookingConfig struct {
	Scheduled SlotProfile `mapstructure:"scheduled"`
	WalkIn    SlotProfile `mapstructure:"walk_in"`
}

// SlotProfile defines one availability grid: opening and closing times of
// day plus the slot width.
type SlotProfile struct {
	Open            string `mapstructure:"open"`
	Close           string `mapstructure:"close"`
	IntervalMinutes int    `mapstructure:"interval_minutes"`
}

// Bounds parses the profile's opening hours into minutes since midnight.
func (p SlotProfile) Bounds() (open, close int, err error) {
	open, err = model.ParseTimeOfDay(p.Open)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid opening time: %w", err)
	}
	close, err = model.ParseTimeOfDay(p.Close)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid closing time: %w", err)
	}
	if close <= open {
		return 0, 0, fmt.Errorf("closing time %s not after opening time %s", p.Close, p.Open)
	}
	return open, close, nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("booking.scheduled.open", "09:00")
	viper.SetDefault("booking.scheduled.close", "18:00")
	viper.SetDefault("booking.scheduled.interval_minutes", 60)
	viper.SetDefault("booking.walk_in.open", "09:00")
	viper.SetDefault("booking.walk_in.close", "21:00")
	viper.SetDefault("booking.walk_in.interval_minutes", 15)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
