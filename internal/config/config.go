// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vladimirvolkov/hoopshot/internal/game"
)

type Config struct {
	Port           string
	StaticDir      string
	AllowedOrigins []string
	LogLevel       string

	// CourseFile is a YAML course; empty means the built-in court.
	CourseFile string

	MaxConnsPerIP int
	MsgRate       int // messages per second per IP
	MaxSessions   int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STATIC_DIR", "../client/dist")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("COURSE_FILE", "")
	v.SetDefault("MAX_CONNS_PER_IP", 4)
	v.SetDefault("MSG_RATE", 120)
	v.SetDefault("MAX_SESSIONS", 100)
}

// Load reads .env (if present) and the process environment over the defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		StaticDir:     v.GetString("STATIC_DIR"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		CourseFile:    v.GetString("COURSE_FILE"),
		MaxConnsPerIP: v.GetInt("MAX_CONNS_PER_IP"),
		MsgRate:       v.GetInt("MSG_RATE"),
		MaxSessions:   v.GetInt("MAX_SESSIONS"),
	}
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	if cfg.MaxConnsPerIP <= 0 || cfg.MsgRate <= 0 {
		return nil, fmt.Errorf("MAX_CONNS_PER_IP and MSG_RATE must be positive, got %d and %d", cfg.MaxConnsPerIP, cfg.MsgRate)
	}
	return cfg, nil
}

// Course returns the fixed default court unless COURSE_FILE overrides some of its values.
func (c *Config) Course() (game.Course, error) {
	if c.CourseFile == "" {
		return game.DefaultCourse(), nil
	}
	course, err := game.LoadCourseFile(c.CourseFile)
	if err != nil {
		return game.Course{}, fmt.Errorf("course %s: %w", c.CourseFile, err)
	}
	return course, nil
}
