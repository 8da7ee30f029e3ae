package app

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/utils"
)

type Config struct {
	Port         string   `yaml:"port"`
	JWTSecret    string   `yaml:"jwt_secret"`
	AllowOrigins []string `yaml:"allow_origins"`
	Environment  string   `yaml:"environment"`
	Version      string   `yaml:"version"`
}

// LoadConfig reads the environment first and then, when CONFIG_PATH points
// at a yaml file, overlays any values the file sets.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		JWTSecret:   utils.GetEnv("JWT_SECRET", "defaultsecret", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("VERSION", "dev", log),
	}
	if origins := utils.GetEnv("ALLOW_ORIGINS", "", log); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
			}
		}
	}

	path := utils.GetEnv("CONFIG_PATH", "", log)
	if path == "" {
		return cfg
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Config file unreadable, using environment only", "path", path, "error", err)
		return cfg
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		log.Warn("Config file did not parse, using environment only", "path", path, "error", err)
		return cfg
	}
	if fileCfg.Port != "" {
		cfg.Port = fileCfg.Port
	}
	if fileCfg.JWTSecret != "" {
		cfg.JWTSecret = fileCfg.JWTSecret
	}
	if len(fileCfg.AllowOrigins) > 0 {
		cfg.AllowOrigins = fileCfg.AllowOrigins
	}
	if fileCfg.Environment != "" {
		cfg.Environment = fileCfg.Environment
	}
	if fileCfg.Version != "" {
		cfg.Version = fileCfg.Version
	}
	return cfg
}
