// Package config loads runtime settings from defaults, an optional yaml
// file, and HIGHLIGHTAI_* environment variables, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Storage struct {
		Path         string `mapstructure:"path"`
		RawBucket    string `mapstructure:"raw_bucket"`
		EditedBucket string `mapstructure:"edited_bucket"`
	} `mapstructure:"storage"`

	Speech struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"speech"`

	Vision struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"vision"`

	Transcode struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"transcode"`

	Title struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"title"`

	Tools struct {
		FFmpeg  string `mapstructure:"ffmpeg"`
		FFprobe string `mapstructure:"ffprobe"`
	} `mapstructure:"tools"`

	Logging struct {
		Verbose bool `mapstructure:"verbose"`
		JSON    bool `mapstructure:"json"`
	} `mapstructure:"logging"`
}

// Init sets defaults, reads the optional config file, and wires env
// overrides. Call once at startup.
func Init() error {
	once.Do(func() {
		setDefaults()

		viper.SetEnvPrefix("HIGHLIGHTAI")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
					return
				}
			}
		}

		initErr = validate()
	})
	return initErr
}

// Load returns the configuration as a struct. Init must run first.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "./data/highlightai.db")
	viper.SetDefault("storage.path", "./data/objects")
	viper.SetDefault("storage.raw_bucket", "raw-videos")
	viper.SetDefault("storage.edited_bucket", "edited-videos")
	viper.SetDefault("speech.base_url", "")
	viper.SetDefault("speech.api_key", "")
	viper.SetDefault("vision.base_url", "")
	viper.SetDefault("vision.api_key", "")
	viper.SetDefault("transcode.base_url", "")
	viper.SetDefault("transcode.api_key", "")
	viper.SetDefault("title.base_url", "")
	viper.SetDefault("title.api_key", "")
	viper.SetDefault("title.model", "")
	viper.SetDefault("tools.ffmpeg", "ffmpeg")
	viper.SetDefault("tools.ffprobe", "ffprobe")
	viper.SetDefault("logging.verbose", false)
	viper.SetDefault("logging.json", false)
}

func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}
	if viper.GetString("database.path") == "" {
		return fmt.Errorf("database path is required")
	}
	if viper.GetString("storage.path") == "" {
		return fmt.Errorf("storage path is required")
	}
	return nil
}
