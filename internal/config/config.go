package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Game     GameConfig     `yaml:"game"`
	Files    FilesConfig    `yaml:"files"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GameConfig configures game rules.
type GameConfig struct {
	TargetPoints            int         `yaml:"target_points"`              // score needed to win
	RoundSeconds            int         `yaml:"round_seconds"`              // round duration
	FuzzyThreshold          float64     `yaml:"fuzzy_threshold"`            // similarity acceptance, 0-100
	MaxSubmissionsPerSecond int         `yaml:"max_submissions_per_second"` // per-connection antispam
	MaxPlayersPerRoom       int         `yaml:"max_players_per_room"`       // 0 = unlimited
	PointsByRank            map[int]int `yaml:"points_by_rank"`             // podium table, 0 beyond
}

// FilesConfig configures data and static assets.
type FilesConfig struct {
	QuestionsCSV string `yaml:"questions_csv"`
	StaticDir    string `yaml:"static_dir"`
	ImagesDir    string `yaml:"images_dir"`
}

// SecurityConfig configures connection-level protections.
type SecurityConfig struct {
	AllowedOrigins       []string `yaml:"allowed_origins"`
	ConnectionsPerSecond int      `yaml:"connections_per_second"` // per IP
	MessagesPerSecond    int      `yaml:"messages_per_second"`    // per connection
	MaxConnections       int      `yaml:"max_connections"`
}

// RoundDuration returns the round length.
func (c *GameConfig) RoundDuration() time.Duration {
	return time.Duration(c.RoundSeconds) * time.Second
}

// PointsForRank returns the points for a 1-based podium rank.
func (c *GameConfig) PointsForRank(rank int) int {
	return c.PointsByRank[rank]
}

// Load reads a YAML config file and applies defaults to unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Game.TargetPoints == 0 {
		c.Game.TargetPoints = 15
	}
	if c.Game.RoundSeconds == 0 {
		c.Game.RoundSeconds = 30
	}
	if c.Game.FuzzyThreshold == 0 {
		c.Game.FuzzyThreshold = 90
	}
	if c.Game.MaxSubmissionsPerSecond == 0 {
		c.Game.MaxSubmissionsPerSecond = 5
	}
	if len(c.Game.PointsByRank) == 0 {
		c.Game.PointsByRank = map[int]int{1: 3, 2: 2, 3: 1}
	}
	if c.Files.QuestionsCSV == "" {
		c.Files.QuestionsCSV = "data/items.csv"
	}
	if c.Files.StaticDir == "" {
		c.Files.StaticDir = "static"
	}
	if c.Files.ImagesDir == "" {
		c.Files.ImagesDir = "data/images"
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.ConnectionsPerSecond == 0 {
		c.Security.ConnectionsPerSecond = 10
	}
	if c.Security.MessagesPerSecond == 0 {
		c.Security.MessagesPerSecond = 20
	}
	if c.Security.MaxConnections == 0 {
		c.Security.MaxConnections = 1024
	}
}
