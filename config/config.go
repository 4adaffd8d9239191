package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	RPGMaker    RPGMakerConfig    `mapstructure:"rpgmaker"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Security    SecurityConfig    `mapstructure:"security"`
	Script      ScriptConfig      `mapstructure:"script"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type RPGMakerConfig struct {
	DataPath string `mapstructure:"data_path"`
	ImgPath  string `mapstructure:"img_path"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type InterpreterConfig struct {
	FrameRate          int           `mapstructure:"frame_rate"`
	MaxCommandsPerTick int           `mapstructure:"max_commands_per_tick"`
	FlushInterval      time.Duration `mapstructure:"flush_interval"`
	// MaxRunTicks caps POST /api/debug/run.
	MaxRunTicks int `mapstructure:"max_run_ticks"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	// AdminIPs restricts the debug API to these addresses. Empty allows all.
	AdminIPs []string `mapstructure:"admin_ips"`
}

type ScriptConfig struct {
	Engine     string        `mapstructure:"engine"` // goja | expr
	VMPoolSize int           `mapstructure:"vm_pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("rpgmaker.data_path", "./www/data")
	v.SetDefault("rpgmaker.img_path", "./www/img")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/game.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("interpreter.frame_rate", 60)
	v.SetDefault("interpreter.max_commands_per_tick", 100000)
	v.SetDefault("interpreter.flush_interval", "5s")
	v.SetDefault("interpreter.max_run_ticks", 600)
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("script.engine", "goja")
	v.SetDefault("script.vm_pool_size", 8)
	v.SetDefault("script.timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
