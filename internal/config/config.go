package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "mapanimations.cfg.json"

// AnimationConfig holds scheduler and animator settings
type AnimationConfig struct {
	FPS                 int     `json:"fps" mapstructure:"fps"`
	GeneralizeTolerance float64 `json:"generalizeTolerance" mapstructure:"generalizeTolerance"`
}

// DemoConfig holds scenario runner settings
type DemoConfig struct {
	Scenario         string        `json:"scenario" mapstructure:"scenario"`
	Origin           string        `json:"origin" mapstructure:"origin"`
	MaxDestinations  int           `json:"maxDestinations" mapstructure:"maxDestinations"`
	Geodesic         bool          `json:"geodesic" mapstructure:"geodesic"`
	MaxAltitude      float64       `json:"maxAltitude" mapstructure:"maxAltitude"`
	SpatialReference int           `json:"spatialReference" mapstructure:"spatialReference"`
	MaxStartDelay    time.Duration `json:"maxStartDelay" mapstructure:"maxStartDelay"`
	SpeedStep        float64       `json:"speedStep" mapstructure:"speedStep"`
	Generalize       bool          `json:"generalize" mapstructure:"generalize"`
	HeadingAttribute string        `json:"headingAttribute" mapstructure:"headingAttribute"`
	RouteFile        string        `json:"routeFile" mapstructure:"routeFile"`
	RouteSpeed       float64       `json:"routeSpeed" mapstructure:"routeSpeed"`
	Timeout          time.Duration `json:"timeout" mapstructure:"timeout"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	Path         string        `json:"path" mapstructure:"path"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// WebSocketConfig holds streaming backend settings
type WebSocketConfig struct {
	URL        string        `json:"url" mapstructure:"url"`
	Secret     string        `json:"secret" mapstructure:"secret"`
	AckTimeout time.Duration `json:"ackTimeout" mapstructure:"ackTimeout"`
}

// InfluxConfig holds InfluxDB backend settings
type InfluxConfig struct {
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Protocol  string `json:"protocol" mapstructure:"protocol"`
	Token     string `json:"token" mapstructure:"token"`
	Org       string `json:"org" mapstructure:"org"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
	BackupDir string `json:"backupDir" mapstructure:"backupDir"`
}

// StorageConfig selects and configures the frame recording backend
type StorageConfig struct {
	Type       string          `json:"type" mapstructure:"type"`
	RecordRate float64         `json:"recordRate" mapstructure:"recordRate"`
	Memory     MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite     SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket  WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	Postgres   DBConfig        `json:"-" mapstructure:"-"`
	Influx     InfluxConfig    `json:"-" mapstructure:"-"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout   time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" mapstructure:"insecure"`
	MetricInterval time.Duration `json:"metricInterval" mapstructure:"metricInterval"`
}

// MonitorConfig holds status reporting settings
type MonitorConfig struct {
	Enabled  bool          `json:"enabled" mapstructure:"enabled"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("animation.fps", 60)
	viper.SetDefault("animation.generalizeTolerance", 500.0)

	viper.SetDefault("demo.scenario", "both")
	viper.SetDefault("demo.origin", "lhr")
	viper.SetDefault("demo.maxDestinations", 0)
	viper.SetDefault("demo.geodesic", true)
	viper.SetDefault("demo.maxAltitude", 0.0)
	viper.SetDefault("demo.spatialReference", 3857)
	viper.SetDefault("demo.maxStartDelay", "15s")
	viper.SetDefault("demo.speedStep", 10000.0)
	viper.SetDefault("demo.generalize", false)
	viper.SetDefault("demo.headingAttribute", "HEADING")
	viper.SetDefault("demo.routeFile", "")
	viper.SetDefault("demo.routeSpeed", 2000.0)
	viper.SetDefault("demo.timeout", "5m")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.recordRate", 10.0)
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "1m")
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/ingest")
	viper.SetDefault("storage.websocket.secret", "")
	viper.SetDefault("storage.websocket.ackTimeout", "10s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "mapanimations")
	viper.SetDefault("db.sslMode", "disable")

	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "mapanimations")
	viper.SetDefault("influx.bucket", "frames")
	viper.SetDefault("influx.backupDir", "./recordings")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "mapanimations")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
	viper.SetDefault("otel.metricInterval", "30s")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetAnimationConfig returns the scheduler and animator settings.
func GetAnimationConfig() AnimationConfig {
	return AnimationConfig{
		FPS:                 viper.GetInt("animation.fps"),
		GeneralizeTolerance: viper.GetFloat64("animation.generalizeTolerance"),
	}
}

// GetDemoConfig returns the scenario runner settings.
func GetDemoConfig() DemoConfig {
	return DemoConfig{
		Scenario:         viper.GetString("demo.scenario"),
		Origin:           viper.GetString("demo.origin"),
		MaxDestinations:  viper.GetInt("demo.maxDestinations"),
		Geodesic:         viper.GetBool("demo.geodesic"),
		MaxAltitude:      viper.GetFloat64("demo.maxAltitude"),
		SpatialReference: viper.GetInt("demo.spatialReference"),
		MaxStartDelay:    viper.GetDuration("demo.maxStartDelay"),
		SpeedStep:        viper.GetFloat64("demo.speedStep"),
		Generalize:       viper.GetBool("demo.generalize"),
		HeadingAttribute: viper.GetString("demo.headingAttribute"),
		RouteFile:        viper.GetString("demo.routeFile"),
		RouteSpeed:       viper.GetFloat64("demo.routeSpeed"),
		Timeout:          viper.GetDuration("demo.timeout"),
	}
}

// GetStorageConfig returns the recording backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:       viper.GetString("storage.type"),
		RecordRate: viper.GetFloat64("storage.recordRate"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			Path:         viper.GetString("storage.sqlite.path"),
		},
		WebSocket: WebSocketConfig{
			URL:        viper.GetString("storage.websocket.url"),
			Secret:     viper.GetString("storage.websocket.secret"),
			AckTimeout: viper.GetDuration("storage.websocket.ackTimeout"),
		},
		Postgres: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
			SSLMode:  viper.GetString("db.sslMode"),
		},
		Influx: InfluxConfig{
			Host:      viper.GetString("influx.host"),
			Port:      viper.GetString("influx.port"),
			Protocol:  viper.GetString("influx.protocol"),
			Token:     viper.GetString("influx.token"),
			Org:       viper.GetString("influx.org"),
			Bucket:    viper.GetString("influx.bucket"),
			BackupDir: viper.GetString("influx.backupDir"),
		},
	}
}

// GetMonitorConfig returns the status reporting settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:  viper.GetBool("monitor.enabled"),
		Interval: viper.GetDuration("monitor.interval"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
	}
}
