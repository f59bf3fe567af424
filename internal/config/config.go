package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/units"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SITESIZE_OBJECT_STORE_BUCKET
const EnvPrefix = "SITESIZE"

// Config represents the entire application configuration
type Config struct {
	ObjectStore ObjectStoreConfig `mapstructure:"object_store"`
	Local       LocalConfig       `mapstructure:"local"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Sites       SitesConfig       `mapstructure:"sites"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ObjectStoreConfig contains bucket access and layout settings
type ObjectStoreConfig struct {
	Region           string `mapstructure:"region"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	AccessSecret     string `mapstructure:"access_secret"`
	Bucket           string `mapstructure:"bucket"`
	UploadsPrefix    string `mapstructure:"uploads_prefix"`
	ChildSitesPrefix string `mapstructure:"child_sites_prefix"`
	UsePathStyle     bool   `mapstructure:"use_path_style"`
	ListPageSize     int    `mapstructure:"list_page_size"`
	RequestTimeout   string `mapstructure:"request_timeout"`
}

// LocalConfig contains local upload directory settings
type LocalConfig struct {
	UploadsDir    string `mapstructure:"uploads_dir"`
	ChildSitesDir string `mapstructure:"child_sites_dir"`
}

// CacheConfig contains size cache settings
type CacheConfig struct {
	PersistentStaleness string `mapstructure:"persistent_staleness"`
	MemoryDuration      string `mapstructure:"memory_duration"`
	ListingViewTTL      string `mapstructure:"listing_view_ttl"`
	GuardLease          string `mapstructure:"guard_lease"`
	MaxEntries          int    `mapstructure:"max_entries"`
}

// SitesConfig contains network settings
type SitesConfig struct {
	NetworkDomain string `mapstructure:"network_domain"`
	DefaultQuota  string `mapstructure:"default_quota"` // e.g. "1GiB"
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr        string `mapstructure:"bind_addr"`
	AdminUsername   string `mapstructure:"admin_username"`
	AdminPassword   string `mapstructure:"admin_password"`
	ViewerUsername  string `mapstructure:"viewer_username"`
	ViewerPassword  string `mapstructure:"viewer_password"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	IdleTimeout     string `mapstructure:"idle_timeout"`
	RefreshInterval string `mapstructure:"refresh_interval"` // minimum time between forced refreshes of one site
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"` // stderr, stdout or a file path
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	CacheSizeMB   int    `mapstructure:"cache_size_mb"`
	BusyTimeoutMs int    `mapstructure:"busy_timeout_ms"`
}

// MaintenanceConfig contains background maintenance settings
type MaintenanceConfig struct {
	GuardCheckInterval string `mapstructure:"guard_check_interval"`
	PruneInterval      string `mapstructure:"prune_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("object_store.region", "")
	v.SetDefault("object_store.endpoint", "")
	v.SetDefault("object_store.access_key", "")
	v.SetDefault("object_store.access_secret", "")
	v.SetDefault("object_store.bucket", "")
	v.SetDefault("object_store.uploads_prefix", "uploads")
	v.SetDefault("object_store.child_sites_prefix", "sites")
	v.SetDefault("object_store.use_path_style", false)
	v.SetDefault("object_store.list_page_size", 1000)
	v.SetDefault("object_store.request_timeout", "30s")
	v.SetDefault("local.uploads_dir", "")
	v.SetDefault("local.child_sites_dir", "sites")
	v.SetDefault("cache.persistent_staleness", "12h")
	v.SetDefault("cache.memory_duration", "1h")
	v.SetDefault("cache.listing_view_ttl", "15s")
	v.SetDefault("cache.guard_lease", "10m")
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("sites.network_domain", "")
	v.SetDefault("sites.default_quota", "1GiB")
	v.SetDefault("http.bind_addr", "0.0.0.0:8080")
	v.SetDefault("http.admin_username", "admin")
	v.SetDefault("http.admin_password", "")
	v.SetDefault("http.viewer_username", "")
	v.SetDefault("http.viewer_password", "")
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "5m")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.refresh_interval", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("database.path", "/var/lib/site-size-cache/sizes.db")
	v.SetDefault("database.cache_size_mb", 64)
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("maintenance.guard_check_interval", "1m")
	v.SetDefault("maintenance.prune_interval", "10m")
}

// Load loads configuration from the specified file path.
// An empty path uses defaults and environment overrides only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Object store layout
	if strings.Trim(c.ObjectStore.ChildSitesPrefix, "/") == "" {
		return fmt.Errorf("object_store.child_sites_prefix is required")
	}
	if c.ObjectStore.ListPageSize < 0 || c.ObjectStore.ListPageSize > 1000 {
		return fmt.Errorf("object_store.list_page_size must be between 0 and 1000")
	}
	if (c.ObjectStore.AccessKey == "") != (c.ObjectStore.AccessSecret == "") {
		return fmt.Errorf("object_store.access_key and object_store.access_secret must be set together")
	}

	// Durations
	durations := map[string]string{
		"object_store.request_timeout":     c.ObjectStore.RequestTimeout,
		"cache.persistent_staleness":       c.Cache.PersistentStaleness,
		"cache.memory_duration":            c.Cache.MemoryDuration,
		"cache.listing_view_ttl":           c.Cache.ListingViewTTL,
		"cache.guard_lease":                c.Cache.GuardLease,
		"http.refresh_interval":            c.HTTP.RefreshInterval,
		"maintenance.guard_check_interval": c.Maintenance.GuardCheckInterval,
		"maintenance.prune_interval":       c.Maintenance.PruneInterval,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		} else if d < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}

	// The memory tier must not outlive the persistent one
	if c.Cache.GetMemoryDuration() > c.Cache.GetPersistentStaleness() {
		return fmt.Errorf("cache.memory_duration (%s) must not exceed cache.persistent_staleness (%s)",
			c.Cache.GetMemoryDuration(), c.Cache.GetPersistentStaleness())
	}

	if _, err := c.Sites.GetDefaultQuota(); err != nil {
		return err
	}

	if c.HTTP.AdminPassword != "" && c.HTTP.AdminUsername == "" {
		return fmt.Errorf("http.admin_username is required when http.admin_password is set")
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || s == "" {
		return fallback
	}
	return d
}

// GetRequestTimeout returns the per-page listing timeout
func (c *ObjectStoreConfig) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, 30*time.Second)
}

// GetPersistentStaleness returns how long a persisted size is served
func (c *CacheConfig) GetPersistentStaleness() time.Duration {
	return parseDuration(c.PersistentStaleness, 12*time.Hour)
}

// GetMemoryDuration returns the base lifetime of an in-memory size
func (c *CacheConfig) GetMemoryDuration() time.Duration {
	return parseDuration(c.MemoryDuration, time.Hour)
}

// GetListingViewTTL returns the memory lifetime used for listing views
func (c *CacheConfig) GetListingViewTTL() time.Duration {
	return parseDuration(c.ListingViewTTL, 15*time.Second)
}

// GetGuardLease returns how long a recompute guard is honoured
func (c *CacheConfig) GetGuardLease() time.Duration {
	return parseDuration(c.GuardLease, 10*time.Minute)
}

// GetDefaultQuota returns the default site quota in bytes
func (c *SitesConfig) GetDefaultQuota() (int64, error) {
	if c.DefaultQuota == "" {
		return 0, nil
	}
	q, err := units.ParseBase2Bytes(c.DefaultQuota)
	if err != nil {
		return 0, fmt.Errorf("invalid sites.default_quota %q: %w", c.DefaultQuota, err)
	}
	return int64(q), nil
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 5*time.Minute)
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	return parseDuration(c.IdleTimeout, 60*time.Second)
}

// GetRefreshInterval returns the minimum time between forced refreshes of a site
func (c *HTTPConfig) GetRefreshInterval() time.Duration {
	return parseDuration(c.RefreshInterval, 30*time.Second)
}

// GetGuardCheckInterval returns how often expired guards are swept
func (c *MaintenanceConfig) GetGuardCheckInterval() time.Duration {
	return parseDuration(c.GuardCheckInterval, time.Minute)
}

// GetPruneInterval returns how often throttle state is pruned
func (c *MaintenanceConfig) GetPruneInterval() time.Duration {
	return parseDuration(c.PruneInterval, 10*time.Minute)
}
