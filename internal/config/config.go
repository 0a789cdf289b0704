// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// GlobalConfig is the top-level static configuration. Maps to the
// `cefnetd:` root key in YAML.
type GlobalConfig struct {
	Node       NodeConfig       `mapstructure:"node"`
	Control    ControlConfig    `mapstructure:"control"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
	FIB        FIBConfig        `mapstructure:"fib"`
	Ccninfo    CcninfoConfig    `mapstructure:"ccninfo"`
	Validation ValidationConfig `mapstructure:"validation"`
	Face       FaceConfig       `mapstructure:"face"`
}

// ─── Node Identity ───

// NodeConfig identifies this router on the wire (Ccninfo node-id stamps,
// route-message face resolution).
type NodeConfig struct {
	IP       string `mapstructure:"ip"`       // empty = auto-detect
	Hostname string `mapstructure:"hostname"` // empty = os.Hostname()
}

// ─── Control Plane ───

// ControlConfig contains local control plane settings: the route-message
// socket and the daemon's pidfile.
type ControlConfig struct {
	Socket  string `mapstructure:"socket"`
	PIDFile string `mapstructure:"pid_file"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── FIB ───

// FIBConfig points at the whitespace-separated route config file loaded
// at startup, per spec.md §4.2.5.
type FIBConfig struct {
	ConfigFile string `mapstructure:"config_file"`
}

// ─── Ccninfo ───

// CcninfoConfig controls default discovery-request parameters for a
// node originating its own requests. On-path hop-limit exhaustion is
// judged against each packet's own fixed-header hop_limit, not this
// value -- see ccninfo.ProcessRequest.
type CcninfoConfig struct {
	HopLimit byte `mapstructure:"hop_limit"`
}

// ─── Validation ───

// ValidationConfig selects the default validation algorithm and, for
// keyed algorithms, its key material.
type ValidationConfig struct {
	Algorithm string `mapstructure:"algorithm"` // "" | "crc32" | "sha256"
	Key       string `mapstructure:"key"`       // HMAC key for "sha256"
}

// ─── Faces ───

// FaceConfig controls which link-layer faces the daemon listens on at
// startup, in addition to any faces the control plane creates on demand
// while resolving a route message's hosts.
type FaceConfig struct {
	Listen []ListenConfig `mapstructure:"listen"`
	Raw    RawFaceConfig  `mapstructure:"raw"`
}

// ListenConfig is one TCP or UDP socket the daemon accepts Cefore
// packets on.
type ListenConfig struct {
	Protocol string `mapstructure:"protocol"` // "tcp" | "udp"
	Address  string `mapstructure:"address"`
}

// RawFaceConfig configures the optional AF_PACKET-backed raw face
// (internal/face/rawface), off by default since it needs CAP_NET_RAW.
type RawFaceConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Interface  string `mapstructure:"interface"`
	SnapLen    int    `mapstructure:"snap_len"`
	BufferSize int    `mapstructure:"buffer_size"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
	Filter     string `mapstructure:"filter"`
	FanoutID   int    `mapstructure:"fanout_id"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure
// `cefnetd: ...`.
type configRoot struct {
	Cefnetd GlobalConfig `mapstructure:"cefnetd"`
}

// Load loads configuration from file. The YAML file uses `cefnetd:` as
// root key; env vars use CEFNETD_ prefix (e.g. CEFNETD_LOG_LEVEL).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Cefnetd

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cefnetd.control.pid_file", "/var/run/cefnetd.pid")
	v.SetDefault("cefnetd.control.socket", "/var/run/cefnetd.sock")

	v.SetDefault("cefnetd.log.level", "info")
	v.SetDefault("cefnetd.log.format", "json")
	v.SetDefault("cefnetd.log.outputs.file.enabled", false)
	v.SetDefault("cefnetd.log.outputs.file.path", "/var/log/cefnetd/cefnetd.log")
	v.SetDefault("cefnetd.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("cefnetd.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("cefnetd.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("cefnetd.log.outputs.file.rotation.compress", true)

	v.SetDefault("cefnetd.metrics.enabled", true)
	v.SetDefault("cefnetd.metrics.listen", ":9091")
	v.SetDefault("cefnetd.metrics.path", "/metrics")

	v.SetDefault("cefnetd.fib.config_file", "/etc/cefnetd/fib.conf")
	v.SetDefault("cefnetd.ccninfo.hop_limit", 32)
	v.SetDefault("cefnetd.validation.algorithm", "")

	v.SetDefault("cefnetd.face.raw.enabled", false)
	v.SetDefault("cefnetd.face.raw.snap_len", 65535)
	v.SetDefault("cefnetd.face.raw.buffer_size", 2<<20)
	v.SetDefault("cefnetd.face.raw.timeout_ms", 100)
	v.SetDefault("cefnetd.face.raw.fanout_id", 0)
}

// ValidateAndApplyDefaults validates configuration and resolves the
// node hostname/IP.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}
	if cfg.Validation.Algorithm != "" && cfg.Validation.Algorithm != "crc32" && cfg.Validation.Algorithm != "sha256" {
		return fmt.Errorf("invalid validation.algorithm: %s (must be crc32/sha256/empty)", cfg.Validation.Algorithm)
	}

	if cfg.Node.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		cfg.Node.Hostname = hostname
	}

	resolvedIP, err := ResolveNodeIP(cfg.Node.IP)
	if err != nil {
		return err
	}
	cfg.Node.IP = resolvedIP

	return nil
}

// ResolveNodeIP resolves this host's node identifier for Ccninfo stamps
// and route-message face resolution: an explicit value wins; otherwise
// the first non-loopback, non-link-local IPv4 address; finally an error
// if neither is available. Unlike the Ccninfo originator's node-id
// detection of spec.md §4.3.1, it has no IPv6 or 127.0.0.1 fallback.
func ResolveNodeIP(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("cannot resolve node IP: failed to list interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			if ip4[0] == 169 && ip4[1] == 254 {
				continue
			}
			return ip4.String(), nil
		}
	}

	return "", fmt.Errorf("cannot resolve node IP: set CEFNETD_NODE_IP or cefnetd.node.ip")
}
