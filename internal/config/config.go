package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/ticd/internal/dispatch"
	"github.com/danmuck/ticd/internal/logging"
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
	"github.com/danmuck/ticd/internal/protocol/task"
	"github.com/danmuck/ticd/internal/transport/udp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("config: invalid")

const (
	DefaultListenAddr = "127.0.0.1:7400"
	DefaultAdminAddr  = "127.0.0.1:7401"
)

// NodeConfig is the resolved configuration of one ticd node.
type NodeConfig struct {
	NodeID             string
	ListenAddr         string
	AdminAddr          string
	AdminToken         string
	Limits             task.Limits
	BypassReadyTaskIDs []protocol.TaskID
	RequireInitData    bool
	LogLevel           zerolog.Level
	LogFile            string
	CorsOrigins        []string
}

type fileConfig struct {
	NodeID             string   `toml:"node_id"`
	ListenAddr         string   `toml:"listen_addr"`
	AdminAddr          string   `toml:"admin_addr"`
	AdminToken         string   `toml:"admin_token"`
	PayloadBytes       int      `toml:"payload_bytes"`
	MetaBytes          int      `toml:"meta_bytes"`
	BypassReadyTaskIDs []int    `toml:"bypass_ready_task_ids"`
	RequireInitData    bool     `toml:"require_init_data"`
	LogLevel           string   `toml:"log_level"`
	LogFile            string   `toml:"log_file"`
	CorsOrigins        []string `toml:"cors_origins"`
}

func DefaultConfig() NodeConfig {
	return NodeConfig{
		NodeID:      uuid.NewString(),
		ListenAddr:  DefaultListenAddr,
		AdminAddr:   DefaultAdminAddr,
		Limits:      task.DefaultLimits(),
		LogLevel:    zerolog.InfoLevel,
		CorsOrigins: []string{"http://localhost:3000"},
	}
}

// Load overlays the keys defined in path onto DefaultConfig and validates
// the result.
func Load(path string) (NodeConfig, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return NodeConfig{}, fmt.Errorf("load ticd config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return NodeConfig{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}

	if meta.IsDefined("node_id") {
		if id := strings.TrimSpace(raw.NodeID); id != "" {
			cfg.NodeID = id
		}
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("admin_token") {
		cfg.AdminToken = strings.TrimSpace(raw.AdminToken)
	}
	if meta.IsDefined("payload_bytes") {
		cfg.Limits.PayloadBytes = raw.PayloadBytes
	}
	if meta.IsDefined("meta_bytes") {
		cfg.Limits.MetaBytes = raw.MetaBytes
	}
	if meta.IsDefined("bypass_ready_task_ids") {
		ids, err := taskIDs(raw.BypassReadyTaskIDs)
		if err != nil {
			return NodeConfig{}, err
		}
		cfg.BypassReadyTaskIDs = ids
	}
	if meta.IsDefined("require_init_data") {
		cfg.RequireInitData = raw.RequireInitData
	}
	if meta.IsDefined("log_level") {
		level, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return NodeConfig{}, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, raw.LogLevel)
		}
		cfg.LogLevel = level
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}

	if err := Validate(cfg); err != nil {
		return NodeConfig{}, err
	}
	return cfg, nil
}

func Validate(cfg NodeConfig) error {
	if strings.TrimSpace(cfg.NodeID) == "" {
		return fmt.Errorf("%w: node_id is required", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: listen_addr %q: %v", ErrInvalidConfig, cfg.ListenAddr, err)
	}
	if cfg.AdminAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.AdminAddr); err != nil {
			return fmt.Errorf("%w: admin_addr %q: %v", ErrInvalidConfig, cfg.AdminAddr, err)
		}
	}
	if err := cfg.Limits.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Limits.MetaBytes < udp.MinMetaBytes {
		return fmt.Errorf("%w: meta_bytes=%d cannot hold a peer address, need at least %d", ErrInvalidConfig, cfg.Limits.MetaBytes, udp.MinMetaBytes)
	}
	if uint64(header.Size+cfg.Limits.PayloadBytes) > uint64(^uint32(0)) {
		return fmt.Errorf("%w: payload_bytes %d overflows len_bytes", ErrInvalidConfig, cfg.Limits.PayloadBytes)
	}
	return nil
}

// PolicyOptions returns the dispatch policy options implied by the config.
func (c NodeConfig) PolicyOptions() []dispatch.PolicyOption {
	if len(c.BypassReadyTaskIDs) == 0 {
		return nil
	}
	return []dispatch.PolicyOption{dispatch.WithBypassTaskIDs(c.BypassReadyTaskIDs...)}
}

func (c NodeConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	cfg.Level = c.LogLevel
	if c.LogFile != "" {
		cfg.File = logging.FileConfig{
			Path:       c.LogFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		}
	}
	return cfg
}

func taskIDs(in []int) ([]protocol.TaskID, error) {
	out := make([]protocol.TaskID, 0, len(in))
	for _, v := range in {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: bypass_ready_task_ids entry %d out of range", ErrInvalidConfig, v)
		}
		out = append(out, protocol.TaskID(v))
	}
	return out, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		if v := strings.TrimSpace(origin); v != "" {
			out = append(out, v)
		}
	}
	return out
}
