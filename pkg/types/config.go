package types

import "errors"

// Config holds the persistent note store settings.
type Config struct {
	// SlotBackend selects where the serialized database snapshot lives.
	SlotBackend string `json:"slot_backend" yaml:"slot_backend"`
	// SlotKey is the key the snapshot is stored under.
	SlotKey string `json:"slot_key" yaml:"slot_key"`
	// DataDir holds the file slot and the chunk database.
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// QuotaBytes caps the encoded snapshot size; zero means unlimited.
	QuotaBytes int64 `json:"quota_bytes" yaml:"quota_bytes"`
	// WarnBytes is the encoded size above which saves log a warning.
	WarnBytes int64 `json:"warn_bytes" yaml:"warn_bytes"`
	// RedisAddr is the redis server for the redis slot backend.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`
}

// Supported slot backends.
const (
	SlotFile   = "file"
	SlotRedis  = "redis"
	SlotMemory = "memory"
)

// Storage defaults.
const (
	DefaultSlotKey    = "noteapp_database"
	DefaultQuotaBytes = 5 * 1024 * 1024
	DefaultWarnBytes  = 4 * 1024 * 1024
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("slot backend must not be empty")
	ErrBackendUnknown = errors.New("unknown slot backend")
	ErrQuotaInvalid   = errors.New("quota must not be negative")
	ErrRedisAddrEmpty = errors.New("redis slot requires an address")
)

var knownBackends = map[string]bool{
	SlotFile:   true,
	SlotRedis:  true,
	SlotMemory: true,
}

// DefaultConfig returns a file-slot configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		SlotBackend: SlotFile,
		SlotKey:     DefaultSlotKey,
		DataDir:     dataDir,
		QuotaBytes:  DefaultQuotaBytes,
		WarnBytes:   DefaultWarnBytes,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.SlotBackend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.SlotBackend] {
		return ErrBackendUnknown
	}
	if c.QuotaBytes < 0 || c.WarnBytes < 0 {
		return ErrQuotaInvalid
	}
	if c.SlotBackend == SlotRedis && c.RedisAddr == "" {
		return ErrRedisAddrEmpty
	}
	return nil
}

// Key returns the slot key, falling back to DefaultSlotKey.
func (c Config) Key() string {
	if c.SlotKey == "" {
		return DefaultSlotKey
	}
	return c.SlotKey
}
