package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/notereel/internal/paths"
	"github.com/mesh-intelligence/notereel/internal/recording"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "NOTEREEL"

	cfgKeySlotBackend  = "slot.backend"
	cfgKeySlotKey      = "slot.key"
	cfgKeySlotQuota    = "slot.quota_bytes"
	cfgKeySlotWarn     = "slot.warn_bytes"
	cfgKeySlotRedis    = "slot.redis_addr"
	cfgKeyDataDir      = "data_dir"
	cfgKeyExportDir    = "export_dir"
	cfgKeyFPS          = "recording.fps"
	cfgKeyTimeslice    = "recording.timeslice"
	cfgKeyMaxDuration  = "recording.max_duration"
	cfgKeyFFmpegPath   = "recording.ffmpeg_path"
	cfgKeyNarrationWAV = "recording.narration_wav"
	cfgKeyLogLevel     = "log.level"
	cfgKeyLogFormat    = "log.format"
)

const defaultLogLevel = "warn"

var envKeys = []string{
	cfgKeySlotBackend, cfgKeySlotKey, cfgKeySlotQuota, cfgKeySlotWarn, cfgKeySlotRedis,
	cfgKeyFPS, cfgKeyTimeslice, cfgKeyMaxDuration, cfgKeyFFmpegPath, cfgKeyNarrationWAV,
	cfgKeyLogLevel, cfgKeyLogFormat,
}

// configFile is the layout of config.yaml. It is only used to write the
// default file; reads go through viper.
type configFile struct {
	Slot struct {
		Backend    string `yaml:"backend"`
		Key        string `yaml:"key"`
		QuotaBytes int64  `yaml:"quota_bytes"`
		WarnBytes  int64  `yaml:"warn_bytes"`
		RedisAddr  string `yaml:"redis_addr,omitempty"`
	} `yaml:"slot"`
	DataDir   string `yaml:"data_dir,omitempty"`
	ExportDir string `yaml:"export_dir,omitempty"`
	Recording struct {
		FPS          int    `yaml:"fps"`
		Timeslice    string `yaml:"timeslice"`
		MaxDuration  string `yaml:"max_duration"`
		FFmpegPath   string `yaml:"ffmpeg_path"`
		NarrationWAV bool   `yaml:"narration_wav"`
	} `yaml:"recording"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaultConfigFile() configFile {
	var c configFile
	c.Slot.Backend = types.SlotFile
	c.Slot.Key = types.DefaultSlotKey
	c.Slot.QuotaBytes = types.DefaultQuotaBytes
	c.Slot.WarnBytes = types.DefaultWarnBytes
	c.Recording.FPS = recording.DefaultFPS
	c.Recording.Timeslice = recording.DefaultTimeslice.String()
	c.Recording.MaxDuration = types.MaxRecordingDuration.String()
	c.Recording.FFmpegPath = recording.DefaultFFmpegPath
	c.Log.Level = defaultLogLevel
	c.Log.Format = "text"
	return c
}

// settings is the resolved configuration of one CLI invocation.
type settings struct {
	ConfigDir string
	DataDir   string
	ExportDir string
	Store     types.Config

	FPS          int
	Timeslice    time.Duration
	MaxDuration  time.Duration
	FFmpegPath   string
	NarrationWAV bool

	LogLevel  string
	LogFormat string
}

// loadConfig reads config.yaml from configDir with viper. The directory and
// a default config.yaml are created on first run. NOTEREEL_* environment
// variables override file values, e.g. NOTEREEL_SLOT_BACKEND.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	def := defaultConfigFile()
	v.SetDefault(cfgKeySlotBackend, def.Slot.Backend)
	v.SetDefault(cfgKeySlotKey, def.Slot.Key)
	v.SetDefault(cfgKeySlotQuota, def.Slot.QuotaBytes)
	v.SetDefault(cfgKeySlotWarn, def.Slot.WarnBytes)
	v.SetDefault(cfgKeySlotRedis, "")
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyExportDir, "")
	v.SetDefault(cfgKeyFPS, def.Recording.FPS)
	v.SetDefault(cfgKeyTimeslice, def.Recording.Timeslice)
	v.SetDefault(cfgKeyMaxDuration, def.Recording.MaxDuration)
	v.SetDefault(cfgKeyFFmpegPath, def.Recording.FFmpegPath)
	v.SetDefault(cfgKeyNarrationWAV, false)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogFormat, def.Log.Format)

	// data_dir and export_dir have their own env chain in paths.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes config.yaml with default values unless the
// file already exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# notereel configuration\n# Values can be overridden with NOTEREEL_* environment variables.\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// resolveSettings combines flags, config values and environment into
// settings.
func resolveSettings(f *rootFlags) (*settings, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	exportDir, err := paths.ResolveExportDir(v.GetString(cfgKeyExportDir), dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve export dir: %w", err)
	}

	s := &settings{
		ConfigDir: configDir,
		DataDir:   dataDir,
		ExportDir: exportDir,
		Store: types.Config{
			SlotBackend: v.GetString(cfgKeySlotBackend),
			SlotKey:     v.GetString(cfgKeySlotKey),
			DataDir:     dataDir,
			QuotaBytes:  v.GetInt64(cfgKeySlotQuota),
			WarnBytes:   v.GetInt64(cfgKeySlotWarn),
			RedisAddr:   v.GetString(cfgKeySlotRedis),
		},
		FPS:          v.GetInt(cfgKeyFPS),
		Timeslice:    v.GetDuration(cfgKeyTimeslice),
		MaxDuration:  v.GetDuration(cfgKeyMaxDuration),
		FFmpegPath:   v.GetString(cfgKeyFFmpegPath),
		NarrationWAV: v.GetBool(cfgKeyNarrationWAV),
		LogLevel:     v.GetString(cfgKeyLogLevel),
		LogFormat:    v.GetString(cfgKeyLogFormat),
	}
	if f.logLevel != "" {
		s.LogLevel = f.logLevel
	}
	if s.MaxDuration <= 0 || s.MaxDuration > types.MaxRecordingDuration {
		s.MaxDuration = types.MaxRecordingDuration
	}
	if err := s.Store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}
	return s, nil
}
