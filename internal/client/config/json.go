package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/readkeeper/internal/flagx"
	"github.com/dmitrijs2005/readkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerBaseURL        *string         `json:"server_base_url"`
	APIPrefix            *string         `json:"api_prefix"`
	ListenAddr           *string         `json:"listen_addr"`
	DatabasePath         *string         `json:"database_path"`
	OnlineCheckInterval  *timex.Duration `json:"online_check_interval"`
	ProgressPollInterval *timex.Duration `json:"progress_poll_interval"`
	PositionSaveInterval *timex.Duration `json:"position_save_interval"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	AnchorOffset         *float64        `json:"anchor_offset"`
	CachePrefix          *string         `json:"cache_prefix"`
	CacheVersion         *string         `json:"cache_version"`
	ManifestPath         *string         `json:"manifest_path"`
	LogLevel             *string         `json:"log_level"`
	LogFormat            *string         `json:"log_format"`
	ViewCacheSize        *int            `json:"view_cache_size"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.APIPrefix, jc.APIPrefix)
	setString(&cfg.ListenAddr, jc.ListenAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.CachePrefix, jc.CachePrefix)
	setString(&cfg.CacheVersion, jc.CacheVersion)
	setString(&cfg.ManifestPath, jc.ManifestPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ProgressPollInterval != nil {
		cfg.ProgressPollInterval = jc.ProgressPollInterval.Duration
	}
	if jc.PositionSaveInterval != nil {
		cfg.PositionSaveInterval = jc.PositionSaveInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AnchorOffset != nil {
		cfg.AnchorOffset = *jc.AnchorOffset
	}
	if jc.ViewCacheSize != nil {
		cfg.ViewCacheSize = *jc.ViewCacheSize
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
