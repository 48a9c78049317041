package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnv overrides cfg from PASSLOG_* variables. Values that do not parse
// are logged and ignored.
func applyEnv(cfg *Config, logger *slog.Logger) {
	if v := os.Getenv("PASSLOG_INPUT_FOLDER"); v != "" {
		cfg.Input.Folder = v
	}
	if v := os.Getenv("PASSLOG_INPUT_PATTERN"); v != "" {
		cfg.Input.Pattern = v
	}

	envFloat(logger, "PASSLOG_STATION_LAT", &cfg.Station.Latitude)
	envFloat(logger, "PASSLOG_STATION_LON", &cfg.Station.Longitude)
	envFloat(logger, "PASSLOG_STATION_ALT", &cfg.Station.AltitudeM)
	envFloat(logger, "PASSLOG_MIN_ELEVATION", &cfg.Thresholds.MinElevation)
	envFloat(logger, "PASSLOG_RSSI_DETECT", &cfg.Thresholds.RSSIDetect)

	if v := os.Getenv("PASSLOG_WINDOW_START"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			logger.Warn("invalid PASSLOG_WINDOW_START value, ignoring", "value", v)
		} else {
			cfg.Window.Start = t.UTC()
		}
	}
	if v := os.Getenv("PASSLOG_WINDOW_END"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			logger.Warn("invalid PASSLOG_WINDOW_END value, ignoring", "value", v)
		} else {
			cfg.Window.End = t.UTC()
		}
	}

	if v := os.Getenv("PASSLOG_SATELLITES"); v != "" {
		var sats []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sats = append(sats, s)
			}
		}
		if len(sats) == 0 {
			logger.Warn("empty PASSLOG_SATELLITES value, ignoring", "value", v)
		} else {
			cfg.Satellites = sats
		}
	}

	if v := os.Getenv("PASSLOG_TLE_CACHE_DIR"); v != "" {
		cfg.TLE.CacheDir = v
	}
	if v := os.Getenv("PASSLOG_TLE_OFFLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid PASSLOG_TLE_OFFLINE value, ignoring", "value", v)
		} else {
			cfg.TLE.Offline = b
		}
	}
	if v := os.Getenv("PASSLOG_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("PASSLOG_LOG_LEVEL"); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			cfg.Log.Level = strings.ToLower(v)
		default:
			logger.Warn("invalid PASSLOG_LOG_LEVEL value, ignoring", "value", v)
		}
	}
}

func envFloat(logger *slog.Logger, key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("invalid "+key+" value, ignoring", "value", v)
		return
	}
	*dst = f
}
