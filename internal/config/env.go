package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GFX_"

// readEnv returns the GFX_* variables from the .env file at path, if any,
// overlaid with the process environment.
func readEnv(path string) (map[string]string, error) {
	env := make(map[string]string)
	if path != "" {
		file, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		for k, v := range file {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// applyEnv applies environment overrides to the config. Unknown GFX_*
// variables are ignored.
func applyEnv(cfg *Config, env map[string]string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := env[EnvPrefix+key]; ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := env[EnvPrefix+key]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := env[EnvPrefix+key]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := env[EnvPrefix+key]; ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	num("WIDTH", &cfg.Graphics.Width)
	num("HEIGHT", &cfg.Graphics.Height)
	flag("FULLSCREEN", &cfg.Graphics.Fullscreen)
	flag("VSYNC", &cfg.Graphics.VSync)
	num("SAMPLES", &cfg.Graphics.Samples)
	str("COLOR_FORMAT", &cfg.Graphics.ColorFormat)
	str("DEPTH_FORMAT", &cfg.Graphics.DepthFormat)
	str("ASSETS_URL", &cfg.Assets.BaseURL)
	num("ASSETS_WORKERS", &cfg.Assets.Workers)
	dur("ASSETS_TIMEOUT", &cfg.Assets.Timeout)
	num("ASSETS_CACHE_MB", &cfg.Assets.CacheMB)
	flag("ASSETS_WATCH", &cfg.Assets.Watch)
	flag("HEADLESS", &cfg.Demo.Headless)
	num("FRAMES", &cfg.Demo.Frames)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FILE", &cfg.Logging.LogFile)
	if v, ok := env[EnvPrefix+"ASSETS_DIRS"]; ok {
		cfg.Assets.Dirs = strings.Split(v, string(os.PathListSeparator))
	}

	return errors.Join(errs...)
}
