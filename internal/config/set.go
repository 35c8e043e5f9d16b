package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var setters = map[string]func(*Config, string) error{
	"bridge.path": func(c *Config, v string) error {
		c.Bridge.Path = v
		return nil
	},
	"bridge.default_port": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Bridge.DefaultPort = n
		return nil
	},
	"bridge.global_args": func(c *Config, v string) error {
		c.Bridge.GlobalArgs = v
		return nil
	},
	"bridge.interfaces": func(c *Config, v string) error {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		c.Bridge.Interfaces = out
		return nil
	},
	"device.last_address": func(c *Config, v string) error {
		c.Device.LastAddress = v
		return nil
	},
	"device.last_package": func(c *Config, v string) error {
		c.Device.LastPackage = v
		return nil
	},
	"ui.language": func(c *Config, v string) error {
		c.UI.Language = v
		return nil
	},
	"ui.theme": func(c *Config, v string) error {
		c.UI.Theme = v
		return nil
	},
	"ui.auto_refresh": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.UI.AutoRefresh = b
		return nil
	},
	"ui.refresh_interval": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.UI.RefreshInterval = d
		return nil
	},
	"log.limit": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Log.Limit = n
		return nil
	},
	"log.file": func(c *Config, v string) error {
		c.Log.File = v
		return nil
	},
	"notify.desktop": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Notify.Desktop = b
		return nil
	},
	"notify.timeout_ms": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Notify.TimeoutMs = n
		return nil
	},
}

// Set assigns one dotted key and validates the result. cfg is left
// untouched on error.
func Set(cfg *Config, key, value string) error {
	fn, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	next := *cfg
	next.Bridge.Interfaces = append([]string(nil), cfg.Bridge.Interfaces...)
	if err := fn(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := validate(next); err != nil {
		return err
	}
	*cfg = next
	return nil
}

func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
