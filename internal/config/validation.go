package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Data.validate(); err != nil {
		return err
	}
	return c.Export.validate()
}

func (a *AppConfig) validate() error {
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	switch a.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	return nil
}

func (d *DataConfig) validate() error {
	switch d.Source {
	case "dir":
		if strings.TrimSpace(d.Dir) == "" {
			return fmt.Errorf("data.dir is required when data.source=dir")
		}
	case "http":
		if strings.TrimSpace(d.BaseURL) == "" {
			return fmt.Errorf("data.base_url is required when data.source=http")
		}
		u, err := url.Parse(d.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("data.base_url is not an absolute url: %q", d.BaseURL)
		}
	default:
		return fmt.Errorf("data.source must be dir or http, got %q", d.Source)
	}
	if d.TimeoutSeconds < 0 {
		return fmt.Errorf("data.timeout_seconds must be >= 0")
	}
	switch d.Malformed {
	case "passthrough", "drop", "reject":
	default:
		return fmt.Errorf("data.malformed must be passthrough, drop or reject, got %q", d.Malformed)
	}
	if d.WatchManifest && strings.TrimSpace(d.Manifest) == "" {
		return fmt.Errorf("data.watch_manifest requires data.manifest")
	}
	return nil
}

func (e *ExportConfig) validate() error {
	if e.PNGTimeoutSeconds < 0 {
		return fmt.Errorf("export.png_timeout_seconds must be >= 0")
	}
	return nil
}
