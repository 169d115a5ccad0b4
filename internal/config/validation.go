package config

import (
	"strings"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// Validate checks the fields every build needs. File-system checks (existence of
// the input document, tool and asset directories) belong to the path resolver.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return errors.ValidationError("input document path is required").Build()
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.ValidationError("output document path is required").Build()
	}
	switch c.Minifiers.Engine {
	case EngineExternal:
		if strings.TrimSpace(c.Minifiers.JS.Tool) == "" {
			return errors.ValidationError("js minifier tool path is required").Build()
		}
	case EngineBuiltin:
	default:
		return errors.ValidationError("unknown minifier engine").
			WithContext("engine", string(c.Minifiers.Engine)).
			Build()
	}
	if c.AutoPrefix && c.RelativePrefix != "" {
		return errors.ValidationError("relative_prefix and auto_prefix are mutually exclusive").Build()
	}

	for field, dir := range map[string]string{"assets.js_dir": c.Assets.JSDir, "assets.css_dir": c.Assets.CSSDir} {
		if strings.ContainsAny(dir, `"'<> `) || strings.HasPrefix(dir, "/") {
			return errors.ValidationError("asset directory must be a plain relative name").
				WithContext("field", field).
				WithContext("value", dir).
				Build()
		}
	}
	if strings.ContainsAny(c.Assets.BundleName, `/\"'`) {
		return errors.ValidationError("bundle name must be a bare file name").
			WithContext("value", c.Assets.BundleName).
			Build()
	}
	if strings.Trim(c.Assets.MinifiedMarker, ".") == "" {
		return errors.ValidationError("minified marker must contain a name, e.g. .min.").
			WithContext("value", c.Assets.MinifiedMarker).
			Build()
	}
	if c.Events.NATSURL != "" && strings.TrimSpace(c.Events.Subject) == "" {
		return errors.ValidationError("events.subject is required when events.nats_url is set").Build()
	}
	return nil
}
