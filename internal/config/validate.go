package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Validate checks the configuration for invalid values. Missing
// credentials are not an error here: only probe runs need them, and the
// CLI reports that case with its own message.
func (c *Config) Validate() error {
	if errs := c.validate(); len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) validate() []string {
	var errs []string

	if c.Telegram.APIID < 0 {
		errs = append(errs, "telegram.apiId must be non-negative")
	}
	if c.Telegram.APIID != 0 && c.Telegram.APIHash == "" {
		errs = append(errs, "telegram.apiHash is required when telegram.apiId is set")
	}

	p := c.Probe
	if p.TimeoutSeconds < 0 {
		errs = append(errs, "probe.timeoutSeconds must be non-negative")
	}
	if p.MaxDepth < 0 {
		errs = append(errs, "probe.maxDepth must be non-negative")
	}
	if p.MaxButtons < 0 {
		errs = append(errs, "probe.maxButtons must be non-negative")
	}
	if p.DelayMS < 0 {
		errs = append(errs, "probe.delayMs must be non-negative")
	}

	return errs
}

// CheckUnknownFields walks a raw config map and returns paths of any
// keys that do not correspond to known Config struct fields.
func CheckUnknownFields(raw map[string]any) []string {
	result := checkUnknownFields(raw, reflect.TypeOf(Config{}), "")
	sort.Strings(result)
	return result
}

func checkUnknownFields(data map[string]any, t reflect.Type, prefix string) []string {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil
	}

	known := jsonFieldMap(t)
	var unknown []string
	for key, val := range data {
		ft, ok := known[key]
		if !ok {
			unknown = append(unknown, joinPath(prefix, key))
			continue
		}
		if nested, ok := val.(map[string]any); ok {
			unknown = append(unknown, checkUnknownFields(nested, ft, joinPath(prefix, key))...)
		}
	}
	return unknown
}

func jsonFieldMap(t reflect.Type) map[string]reflect.Type {
	m := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name != "" {
			m[name] = f.Type
		}
	}
	return m
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
