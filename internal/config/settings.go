package config

import (
	"reflect"
	"strings"
	"time"
)

// Settings returns c as nested maps keyed like the config file, with
// durations in their string form. Writing the result as YAML produces a
// file Load reads back unchanged.
func (c Config) Settings() map[string]any {
	return settingsOf(reflect.ValueOf(c))
}

func settingsOf(v reflect.Value) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if key == "" {
			key = strings.ToLower(field.Name)
		}

		fv := v.Field(i)
		switch {
		case fv.Type() == durationType:
			out[key] = time.Duration(fv.Int()).String()
		case fv.Kind() == reflect.Struct:
			out[key] = settingsOf(fv)
		default:
			out[key] = fv.Interface()
		}
	}
	return out
}
