package config

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ViperHooks are the decode hooks used when unmarshalling Options.
var ViperHooks = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	decodeBaseURLHookFunc(),
))

// decodeBaseURLHookFunc normalizes URL options: surrounding whitespace and
// trailing slashes are removed.
func decodeBaseURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.String {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			return data, nil
		}
		u, err := url.Parse(s)
		if err != nil {
			return data, nil
		}
		u.Path = strings.TrimRight(u.Path, "/")
		return u.String(), nil
	}
}
