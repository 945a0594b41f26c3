package config

import (
	"github.com/mitchellh/mapstructure"
)

// A DecoderConfigOption can be passed to Unmarshal to configure
// mapstructure.DecoderConfig options
type DecoderConfigOption func(*mapstructure.DecoderConfig)

// DecodeHook returns a DecoderConfigOption which overrides the default
// DecoderConfig.DecodeHook value, the default is:
//
//	mapstructure.ComposeDecodeHookFunc(
//		mapstructure.StringToTimeDurationHookFunc(),
//		mapstructure.StringToSliceHookFunc(","),
//	)
func DecodeHook(hook mapstructure.DecodeHookFunc) DecoderConfigOption {
	return func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = hook
	}
}

// ErrorUnused makes decoding fail on keys without a destination field.
func ErrorUnused() DecoderConfigOption {
	return func(c *mapstructure.DecoderConfig) {
		c.ErrorUnused = true
	}
}

// defaultDecoderConfig returns default mapsstructure.DecoderConfig with suppot
// of time.Duration values & string slices
func defaultDecoderConfig(output interface{}, opts ...DecoderConfigOption) *mapstructure.DecoderConfig {
	c := &mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func decode(input interface{}, config *mapstructure.DecoderConfig) error {
	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// UnmarshalKey takes a single key and unmarshals it into a struct.
// Use `mapstructure:"name"` field tags to name keys.
func (c *Config) UnmarshalKey(key string, rawVal interface{}, opts ...DecoderConfigOption) error {
	return decode(c.Get(key), defaultDecoderConfig(rawVal, opts...))
}

// Unmarshal unmarshals the whole configuration into a struct.
func (c *Config) Unmarshal(rawVal interface{}, opts ...DecoderConfigOption) error {
	return decode(c.AllSettings(), defaultDecoderConfig(rawVal, opts...))
}
