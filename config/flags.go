package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// FlagValue is an interface that users can implement
// to bind different flags to a Config.
type FlagValue interface {
	ExplicitlyGiven() bool
	Name() string
	ValueString() string
	ValueType() string
}

// pflagValue is a wrapper aroung *pflag.flag
// that implements FlagValue
type pflagValue struct {
	flag *pflag.Flag
}

// ExplicitlyGiven returns whether the flag was set on the command line.
func (p pflagValue) ExplicitlyGiven() bool {
	return p.flag.Changed
}

// Name returns the name of the flag.
func (p pflagValue) Name() string {
	return p.flag.Name
}

// ValueString returns the value of the flag as a string.
func (p pflagValue) ValueString() string {
	return p.flag.Value.String()
}

// ValueType returns the type of the flag as a string.
func (p pflagValue) ValueType() string {
	return p.flag.Value.Type()
}

// BindPFlag binds a specific key to a pflag.
// The flag only overrides lower layers if given on the command line.
//
//	fs.StringP("logfile", "L", "", "log file")
//	cfg.BindPFlag("log.file", fs.Lookup("logfile"))
func (c *Config) BindPFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %q is nil", key)
	}
	return c.BindFlagValue(key, pflagValue{flag})
}

// BindPFlags binds a full flag set to the configuration, using each flag's long
// name as the config key.
func (c *Config) BindPFlags(flags *pflag.FlagSet) (err error) {
	flags.VisitAll(func(flag *pflag.Flag) {
		if err == nil {
			err = c.BindPFlag(flag.Name, flag)
		}
	})
	return
}

// BindFlagValue binds a specific key to a FlagValue.
func (c *Config) BindFlagValue(key string, flag FlagValue) error {
	if flag == nil {
		return fmt.Errorf("flag for %q is nil", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[c.casing(key)] = flag
	c.invalidateCache()
	return nil
}

// must hold mu
func (c *Config) flagBindings() map[string]interface{} {
	result := make(map[string]interface{})
	for key, flag := range c.flags {
		if !flag.ExplicitlyGiven() {
			continue
		}
		var val interface{}
		switch flag.ValueType() {
		case "int", "int8", "int16", "int32", "int64":
			val = cast.ToInt(flag.ValueString())
		case "bool":
			val = cast.ToBool(flag.ValueString())
		case "duration":
			val = cast.ToDuration(flag.ValueString())
		case "stringSlice", "stringArray":
			s := strings.TrimSuffix(strings.TrimPrefix(flag.ValueString(), "["), "]")
			if s == "" {
				val = []string{}
			} else {
				val = strings.Split(s, ",")
			}
		default:
			val = flag.ValueString()
		}
		setKeyInMap(result, strings.Split(key, c.keyDelim), val)
	}
	return result
}
