package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	stdlog "log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	jww "github.com/spf13/jwalterweatherman"
)

// Config is a prioritized configuration registry. It
// maintains a set of configuration sources and provides
// values according to the source priority.
// The priority of the sources is the following:
// 1. overrides (see the Set() function)
// 2. flags
// 3. env. variables
// 4. config sources, in the order added - later sources win
// 5. defaults (see the SetDefault() function)
//
// A Config is safe for concurrent use.
type Config struct {
	mu sync.RWMutex

	// Delimiter that separates a list of keys
	// used to access a nested value in one go
	keyDelim  string
	envPrefix string

	flags map[string]FlagValue
	env   map[string][]string

	override map[string]interface{}
	defaults map[string]interface{}

	// prioritized list of config sources
	sources []Source

	cache map[string]interface{}

	allowEmptyEnv   bool
	caseInsensitive bool

	notepad *jww.Notepad
}

//---------------------------------- OPTIONS ------------------------------

type Option interface {
	apply(c *Config)
}

type optionFunc func(c *Config)

func (fn optionFunc) apply(c *Config) {
	fn(c)
}

// KeyDelimiter sets the delimiter used for determining key parts.
// By default it's value is ".".
func KeyDelimiter(d string) Option {
	return optionFunc(func(c *Config) {
		c.keyDelim = d
	})
}

// EnvPrefix is prepended (with "_") to environment variable names derived from keys.
func EnvPrefix(pfx string) Option {
	return optionFunc(func(c *Config) {
		c.envPrefix = pfx
	})
}

// CaseSensitive controls whether keys are case sensitive. Default is insensitive.
func CaseSensitive(sensitive bool) Option {
	return optionFunc(func(c *Config) {
		c.caseInsensitive = !sensitive
	})
}

// ConfigFile adds a config file source. An empty format is derived from the file extension.
func ConfigFile(format, name string) Option {
	return optionFunc(func(c *Config) {
		c.sources = append(c.sources, NewFile(format, name))
	})
}

// Notepad sets where the registry logs what it does.
func Notepad(n *jww.Notepad) Option {
	return optionFunc(func(c *Config) {
		c.notepad = n
	})
}

// New returns an initialized Config.
func New(opts ...Option) *Config {
	c := &Config{
		keyDelim:        ".",
		override:        make(map[string]interface{}),
		defaults:        make(map[string]interface{}),
		flags:           make(map[string]FlagValue),
		env:             make(map[string][]string),
		caseInsensitive: true,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	if c.notepad == nil {
		c.notepad = jww.NewNotepad(jww.LevelWarn, jww.LevelWarn, os.Stderr, io.Discard, "config", stdlog.Ldate|stdlog.Ltime)
	}
	return c
}

// A few util functions
func (c *Config) casing(key string) string {
	if c.caseInsensitive {
		return strings.ToLower(key)
	}
	return key
}

func (c *Config) path(key string) []string {
	return strings.Split(c.casing(key), c.keyDelim)
}

// must hold mu for writing
func (c *Config) invalidateCache() {
	c.cache = nil
}

//------------------------------------------------------------------------------

// AddConfigFile adds a config file source. It is read by Load().
func (c *Config) AddConfigFile(format, filename string) {
	if filename == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, NewFile(format, filename))
	c.invalidateCache()
}

// AddEnvFile adds a dotenv file source using the registry env prefix. It is read by Load().
func (c *Config) AddEnvFile(filename string) {
	if filename == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, &EnvFile{filename: filename, prefix: c.envPrefix})
	c.invalidateCache()
}

// AddConfigFrom parses the data in the provided io.Reader and adds it as a source.
func (c *Config) AddConfigFrom(format string, in io.Reader) error {
	data := make(map[string]interface{})
	if err := unmarshalReader(format, in, data); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, &inMem{values: data})
	c.invalidateCache()
	return nil
}

// AddSource adds any Source
func (c *Config) AddSource(s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, s)
	c.invalidateCache()
}

// Load (re)loads all sources needing explicit loading.
// On error the previously loaded values of all sources are kept.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.sources {
		l, ok := s.(Loader)
		if !ok {
			continue
		}
		if err := l.Load(); err != nil {
			c.notepad.ERROR.Printf("load failed: %s", err)
			return err
		}
		if w, ok := s.(Watchable); ok {
			c.notepad.INFO.Printf("loaded %s", w.Filename())
		}
	}
	c.invalidateCache()
	return nil
}

// Files returns the file names of all file backed sources.
func (c *Config) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var files []string
	for _, s := range c.sources {
		if w, ok := s.(Watchable); ok {
			files = append(files, w.Filename())
		}
	}
	return files
}

// SetDefault sets the default value for this key.
// Default only used when no value is provided by the user via flag, config or ENV.
func (c *Config) SetDefault(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	setKeyInMap(c.defaults, c.path(key), value)
	c.invalidateCache()
}

// Set sets the value for the key in the override register.
// Will be used instead of values obtained via flags, config file, ENV or default.
func (c *Config) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	setKeyInMap(c.override, c.path(key), value)
	c.invalidateCache()
}

// AllSettings returns a copy of the merged configuration.
func (c *Config) AllSettings() map[string]interface{} {
	return deepCopyMap(c.merged(), false)
}

func (c *Config) merged() map[string]interface{} {
	c.mu.RLock()
	m := c.cache
	c.mu.RUnlock()
	if m != nil {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil {
		c.cache = c.mergeConfigs()
	}
	return c.cache
}

// must hold mu
func (c *Config) mergeConfigs() map[string]interface{} {
	lower := c.caseInsensitive

	// merge in priority order - lowest first.
	consolidated := deepCopyMap(c.defaults, lower)
	for _, s := range c.sources {
		mergeMaps(consolidated, deepCopyMap(s.Values(), lower))
	}
	mergeMaps(consolidated, c.envBindings())
	mergeMaps(consolidated, c.flagBindings())
	mergeMaps(consolidated, deepCopyMap(c.override, lower))
	return consolidated
}

// Get can retrieve any value given the key to use.
// It returns the value from the source with the highest priority having it, or nil.
func (c *Config) Get(key string) interface{} {
	return searchMap(c.merged(), c.path(key))
}

// IsSet checks whether any layer has a value for key.
func (c *Config) IsSet(key string) bool {
	return c.Get(key) != nil
}

// InConfig checks whether key is defined by any config source (files and readers).
func (c *Config) InConfig(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := c.path(key)
	for _, s := range c.sources {
		if searchMap(deepCopyMap(s.Values(), c.caseInsensitive), p) != nil {
			return true
		}
	}
	return false
}

// GetString returns the value associated with the key as a string.
func (c *Config) GetString(key string) string { return cast.ToString(c.Get(key)) }

// GetBool returns the value associated with the key as a boolean.
func (c *Config) GetBool(key string) bool { return cast.ToBool(c.Get(key)) }

// GetInt returns the value associated with the key as an integer.
func (c *Config) GetInt(key string) int { return cast.ToInt(c.Get(key)) }

// GetFloat64 returns the value associated with the key as a float64.
func (c *Config) GetFloat64(key string) float64 { return cast.ToFloat64(c.Get(key)) }

// GetDuration returns the value associated with the key as a duration.
func (c *Config) GetDuration(key string) time.Duration { return cast.ToDuration(c.Get(key)) }

// GetStringSlice returns the value associated with the key as a slice of strings.
func (c *Config) GetStringSlice(key string) []string { return cast.ToStringSlice(c.Get(key)) }

// GetStringMap returns the value associated with the key as a map of interfaces.
func (c *Config) GetStringMap(key string) map[string]interface{} { return cast.ToStringMap(c.Get(key)) }

// WriteTo writes the merged configuration to out in the given format ("yaml", "json" or "toml").
func (c *Config) WriteTo(out io.Writer, format string) error {
	b, err := marshal(format, c.AllSettings())
	if err != nil {
		return fmt.Errorf("while marshaling config: %w", err)
	}
	_, err = io.Copy(out, bytes.NewReader(b))
	return err
}
