package config

import (
	"fmt"
	"os"
	"strings"
)

// BindEnv binds a key to ENV variables.
// ENV variables are case sensitive.
// If only a key is provided, it will use the env key matching the key, uppercased,
// with the key delimiter replaced by "_" and EnvPrefix prepended.
// If more arguments are provided, they are the env variable names
// that should bind to this key, taken in the specified order.
func (c *Config) BindEnv(input ...string) error {
	if len(input) == 0 {
		return fmt.Errorf("missing key to bind to")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.casing(input[0])
	if len(input) == 1 {
		c.env[key] = append(c.env[key], c.withEnvPrefix(key))
	} else {
		c.env[key] = append(c.env[key], input[1:]...)
	}
	c.invalidateCache()
	return nil
}

// EnvName returns the environment variable name BindEnv(key) would bind.
func (c *Config) EnvName(key string) string {
	return c.withEnvPrefix(c.casing(key))
}

func (c *Config) withEnvPrefix(in string) string {
	in = strings.ReplaceAll(in, c.keyDelim, "_")
	if c.envPrefix != "" {
		return strings.ToUpper(c.envPrefix + "_" + in)
	}
	return strings.ToUpper(in)
}

// AllowEmptyEnv makes set but empty environment variables count as values
// instead of falling back to lower layers.
func (c *Config) AllowEmptyEnv(allow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowEmptyEnv = allow
	c.invalidateCache()
}

func (c *Config) getEnv(name string) (string, bool) {
	val, ok := os.LookupEnv(name)
	return val, ok && (c.allowEmptyEnv || val != "")
}

// The environment is read when the merged configuration is computed,
// i.e. after the next change or Load().
// must hold mu
func (c *Config) envBindings() map[string]interface{} {
	result := make(map[string]interface{})
	for key, names := range c.env {
		for _, name := range names {
			if val, ok := c.getEnv(name); ok {
				setKeyInMap(result, strings.Split(key, c.keyDelim), val)
				break
			}
		}
	}
	return result
}
