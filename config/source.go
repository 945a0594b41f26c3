package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v2"
)

// SupportedFormats are the config file formats understood by AddConfigFile.
var SupportedFormats = []string{"yaml", "yml", "toml", "json"}

// ParseError denotes failing to parse configuration data.
type ParseError struct {
	Source string
	Err    error
}

// Error returns the formatted configuration error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("while parsing config %s: %s", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Source is a case sensitive recursive store of config key/value (values can be maps)
type Source interface {
	Values() map[string]interface{}
}

// Loader is a Source which needs explicit loading to refresh
type Loader interface {
	Source
	Load() error
}

// Watchable is a Loader backed by a file.
type Watchable interface {
	Loader
	Filename() string
}

// FormatOf returns the config format of a file name judged by its extension.
func FormatOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

//-----

type inMem struct {
	values map[string]interface{}
}

func (c *inMem) Values() map[string]interface{} {
	return c.values
}

//-----

// File is a config file Source.
type File struct {
	filetype string
	filename string
	values   map[string]interface{}
}

// NewFile creates a File source. An empty format is derived from the file name.
func NewFile(format, filename string) *File {
	if format == "" {
		format = FormatOf(filename)
	}
	return &File{filetype: format, filename: filename}
}

func (c *File) Values() map[string]interface{} {
	return c.values
}

func (c *File) Filename() string {
	return c.filename
}

func (c *File) Load() error {
	data, err := os.ReadFile(c.filename)
	if err != nil {
		return err
	}
	values := make(map[string]interface{})
	if err = unmarshalReader(c.filetype, bytes.NewReader(data), values); err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Source = c.filename
		}
		return err
	}
	c.values = values
	return nil
}

//-----

// EnvFile is a dotenv file Source. Its variables are keys of the configuration,
// mapped to nested config keys by lower casing and splitting at "_",
// after removing the environment prefix. APP_LOG_LEVEL is "log.level" with prefix "app".
type EnvFile struct {
	filename string
	prefix   string
	values   map[string]interface{}
}

func (c *EnvFile) Values() map[string]interface{} {
	return c.values
}

func (c *EnvFile) Filename() string {
	return c.filename
}

func (c *EnvFile) Load() error {
	f, err := os.Open(c.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return &ParseError{Source: c.filename, Err: err}
	}

	values := make(map[string]interface{})
	for k, v := range env {
		if c.prefix != "" {
			p := strings.ToUpper(c.prefix) + "_"
			if !strings.HasPrefix(k, p) {
				continue
			}
			k = strings.TrimPrefix(k, p)
		}
		setKeyInMap(values, strings.Split(strings.ToLower(k), "_"), v)
	}
	c.values = values
	return nil
}

//-----

func unmarshalReader(format string, in io.Reader, c map[string]interface{}) error {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(in); err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(buf.Bytes(), &c); err != nil {
			return &ParseError{Err: err}
		}

	case "json":
		if err := unmarshalJSONC(buf.Bytes(), &c); err != nil {
			return &ParseError{Err: err}
		}

	case "toml":
		tree, err := toml.LoadBytes(buf.Bytes())
		if err != nil {
			return &ParseError{Err: err}
		}
		for k, v := range tree.ToMap() {
			c[k] = v
		}

	default:
		return &ParseError{Err: fmt.Errorf("unknown format %q", format)}
	}
	return nil
}

func marshal(format string, c map[string]interface{}) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(c)
	case "json":
		return json.MarshalIndent(c, "", "  ")
	case "toml":
		tree, err := toml.TreeFromMap(c)
		if err != nil {
			return nil, err
		}
		return []byte(tree.String()), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
