package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var confdata = `// start comment
{
"log" : { "level": "info" },
// comment
"task" : {
   "name" : "x // y", // end line comment
   "interval": "1500ms"
  }
}`

type taskConfig struct {
	Name     string
	Interval time.Duration
	Tags     []string
}

func quiet() Option {
	return Notepad(jww.NewNotepad(jww.LevelCritical, jww.LevelCritical, io.Discard, io.Discard, "", stdlog.LstdFlags))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	f := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(f, []byte(content), 0644))
	return f
}

func ExampleConfig_AddConfigFrom() {
	cfg := New()
	cfg.SetDefault("log.level", "warning")
	if err := cfg.AddConfigFrom("json", strings.NewReader(confdata)); err != nil {
		fmt.Println(err)
		return
	}

	var tc taskConfig
	if err := cfg.UnmarshalKey("task", &tc); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(cfg.GetString("log.level"))
	fmt.Println(tc.Name, tc.Interval)
	// Output:
	// info
	// x // y 1.5s
}

func TestSyntaxErrorLine(t *testing.T) {
	cfg := New(quiet())
	err := cfg.AddConfigFrom("json", strings.NewReader("{\n\"a\": 1,\n\"b\": ,\n}"))
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Line)
	assert.Contains(t, se.Error(), "line=3")

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"settings.yaml": "log:\n  level: debug\ntask:\n  tags: [a, b]\n",
		"settings.toml": "[log]\nlevel = \"debug\"\n[task]\ntags = [\"a\", \"b\"]\n",
		"settings.json": "{\"log\": {\"level\": \"debug\"}, \"task\": {\"tags\": [\"a\", \"b\"]}}",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg := New(quiet())
			cfg.AddConfigFile("", writeFile(t, dir, name, content))
			require.NoError(t, cfg.Load())

			assert.Equal(t, "debug", cfg.GetString("log.level"))
			assert.Equal(t, "debug", cfg.GetString("LOG.Level"))
			assert.Equal(t, []string{"a", "b"}, cfg.GetStringSlice("task.tags"))
			assert.True(t, cfg.InConfig("log.level"))
			assert.False(t, cfg.InConfig("log.file"))
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	cfg := New(quiet())
	cfg.AddConfigFile("", writeFile(t, t.TempDir(), "settings.xml", "<log/>"))
	var pe *ParseError
	assert.True(t, errors.As(cfg.Load(), &pe))
}

func TestLoadKeepsValuesOnError(t *testing.T) {
	f := writeFile(t, t.TempDir(), "settings.yaml", "a: 1\n")
	cfg := New(quiet())
	cfg.AddConfigFile("yaml", f)
	require.NoError(t, cfg.Load())
	assert.Equal(t, 1, cfg.GetInt("a"))

	require.NoError(t, os.WriteFile(f, []byte("a: [\n"), 0644))
	assert.Error(t, cfg.Load())
	assert.Equal(t, 1, cfg.GetInt("a"))

	require.NoError(t, os.WriteFile(f, []byte("a: 2\n"), 0644))
	require.NoError(t, cfg.Load())
	assert.Equal(t, 2, cfg.GetInt("a"))
}

func TestPriority(t *testing.T) {
	cfg := New(quiet(), EnvPrefix("app"))
	cfg.SetDefault("log.level", "warning")
	cfg.SetDefault("log.file", "")
	assert.Equal(t, "warning", cfg.GetString("log.level"))

	require.NoError(t, cfg.AddConfigFrom("yaml", strings.NewReader("log:\n  level: info\n")))
	assert.Equal(t, "info", cfg.GetString("log.level"))

	require.NoError(t, cfg.BindEnv("log.level"))
	assert.Equal(t, "APP_LOG_LEVEL", cfg.EnvName("log.level"))
	t.Setenv("APP_LOG_LEVEL", "notice")
	require.NoError(t, cfg.Load())
	assert.Equal(t, "notice", cfg.GetString("log.level"))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("level", "emerg", "")
	require.NoError(t, cfg.BindPFlag("log.level", fs.Lookup("level")))
	// not given on the command line
	assert.Equal(t, "notice", cfg.GetString("log.level"))

	require.NoError(t, fs.Parse([]string{"--level", "err"}))
	require.NoError(t, cfg.Load())
	assert.Equal(t, "err", cfg.GetString("log.level"))

	cfg.Set("log.level", "debug")
	assert.Equal(t, "debug", cfg.GetString("log.level"))
	// siblings survive merging
	assert.True(t, cfg.IsSet("log.file"))
}

func TestEmptyEnv(t *testing.T) {
	cfg := New(quiet())
	cfg.SetDefault("name", "dflt")
	require.NoError(t, cfg.BindEnv("name", "TEST_CONFIG_NAME"))
	t.Setenv("TEST_CONFIG_NAME", "")
	assert.Equal(t, "dflt", cfg.GetString("name"))

	cfg.AllowEmptyEnv(true)
	assert.Equal(t, "", cfg.GetString("name"))
}

func TestPFlagTypes(t *testing.T) {
	cfg := New(quiet())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("count", 0, "")
	fs.Bool("verbose", false, "")
	fs.Duration("interval", 0, "")
	fs.StringSlice("tags", nil, "")
	require.NoError(t, cfg.BindPFlags(fs))
	require.NoError(t, fs.Parse([]string{"--count=3", "--verbose", "--interval=2s", "--tags=a,b"}))
	require.NoError(t, cfg.Load())

	assert.Equal(t, 3, cfg.GetInt("count"))
	assert.True(t, cfg.GetBool("verbose"))
	assert.Equal(t, 2*time.Second, cfg.GetDuration("interval"))
	assert.Equal(t, []string{"a", "b"}, cfg.GetStringSlice("tags"))
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, ".env", "APP_LOG_LEVEL=debug\nAPP_TASK_NAME=env\nOTHER=1\n")

	cfg := New(quiet(), EnvPrefix("app"))
	cfg.AddEnvFile(f)
	require.NoError(t, cfg.Load())
	assert.Equal(t, "debug", cfg.GetString("log.level"))
	assert.Equal(t, "env", cfg.GetString("task.name"))
	assert.False(t, cfg.IsSet("other"))
	assert.Equal(t, []string{f}, cfg.Files())
}

func TestUnmarshal(t *testing.T) {
	cfg := New(quiet())
	require.NoError(t, cfg.AddConfigFrom("yaml", strings.NewReader("task:\n  name: t\n  interval: 2s\n  tags: a,b\n")))

	var s struct {
		Task taskConfig
	}
	require.NoError(t, cfg.Unmarshal(&s))
	assert.Equal(t, taskConfig{Name: "t", Interval: 2 * time.Second, Tags: []string{"a", "b"}}, s.Task)

	var tc struct{ Name string }
	assert.Error(t, cfg.UnmarshalKey("task", &tc, ErrorUnused()))
}

func TestWriteTo(t *testing.T) {
	cfg := New(quiet())
	cfg.Set("log.level", "info")

	for _, format := range []string{"yaml", "json", "toml"} {
		var buf bytes.Buffer
		require.NoError(t, cfg.WriteTo(&buf, format))

		back := New(quiet())
		require.NoError(t, back.AddConfigFrom(format, &buf))
		assert.Equal(t, "info", back.GetString("log.level"), format)
	}
	assert.Error(t, cfg.WriteTo(io.Discard, "ini"))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "settings.yaml", "a: 1\n")
	cfg := New(quiet())
	cfg.AddConfigFile("", f)
	require.NoError(t, cfg.Load())

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan fsnotify.Event, 16)
	done := make(chan error, 1)
	go func() {
		done <- cfg.Watch(ctx, func(ev fsnotify.Event) { changed <- ev })
	}()

	// unrelated files in the same directory are ignored
	writeFile(t, dir, "other.yaml", "b: 1\n")

	require.Eventually(t, func() bool {
		if err := os.WriteFile(f, []byte("a: 2\n"), 0644); err != nil {
			return false
		}
		select {
		case ev := <-changed:
			return ev.Name == f
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, cfg.Load())
	assert.Equal(t, 2, cfg.GetInt("a"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
}

func TestDaemonValidate(t *testing.T) {
	dir := t.TempDir()
	var d Daemon
	assert.NoError(t, d.Validate())

	d.ConfigFolder = dir
	assert.NoError(t, d.Validate())

	d.ConfigFolder = filepath.Join(dir, "missing")
	d.ConfigFile = filepath.Join(dir, "missing.yaml")
	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathMissing)
	assert.Contains(t, err.Error(), "Configuration folder")
	assert.Contains(t, err.Error(), "Configuration file")

	assert.ErrorIs(t, ValidatePath("", "Pid file", true), ErrPathMandatory)
	assert.NoError(t, ValidatePath("", "Pid file", false))
}

func TestDaemonSettingsFile(t *testing.T) {
	dir := t.TempDir()
	d := Daemon{ConfigFolder: dir}
	assert.Equal(t, "", d.SettingsFile())
	assert.Equal(t, "", d.EnvFile())

	f := writeFile(t, dir, "settings.toml", "")
	env := writeFile(t, dir, ".env", "")
	assert.Equal(t, f, d.SettingsFile())
	assert.Equal(t, env, d.EnvFile())

	d.ConfigFile = "explicit.json"
	assert.Equal(t, "explicit.json", d.SettingsFile())

	require.NoError(t, d.Abs())
	assert.True(t, filepath.IsAbs(d.ConfigFile))
}
