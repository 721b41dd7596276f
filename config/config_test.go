package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/config"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "secret-token")

	conf, err := config.Parse([]byte("api:\n  base_url: https://api.example.com/prod\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/prod", conf.API.BaseURL)
	assert.Equal(t, 0, conf.API.Timeouts.Presign)
	assert.Equal(t, 0, conf.API.Timeouts.Commit)
	assert.Equal(t, 10, conf.API.Timeouts.Lookup)
	assert.InDelta(t, 5.0, conf.API.RateLimit.PerSecond, 0)
	assert.Equal(t, 5, conf.API.RateLimit.Burst)
	assert.False(t, conf.API.Proxy.Enabled())
	assert.Equal(t, "offline-audio.db", conf.Offline.DBPath)
	assert.Equal(t, os.TempDir(), conf.Offline.PlaybackDir)
	assert.Equal(t, 1, conf.Upload.Parallelism)
	assert.Equal(t, uint64(500*humanize.MiByte), conf.Upload.MaxAudioSize)
	assert.Equal(t, uint64(20*humanize.MiByte), conf.Upload.MaxImageSize)
	assert.Equal(t, "token.json", conf.Session.TokenFile)
	assert.Equal(t, "secret-token", conf.Session.Token)
	assert.Equal(t, "info", conf.Log.Level)
	assert.Contains(t, []string{"json", "pretty"}, conf.Log.Format)
}

func TestParseIgnoresTokenInFile(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "")

	conf, err := config.Parse([]byte("api:\n  base_url: http://localhost:3000\nsession:\n  token: from-file\n"))
	require.NoError(t, err)
	assert.Empty(t, conf.Session.Token)
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	testCases := []struct {
		name string
		yaml string
	}{
		{name: "missing base url", yaml: "log:\n  level: info\n"},
		{name: "bad scheme", yaml: "api:\n  base_url: ftp://example.com\n"},
		{name: "negative timeout", yaml: "api:\n  base_url: https://a.b\n  timeouts:\n    presign: -1\n"},
		{name: "proxy without port", yaml: "api:\n  base_url: https://a.b\n  proxy:\n    host: 127.0.0.1\n"},
		{name: "missing playback dir", yaml: "api:\n  base_url: https://a.b\noffline:\n  playback_dir: " + filepath.Join(dir, "nope") + "\n"},
		{name: "playback dir is a file", yaml: "api:\n  base_url: https://a.b\noffline:\n  playback_dir: " + file + "\n"},
		{name: "negative parallelism", yaml: "api:\n  base_url: https://a.b\nupload:\n  parallelism: -2\n"},
		{name: "bad log level", yaml: "api:\n  base_url: https://a.b\nlog:\n  level: loud\n"},
		{name: "bad log format", yaml: "api:\n  base_url: https://a.b\nlog:\n  format: xml\n"},
		{name: "not yaml", yaml: "api: [\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			conf, err := config.Parse([]byte(testCase.yaml))
			require.Error(t, err)
			require.Nil(t, conf)
		})
	}
}

func TestParseFull(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	conf, err := config.Parse([]byte(`
api:
  base_url: https://api.example.com
  timeouts:
    presign: 5
    commit: 30
    lookup: 3
  rate_limit:
    per_second: 2
    burst: 1
  proxy:
    host: 127.0.0.1
    port: 1080
    username: user
    password: pass
storage:
  put_timeout: 600
offline:
  db_path: ` + filepath.Join(dir, "songs.db") + `
  playback_dir: ` + dir + `
  download_timeout: 120
upload:
  parallelism: 4
  max_audio_size: 1024
session:
  token_file: ` + filepath.Join(dir, "token.json") + `
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 5, conf.API.Timeouts.Presign)
	assert.Equal(t, 3, conf.API.Timeouts.Lookup)
	assert.True(t, conf.API.Proxy.Enabled())
	assert.Equal(t, 600, conf.Storage.PutTimeout)
	assert.Equal(t, 120, conf.Offline.DownloadTimeout)
	assert.Equal(t, 4, conf.Upload.Parallelism)
	assert.Equal(t, uint64(1024), conf.Upload.MaxAudioSize)
	assert.Equal(t, "json", conf.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	conf, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
	require.Nil(t, conf)
}

func TestSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1m30s", config.Seconds(90).String())
	assert.Zero(t, config.Seconds(0))
}
