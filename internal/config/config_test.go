package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestDefaults(t *testing.T) {
	cfg, err := Load([]string{"-env", missingEnvFile(t)}, noEnv, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3*time.Second, cfg.Scorer.Timeout)
	assert.Empty(t, cfg.Scorer.URL)
}

func TestLayering(t *testing.T) {
	file := writeFile(t, "najdeno.yaml", `
db: /var/lib/najdeno/file.sqlite3
addr: ":9000"
log: /var/log/najdeno.log
scorer:
  url: http://scorer.internal:7000
  timeout: 5s
`)
	dotenv := writeFile(t, ".env", "NAJDENO_ADDR=:9100\nNAJDENO_ADMIN_USER=root\n")
	env := envMap(map[string]string{
		EnvAddr:          ":9200",
		EnvScorerTimeout: "2",
	})

	cfg, err := Load([]string{"-c", file, "-env", dotenv, "-d", "flag.sqlite3"}, env, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "flag.sqlite3", cfg.DBPath, "flags win")
	assert.Equal(t, ":9200", cfg.Addr, "environment beats .env")
	assert.Equal(t, "root", cfg.AdminUser, ".env beats defaults")
	assert.Equal(t, "/var/log/najdeno.log", cfg.LogPath, "file beats defaults")
	assert.Equal(t, "http://scorer.internal:7000", cfg.Scorer.URL)
	assert.Equal(t, 2*time.Second, cfg.Scorer.Timeout)
}

func TestFlagsOverrideEverything(t *testing.T) {
	env := envMap(map[string]string{EnvScorerURL: "http://env", EnvScorerTimeout: "10s"})
	cfg, err := Load([]string{
		"-env", missingEnvFile(t),
		"-scorer", "http://flag:1234/",
		"-scorer-timeout", "750ms",
		"-user", "boss",
	}, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:1234/", cfg.Scorer.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.Scorer.Timeout)
	assert.Equal(t, "boss", cfg.AdminUser)
}

func TestMetricsAddr(t *testing.T) {
	cfg, err := Load([]string{"-env", missingEnvFile(t)}, noEnv, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.MetricsAddr, "loopback by default")
	assert.NotEqual(t, cfg.Addr, cfg.MetricsAddr)

	env := envMap(map[string]string{EnvMetricsAddr: ":9300"})
	cfg, err = Load([]string{"-env", missingEnvFile(t)}, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ":9300", cfg.MetricsAddr)

	cfg, err = Load([]string{"-env", missingEnvFile(t), "-metrics-addr", ""}, env, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, cfg.MetricsAddr, "an empty flag disables the listener")
}

func TestLoadErrors(t *testing.T) {
	unknownKey := writeFile(t, "bad.yaml", "database: x\n")

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"unknown yaml key", []string{"-c", unknownKey}, nil, "loading config file"},
		{"missing config file", []string{"-c", "/nonexistent/najdeno.yaml"}, nil, "loading config file"},
		{"bad timeout", nil, map[string]string{EnvScorerTimeout: "soon"}, "invalid duration"},
		{"zero timeout", []string{"-scorer-timeout", "0s"}, nil, "Timeout"},
		{"bad scorer url", []string{"-s", "not a url"}, nil, "URL"},
		{"empty db", []string{"-db", ""}, nil, "DBPath"},
		{"positional", []string{"serve"}, nil, "unexpected argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-env", missingEnvFile(t)}, tt.args...)
			_, err := Load(args, envMap(tt.env), io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHelp(t *testing.T) {
	var out strings.Builder
	_, err := Load([]string{"-h"}, noEnv, &out)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, out.String(), "-scorer-timeout")
}
