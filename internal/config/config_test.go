package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	want := Config{
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "auto"},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9000"
base = "/apps"
public_url = "https://games.example.com/apps"

[log]
level = "debug"
format = "json"
`), 0o644))

	t.Setenv("GANGGAMES_SERVER_ADDR", ":9100")
	t.Setenv("GANGGAMES_SERVER_DEBUG", "true")

	c, err := Load(path)
	require.NoError(t, err)

	want := Config{
		Server: ServerConfig{
			Addr:      ":9100",
			Base:      "/apps",
			PublicURL: "https://games.example.com/apps",
			Debug:     true,
		},
		Log: LogConfig{Level: "debug", Format: "json"},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Config
		wantErr bool
	}{
		{"ok", Config{Log: LogConfig{Level: "warn", Format: "text"}}, false},
		{"upper level", Config{Log: LogConfig{Level: "DEBUG", Format: "text"}}, false},
		{"bad level", Config{Log: LogConfig{Level: "trace", Format: "text"}}, true},
		{"bad format", Config{Log: LogConfig{Level: "info", Format: "xml"}}, true},
		{"relative base", Config{Server: ServerConfig{Base: "apps"}, Log: LogConfig{Level: "info", Format: "auto"}}, true},
		{"public url", Config{Server: ServerConfig{PublicURL: "https://games.example.com/apps"}, Log: LogConfig{Level: "info", Format: "auto"}}, false},
		{"relative public url", Config{Server: ServerConfig{PublicURL: "games.example.com"}, Log: LogConfig{Level: "info", Format: "auto"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
