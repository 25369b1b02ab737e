package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tavern/internal/client"
	"tavern/internal/utils"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestAutojoinForms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Autojoin
	}{
		{"true", "autojoin: true\n", Autojoin{Bookmarks: true}},
		{"false", "autojoin: false\n", Autojoin{}},
		{"rooms", "autojoin:\n  - lobby@muc.example.org\n  - dev@muc.example.org\n", Autojoin{Rooms: []string{"lobby@muc.example.org", "dev@muc.example.org"}}},
		{"absent keeps default", "jid: me@example.org\n", Autojoin{Bookmarks: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, "config.yaml", tt.yaml))
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg.Autojoin)
		})
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"autojoin map", "autojoin:\n  rooms: x\n"},
		{"autojoin word", "autojoin: sometimes\n"},
		{"port range", "log_port: 70000\n"},
		{"room without domain", "autojoin: [lobby]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			require.Error(t, err)
			require.True(t, utils.IsConfigError(err), "got %v", err)
		})
	}
}

func TestLoadFullFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", `
jid: me@example.org
password: secret
nick: me
service: xmpp.example.org:5222
debug: true
autojoin: [lobby@muc.example.org]
history_db: /tmp/h.db
log_port: 7070
nats_url: nats://localhost:4222
nats_subject_prefix: chat
client_name: mytavern
client_version: 1.0.0
`))
	require.NoError(t, err)
	require.Equal(t, client.Credentials{JID: "me@example.org", Password: "secret", Nick: "me", Service: "xmpp.example.org:5222"}, cfg.Credentials())

	opts := cfg.ClientOptions()
	require.True(t, opts.Debug)
	require.Equal(t, client.Autojoin{Rooms: []string{"lobby@muc.example.org"}}, opts.Autojoin)
	require.Equal(t, "mytavern", opts.ClientName)
	require.Equal(t, "1.0.0", opts.ClientVersion)
	require.Equal(t, 7070, cfg.LogPort)
	require.Equal(t, "chat", cfg.NATSSubjectPrefix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.JID = "file@example.org"
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"TAVERN_JID":      "env@example.org",
		"TAVERN_PASSWORD": "pw",
		"TAVERN_DEBUG":    "1",
		"TAVERN_LOG_PORT": "9000",
	})))
	require.Equal(t, "env@example.org", cfg.JID)
	require.Equal(t, "pw", cfg.Password)
	require.True(t, cfg.Debug)
	require.Equal(t, 9000, cfg.LogPort)

	require.ErrorIs(t, cfg.ApplyEnv(envMap(map[string]string{"TAVERN_DEBUG": "maybe"})), ErrInvalidConfig)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "TAVERN_NICK=fromdotenv\n")
	t.Setenv("TAVERN_NICK", "")
	require.NoError(t, os.Unsetenv("TAVERN_NICK"))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(nil))
	require.Equal(t, "fromdotenv", cfg.Nick)
}

func TestSaveOmitsPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.JID = "me@example.org"
	cfg.Password = "secret"
	cfg.Autojoin = Autojoin{Rooms: []string{"lobby@muc.example.org"}}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "me@example.org", loaded.JID)
	require.Empty(t, loaded.Password)
	require.Equal(t, cfg.Autojoin, loaded.Autojoin)
	require.Equal(t, "secret", cfg.Password)
}
