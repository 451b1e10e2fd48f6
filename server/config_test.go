package server

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultWebAddress, cfg.Server.Address)
	require.Equal(t, DefaultSnapshotName, cfg.Store.Snapshot)
	require.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "wdb.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
address = "127.0.0.1:9000"
cors_origins = ["http://a.example"]

[logging]
logfile = "logs/wdb.log"
max_log_size = 10
level = "debug"

[store]
path = "/var/lib/wdb/snapshots.db"
dump_file = "test.database"
demo = true
`), 0666))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	require.Equal(t, []string{"http://a.example"}, cfg.Server.CORSOrigins)
	require.Equal(t, 5, cfg.Server.ShutdownDelay)
	require.Equal(t, filepath.Join(dir, "logs/wdb.log"), cfg.Logging.Logfile)
	require.Equal(t, 10, cfg.Logging.MaxSize)
	require.Equal(t, "/var/lib/wdb/snapshots.db", cfg.Store.Path)
	require.Equal(t, filepath.Join(dir, "test.database"), cfg.Store.DumpFile)
	require.Equal(t, DefaultSnapshotName, cfg.Store.Snapshot)
	require.True(t, cfg.Store.Demo)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wdb.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nadress = \"x\"\n"), 0666))
	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "server.adress")
}

func TestLogConfig_NewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lc := LogConfig{Level: "warn"}
	logger, closeFn, err := lc.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, closeFn())
	require.False(t, strings.Contains(buf.String(), "hidden"))
	require.Contains(t, buf.String(), "shown")

	logfile := filepath.Join(t.TempDir(), "wdb.log")
	lc = LogConfig{Logfile: logfile, MaxSize: 1}
	logger, closeFn, err = lc.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closeFn())
	data, err := os.ReadFile(logfile)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")

	lc = LogConfig{Level: "loud"}
	_, _, err = lc.NewLogger(&buf)
	require.Error(t, err)
}
