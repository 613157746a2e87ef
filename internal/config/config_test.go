package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Decode(New())
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DBPath:            "inventory.db",
		Addr:              "127.0.0.1:8080",
		Env:               EnvDevelopment,
		LogLevel:          "info",
		AdminUser:         "admin",
		LowStockThreshold: 10,
	}, cfg)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.env"),
		[]byte("ADDR=127.0.0.1:9000\nDB_PATH=from-file.db\nLOW_STOCK_THRESHOLD=4\n"), 0o644))
	t.Setenv("INVENTORY_DB_PATH", "from-env.db")

	v := New()
	require.NoError(t, ReadFiles(v, dir))
	v.Set(KeyLowStockThreshold, 7)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr, "file beats default")
	assert.Equal(t, "from-env.db", cfg.DBPath, "env beats file")
	assert.Equal(t, 7, cfg.LowStockThreshold, "override beats file")
}

func TestReadFilesMissing(t *testing.T) {
	v := New()
	require.NoError(t, ReadFiles(v, t.TempDir()))
	_, err := Decode(v)
	assert.NoError(t, err)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	t.Setenv("INVENTORY_ENV", "staging")
	t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "0")

	_, err := Decode(New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown environment "staging"`)
	assert.Contains(t, err.Error(), "low stock threshold must be positive")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADDR=127.0.0.1:9001\nADMIN_USER=owner\n"), 0o644))

	cfg, err := Load(func(v *viper.Viper) error {
		v.Set(KeyAdminUser, "root")
		return nil
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9001", cfg.Addr)
	assert.Equal(t, "root", cfg.AdminUser, "bound source beats file")

	cfg, err = Load(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, "owner", cfg.AdminUser)

	_, err = Load(func(*viper.Viper) error { return errors.New("bad flag") }, dir)
	assert.EqualError(t, err, "bad flag")
}
