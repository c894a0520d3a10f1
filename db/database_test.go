package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func TestInitializeLocalSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	require.NoError(t, Initialize(Options{Path: path, Environment: "production"}))
	t.Cleanup(func() { Close() })

	require.NoError(t, AutoMigrate(&widget{}))
	require.NoError(t, DB.Create(&widget{Name: "a"}).Error)

	var count int64
	DB.Model(&widget{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAutoMigrateWithoutConnection(t *testing.T) {
	saved := DB
	DB = nil
	defer func() { DB = saved }()

	assert.Error(t, AutoMigrate(&widget{}))
	assert.NoError(t, Close())
}

func TestTursoDSN(t *testing.T) {
	assert.Equal(t, "libsql://db.turso.io", tursoDSN("libsql://db.turso.io", ""))
	assert.Equal(t, "libsql://db.turso.io?authToken=tok", tursoDSN("libsql://db.turso.io", "tok"))
	assert.Equal(t, "libsql://db.turso.io?tls=1&authToken=tok", tursoDSN("libsql://db.turso.io?tls=1", "tok"))
}
