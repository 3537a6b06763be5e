// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/skillnaav/portal/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := database.Open(":memory:")

	require.NoError(t, err)
	require.NotNil(t, db)

	require.NoError(t, database.Close(db))
}

func TestOpen_DefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	db, err := database.Open("")

	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	_, err = os.Stat(filepath.Join(tmpDir, "data"))
	assert.NoError(t, err)
}

func TestOpen_MigrationsApplied(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	for _, table := range []string{"users", "partners", "admins", "internships", "applications", "messages", "password_reset_tokens"} {
		t.Run(table, func(t *testing.T) {
			var count int64
			err := db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	}

	version, err := database.Version(db.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(5), version)
}

func TestOpen_EmailUniquePerTable(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	_, err = db.Exec(`INSERT INTO partners (name, email, password_hash, company_name, institution_id) VALUES ('a', 'a@b.com', 'h', 'c', 'i')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO partners (name, email, password_hash, company_name, institution_id) VALUES ('b', 'a@b.com', 'h', 'c', 'i')`)
	assert.Error(t, err)

	// Same email in a different identity table is allowed
	_, err = db.Exec(`INSERT INTO users (name, email, password_hash) VALUES ('a', 'a@b.com', 'h')`)
	assert.NoError(t, err)
}

func TestOpen_WithExistingParams(t *testing.T) {
	db, err := database.Open(":memory:?cache=shared")

	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
}

func TestOpen_FileDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "test.db")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var count int64
	err = db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name='internships'")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMigrateDown(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	require.NoError(t, database.MigrateDown(db.DB))

	var count int64
	err = db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name='password_reset_tokens'")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, database.Close(nil))
}
