package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meepleden/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "source.db")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	_, err = db.GetOrCreateMember(context.Background(), "Ubackup", "B")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	storage := t.TempDir()
	svc := NewBackupService(dbPath, config.BackupConfig{StoragePath: storage}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(storage)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The snapshot is itself a readable database.
	backup, err := NewDB(filepath.Join(storage, entries[0].Name()), &logger)
	require.NoError(t, err)
	defer backup.Close()

	m, err := backup.GetMemberByLineID(context.Background(), "Ubackup")
	require.NoError(t, err)
	assert.Equal(t, "B", m.DisplayName)
}

func TestCleanupOldBackups(t *testing.T) {
	logger := zerolog.Nop()
	storage := t.TempDir()

	stale := filepath.Join(storage, "backup_old.db")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(storage, "backup_new.db")
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	svc := NewBackupService("unused.db", config.BackupConfig{
		StoragePath:   storage,
		RetentionDays: 7,
	}, &logger)
	svc.CleanupOldBackups()

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}
