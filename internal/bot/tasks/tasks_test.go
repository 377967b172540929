package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	filenames      []string
	listErr        error
	maintenanceErr error
	maintenanceRun int
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error {
	f.maintenanceRun++
	return f.maintenanceErr
}

func (f *fakeStore) ListImageFilenames(context.Context) ([]string, error) {
	return f.filenames, f.listErr
}

func testDeps(store TaskStore, dir string) TaskDeps {
	return TaskDeps{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:     store,
		UploadDir: dir,
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	tasks := RegisterAllTasks(testDeps(&fakeStore{}, t.TempDir()))
	assert.Len(t, tasks, 2)
	assert.Contains(t, tasks, SQLMaintenance)
	assert.Contains(t, tasks, StorageReport)
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	task := newSQLMaintenanceTask(testDeps(store, ""))
	require.NoError(t, task(context.Background()))
	assert.Equal(t, 1, store.maintenanceRun)

	store.maintenanceErr = errors.New("database is locked")
	assert.Error(t, task(context.Background()))
}

func TestBuildStorageReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "555_1.jpg")
	touch(t, dir, "555_2.jpg")
	touch(t, dir, "orphan.jpg")
	touch(t, dir, ".DS_Store")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	store := &fakeStore{filenames: []string{"555_1.jpg", "555_2.jpg", "gone.jpg"}}
	report, err := BuildStorageReport(context.Background(), store, dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, []string{"orphan.jpg"}, report.Orphans)
	assert.Equal(t, []string{"gone.jpg"}, report.Missing)

	// report only: nothing is removed
	_, err = os.Stat(filepath.Join(dir, "orphan.jpg"))
	assert.NoError(t, err)
}

func TestStorageReportTask_Errors(t *testing.T) {
	t.Parallel()

	missingDir := newStorageReportTask(testDeps(&fakeStore{}, filepath.Join(t.TempDir(), "absent")))
	assert.Error(t, missingDir(context.Background()))

	storeErr := newStorageReportTask(testDeps(&fakeStore{listErr: errors.New("closed")}, t.TempDir()))
	assert.Error(t, storeErr(context.Background()))

	ok := newStorageReportTask(testDeps(&fakeStore{}, t.TempDir()))
	assert.NoError(t, ok(context.Background()))
}

func TestFirstN(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b"}, firstN([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a"}, firstN([]string{"a"}, 2))
}
