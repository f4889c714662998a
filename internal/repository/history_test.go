package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dirmerge/internal/db"
	"dirmerge/internal/diff"
	"dirmerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return NewHistoryRepository(gdb)
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	merged := &model.Node{Path: "a.txt", Status: model.StatusMerged, Differences: diff.DiffBaseLocalSame}
	failed := &model.Node{Path: "b.txt", Status: model.StatusError, Err: errors.New("permission denied")}
	other := &model.Node{Path: "c.txt", Status: model.StatusMerged, Action: diff.ActionApplyRemote}

	require.NoError(t, repo.Save(ctx, "run-1", merged))
	require.NoError(t, repo.Save(ctx, "run-1", failed))
	require.NoError(t, repo.Save(ctx, "run-2", other))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Merged: 2, Failed: 1}, stats)

	run, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, run, 2)
	assert.Equal(t, "a.txt", run[0].Path)
	assert.Equal(t, diff.DiffBaseLocalSame, run[0].Differences)

	recent, err := repo.GetRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	failures, err := repo.GetFailed(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "permission denied", failures[0].ErrMsg)
}
