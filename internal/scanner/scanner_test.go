package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/stalesweep/internal/testutil"
)

func TestScan_RecursiveRegularFiles(t *testing.T) {
	f := testutil.NewFixture(t)
	old := f.CreateFileWithAge("loc/old.log", []byte("12345"), 30*testutil.Day)
	nested := f.CreateFileWithAge("loc/sub/deep/nested.tmp", []byte("ab"), 2*testutil.Day)
	f.CreateDir("loc/empty")
	require.NoError(t, os.Symlink(old, f.Path("loc/link.log")))

	s := New(f.ExecContext(false), true, nil)
	result, err := s.Scan(context.Background(), f.Location("loc", "Test", false))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned, "directories and symlinks are not files")
	require.Len(t, result.Files, 2)

	paths := []string{result.Files[0].FullPath, result.Files[1].FullPath}
	assert.ElementsMatch(t, []string{old, nested}, paths)

	for _, file := range result.Files {
		if file.FullPath == old {
			assert.Equal(t, uint64(5), file.SizeBytes)
		}
	}
	assert.Equal(t, uint64(7), result.TotalSize())
}

func TestScan_DeterministicOrder(t *testing.T) {
	f := testutil.NewFixture(t)
	for _, name := range []string{"c.txt", "a.txt", "b/x.txt", "b/a.txt"} {
		f.CreateFile(filepath.Join("loc", name), []byte("x"))
	}

	s := New(f.ExecContext(false), false, nil)
	first, err := s.Scan(context.Background(), f.Location("loc", "Test", false))
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), f.Location("loc", "Test", false))
	require.NoError(t, err)

	assert.Equal(t, first.Files, second.Files)
	// WalkDir visits entries in lexical order
	assert.Equal(t, f.Path("loc/a.txt"), first.Files[0].FullPath)
	assert.Equal(t, f.Path("loc/b/a.txt"), first.Files[1].FullPath)
}

func TestScan_SymlinkedRoot(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFileWithAge("real/old.log", []byte("abc"), 30*testutil.Day)
	f.CreateFileWithAge("real/sub/new.log", []byte("x"), testutil.Day)
	require.NoError(t, os.Symlink(f.Path("real"), f.Path("link")))

	s := New(f.ExecContext(false), true, nil)
	result, err := s.Scan(context.Background(), f.Location("link", "Linked", false))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	require.Len(t, result.Files, 2)
	assert.Equal(t, f.Path("link/old.log"), result.Files[0].FullPath)
	assert.Equal(t, f.Path("link/sub/new.log"), result.Files[1].FullPath)
	assert.Equal(t, uint64(3), result.Files[0].SizeBytes)
}

func TestScan_DanglingSymlinkRoot(t *testing.T) {
	f := testutil.NewFixture(t)
	require.NoError(t, os.Symlink(f.Path("gone"), f.Path("link")))

	s := New(f.ExecContext(false), false, nil)
	_, err := s.Scan(context.Background(), f.Location("link", "Linked", false))
	assert.ErrorIs(t, err, ErrLocationInaccessible)
}

func TestScan_MissingLocation(t *testing.T) {
	f := testutil.NewFixture(t)
	loc := f.Location("does-not-exist", "Missing", false)

	s := New(f.ExecContext(false), false, nil)
	result, err := s.Scan(context.Background(), loc)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocationInaccessible))
	assert.Equal(t, "Location not found or inaccessible: "+loc.Path, err.Error())
	assert.Equal(t, 0, result.Scanned)
	assert.Empty(t, result.Files)
}

func TestScan_LocationIsAFile(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("plain.txt", []byte("x"))

	s := New(f.ExecContext(false), false, nil)
	_, err := s.Scan(context.Background(), f.Location("plain.txt", "File", false))
	assert.ErrorIs(t, err, ErrLocationInaccessible)
}

func TestScan_PrivilegeGating(t *testing.T) {
	tests := []struct {
		name     string
		live     bool
		elevated bool
		wantErr  bool
	}{
		{"live without privilege is skipped", true, false, true},
		{"live with privilege scans", true, true, false},
		{"dry-run without privilege scans", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			f.CreateFileWithAge("sys/old.log", []byte("x"), 30*testutil.Day)
			loc := f.Location("sys", "System", true)

			s := New(f.ExecContext(tt.elevated), tt.live, nil)
			result, err := s.Scan(context.Background(), loc)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrPrivilegeRequired)
				assert.Contains(t, err.Error(), loc.Path)
				assert.Equal(t, 0, result.Scanned, "gated location must not be enumerated")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, result.Scanned)
		})
	}
}

func TestScan_UnreadableSubtreeIsSkipped(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	f.CreateFileWithAge("loc/visible.log", []byte("x"), 30*testutil.Day)
	f.CreateUnreadableDir("loc/locked")

	s := New(f.ExecContext(false), true, nil)
	result, err := s.Scan(context.Background(), f.Location("loc", "Test", false))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Unreadable)
	require.Len(t, result.Files, 1)
	assert.Equal(t, f.Path("loc/visible.log"), result.Files[0].FullPath)
}

func TestScan_UnreadableRoot(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	f.CreateUnreadableDir("locked")

	s := New(f.ExecContext(false), true, nil)
	result, err := s.Scan(context.Background(), f.Location("locked", "Locked", false))

	assert.ErrorIs(t, err, ErrLocationInaccessible)
	assert.Equal(t, 0, result.Scanned)
}

func TestScan_Cancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("loc/a.txt", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(f.ExecContext(false), false, nil)
	_, err := s.Scan(ctx, f.Location("loc", "Test", false))
	assert.ErrorIs(t, err, context.Canceled)
}
