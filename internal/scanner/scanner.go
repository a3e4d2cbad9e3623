package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/logging"
	"github.com/fenilsonani/stalesweep/internal/platform"
)

// Scanner enumerates the regular files under a location
type Scanner struct {
	exec   *platform.ExecutionContext
	live   bool
	logger *zap.Logger
}

// New creates a new Scanner. live selects live-mode privilege gating.
func New(exec *platform.ExecutionContext, live bool, logger *zap.Logger) *Scanner {
	if exec == nil {
		exec = &platform.ExecutionContext{}
	}
	return &Scanner{
		exec:   exec,
		live:   live,
		logger: logging.OrNop(logger),
	}
}

// Scan walks loc recursively. A *LocationError is returned when the whole
// location is skipped; unreadable entries below the root are skipped one by
// one. On cancellation the partial result is returned with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, loc location.Location) (*Result, error) {
	result := &Result{
		Location: loc,
		Files:    []ScannedFile{},
	}

	// Inspection is harmless, so dry-run may look inside gated locations
	if loc.RequiresElevatedPrivilege && s.live && !s.exec.Elevated {
		return result, &LocationError{Path: loc.Path, Kind: ErrPrivilegeRequired}
	}

	info, err := os.Stat(loc.Path)
	if err != nil {
		return result, &LocationError{Path: loc.Path, Kind: ErrLocationInaccessible, Cause: err}
	}
	if !info.IsDir() {
		return result, &LocationError{Path: loc.Path, Kind: ErrLocationInaccessible, Cause: errors.New("not a directory")}
	}

	// WalkDir does not descend into a symlinked root, so walk its target and
	// report paths under loc.Path
	root, err := filepath.EvalSymlinks(loc.Path)
	if err != nil {
		return result, &LocationError{Path: loc.Path, Kind: ErrLocationInaccessible, Cause: err}
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != root {
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				path = filepath.Join(loc.Path, rel)
			}
		}

		if err != nil {
			if path == root {
				return &LocationError{Path: loc.Path, Kind: ErrLocationInaccessible, Cause: err}
			}
			// Permission denied or vanished entry - skip and continue
			result.Unreadable++
			s.logger.Debug("skipping unreadable entry",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		result.Scanned++

		fi, err := d.Info()
		if err != nil {
			result.Unreadable++
			s.logger.Debug("skipping file without metadata",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		size := fi.Size()
		if size < 0 {
			size = 0
		}

		result.Files = append(result.Files, ScannedFile{
			FullPath:      path,
			SizeBytes:     uint64(size),
			LastWriteTime: fi.ModTime(),
		})

		return nil
	})

	if err != nil {
		var locErr *LocationError
		if errors.As(err, &locErr) {
			// The root itself could not be read; nothing below it was seen
			return &Result{Location: loc, Files: []ScannedFile{}}, err
		}
		return result, err
	}

	s.logger.Debug("location scanned",
		zap.String("location", loc.Description),
		zap.String("path", loc.Path),
		zap.Int("scanned", result.Scanned),
		zap.Uint64("bytes", result.TotalSize()),
		zap.Int("unreadable", result.Unreadable))

	return result, nil
}
