package cleaner

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/fenilsonani/stalesweep/internal/security"
)

// ErrorReason categorizes why a deletion failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorIsDirectory
	ErrorInvalidPath
	ErrorProtectedPath
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorIsDirectory:
		return "Is a directory"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorProtectedPath:
		return "Protected path"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// DeletionError represents a detailed deletion error
type DeletionError struct {
	Path           string
	Reason         ErrorReason
	Original       error
	NeedsElevation bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *DeletionError) Unwrap() error {
	return e.Original
}

// Cause describes the failure without repeating the path
func (e *DeletionError) Cause() string {
	var pathErr *os.PathError
	if errors.As(e.Original, &pathErr) {
		return fmt.Sprintf("%s (%v)", e.Reason, pathErr.Err)
	}
	if e.Original == nil {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s (%v)", e.Reason, e.Original)
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	delErr := &DeletionError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if errors.Is(err, security.ErrProtectedPath) {
		delErr.Reason = ErrorProtectedPath
		return delErr
	}

	if errors.Is(err, ErrSymlink) || errors.Is(err, ErrSpecialFile) {
		delErr.Reason = ErrorInvalidPath
		return delErr
	}

	// Check if file not found
	if os.IsNotExist(err) {
		delErr.Reason = ErrorFileNotFound
		return delErr
	}

	// Check if permission error
	if os.IsPermission(err) {
		delErr.Reason = ErrorPermissionDenied
		delErr.NeedsElevation = true
		return delErr
	}

	// Check syscall errors
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			delErr.Reason = ErrorPermissionDenied
			delErr.NeedsElevation = true
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ErrorFileInUse
		case syscall.ENOENT:
			delErr.Reason = ErrorFileNotFound
		case syscall.EISDIR:
			delErr.Reason = ErrorIsDirectory
		default:
			delErr.Reason = ErrorUnknown
		}
		return delErr
	}

	return delErr
}
