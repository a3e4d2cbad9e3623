package cleaner

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var (
	// ErrSpecialFile is returned for devices, sockets and pipes
	ErrSpecialFile = errors.New("refusing to delete special file")

	// ErrSymlink is returned when a scanned file has been swapped for a symlink
	ErrSymlink = errors.New("path is a symlink")
)

// IsSpecialFile checks if a path is a special file (device, socket, pipe).
// Symlinks are not followed.
func IsSpecialFile(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}

	mode := info.Mode()

	// Check for special file types
	switch {
	case mode&os.ModeDevice != 0:
		return true, fmt.Errorf("is a device file")
	case mode&os.ModeCharDevice != 0:
		return true, fmt.Errorf("is a character device")
	case mode&os.ModeSocket != 0:
		return true, fmt.Errorf("is a socket")
	case mode&os.ModeNamedPipe != 0:
		return true, fmt.Errorf("is a named pipe (FIFO)")
	}

	return false, nil
}

// IsSafeToDelete checks that path is still a regular file
func IsSafeToDelete(path string) error {
	// Use Lstat to not follow symlinks (prevents TOCTOU attacks)
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return ErrSymlink
	}

	if isSpecial, err := IsSpecialFile(path); isSpecial {
		return fmt.Errorf("%w: %v", ErrSpecialFile, err)
	}

	if info.IsDir() {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.EISDIR}
	}

	return nil
}
