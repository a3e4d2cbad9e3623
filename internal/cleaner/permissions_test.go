package cleaner

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestIsSpecialFile(t *testing.T) {
	tmpDir := t.TempDir()

	regular := filepath.Join(tmpDir, "regular.txt")
	if err := os.WriteFile(regular, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	isSpecial, err := IsSpecialFile(regular)
	if err != nil || isSpecial {
		t.Errorf("regular file: isSpecial=%v err=%v", isSpecial, err)
	}

	fifo := filepath.Join(tmpDir, "pipe")
	if err := syscall.Mkfifo(fifo, 0644); err != nil {
		t.Skipf("mkfifo not supported: %v", err)
	}
	if isSpecial, _ := IsSpecialFile(fifo); !isSpecial {
		t.Error("expected named pipe to be special")
	}

	if _, err := IsSpecialFile(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsSpecialFile_Socket(t *testing.T) {
	dir, err := os.MkdirTemp("", "sock")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	sock := filepath.Join(dir, "s")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Skipf("unix sockets not supported: %v", err)
	}
	defer l.Close()

	if isSpecial, _ := IsSpecialFile(sock); !isSpecial {
		t.Error("expected socket to be special")
	}
}

func TestIsSafeToDelete(t *testing.T) {
	tmpDir := t.TempDir()

	regular := filepath.Join(tmpDir, "regular.txt")
	if err := os.WriteFile(regular, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := IsSafeToDelete(regular); err != nil {
		t.Errorf("regular file should be safe: %v", err)
	}

	link := filepath.Join(tmpDir, "link")
	if err := os.Symlink(regular, link); err != nil {
		t.Fatal(err)
	}
	if err := IsSafeToDelete(link); !errors.Is(err, ErrSymlink) {
		t.Errorf("symlink: got %v, want ErrSymlink", err)
	}

	if err := IsSafeToDelete(tmpDir); !errors.Is(err, syscall.EISDIR) {
		t.Errorf("directory: got %v, want EISDIR", err)
	}

	if err := IsSafeToDelete(filepath.Join(tmpDir, "missing")); !os.IsNotExist(err) {
		t.Errorf("missing: got %v, want not-exist", err)
	}

	fifo := filepath.Join(tmpDir, "pipe")
	if err := syscall.Mkfifo(fifo, 0644); err == nil {
		if err := IsSafeToDelete(fifo); !errors.Is(err, ErrSpecialFile) {
			t.Errorf("fifo: got %v, want ErrSpecialFile", err)
		}
	}
}
