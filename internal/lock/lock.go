package lock

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bashhack/gitdoc/internal/errors"
)

// Locker guarantees a single watch session per repository. The lock is an
// flock on a file named after a hash of the repository root; the file holds
// the owner's PID so a lock left behind by a dead process can be reclaimed.
type Locker struct {
	path string
	fd   *os.File
	pid  int
}

// New creates a Locker for repoRoot in the system temp directory.
func New(repoRoot string) (*Locker, error) {
	return NewInDir(os.TempDir(), repoRoot)
}

// NewInDir creates a Locker for repoRoot whose lock file lives in dir.
func NewInDir(dir, repoRoot string) (*Locker, error) {
	if runtime.GOOS == "windows" {
		return nil, errors.NewLockError("", 0,
			errors.Wrap(errors.ErrLockAcquisitionFailure, "gitdoc sessions require a Unix-like operating system"))
	}

	sum := sha256.Sum256([]byte(repoRoot))
	return &Locker{
		path: filepath.Join(dir, fmt.Sprintf("gitdoc-%x.lock", sum[:8])),
		pid:  os.Getpid(),
	}, nil
}

// Path returns the lock file location.
func (l *Locker) Path() string {
	return l.path
}

// Acquire takes the lock. It returns a LockError wrapping
// errors.ErrAlreadyRunning when a live process holds it.
func (l *Locker) Acquire() error {
	if l.fd != nil {
		return nil
	}

	err := l.create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_RDWR, 0o666)
	if err != nil {
		return errors.NewLockError(l.path, 0, errors.Wrap(err, "failed to open existing lock file"))
	}

	if err := flock(f); err != nil {
		_ = f.Close()
		// EWOULDBLOCK and EAGAIN are distinct on some older systems.
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return l.reclaim()
		}
		return errors.NewLockError(l.path, 0, errors.Wrap(err, "failed to acquire lock"))
	}

	// The previous owner exited without removing the file.
	l.fd = f
	if err := l.fd.Truncate(0); err != nil {
		_ = l.Release()
		return errors.NewLockError(l.path, l.pid, errors.Wrap(err, "failed to truncate lock file"))
	}
	return l.writePID()
}

func (l *Locker) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o666)
	if err != nil {
		if os.IsExist(err) {
			return err
		}
		return errors.NewLockError(l.path, 0, errors.Wrap(err, "failed to create lock file"))
	}

	if err := flock(f); err != nil {
		_ = f.Close()
		return errors.NewLockError(l.path, 0, errors.Wrap(err, "failed to lock newly created lock file"))
	}

	l.fd = f
	return l.writePID()
}

// reclaim handles a lock held by someone else: if the recorded PID is dead
// the file is removed and created afresh.
func (l *Locker) reclaim() error {
	owner, err := readPID(l.path)
	if err != nil {
		return errors.NewLockError(l.path, 0,
			errors.Wrap(err, "another gitdoc session holds the lock, but its PID is unreadable"))
	}

	if isProcessRunning(owner) {
		return errors.NewLockError(l.path, owner, errors.ErrAlreadyRunning)
	}

	if err := os.Remove(l.path); err != nil {
		return errors.NewLockError(l.path, owner,
			errors.Wrapf(err, "found stale lock from PID %d, but failed to remove it", owner))
	}

	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return errors.NewLockError(l.path, 0,
				errors.Wrap(errors.ErrAlreadyRunning, "lock was taken right after the stale lock was removed"))
		}
		return err
	}
	return nil
}

func (l *Locker) writePID() error {
	if _, err := l.fd.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		releaseErr := l.Release()
		werr := errors.NewLockError(l.path, l.pid, errors.Wrap(err, "failed to write PID to lock file"))
		if releaseErr != nil {
			return errors.Join(werr, releaseErr)
		}
		return werr
	}
	return nil
}

// Release unlocks and removes the lock file. Releasing an unheld lock is a no-op.
func (l *Locker) Release() error {
	if l.fd == nil {
		return nil
	}

	var errs []error
	if err := unix.Flock(int(l.fd.Fd()), unix.LOCK_UN); err != nil {
		errs = append(errs, errors.NewLockError(l.path, l.pid, errors.Wrap(err, "failed to release lock")))
	}
	if err := l.fd.Close(); err != nil {
		errs = append(errs, errors.NewLockError(l.path, l.pid, errors.Wrap(err, "failed to close lock file")))
	}
	l.fd = nil

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, errors.NewLockError(l.path, l.pid, errors.Wrap(err, "failed to remove lock file")))
	}

	return errors.Join(errs...)
}

func flock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read lock file")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in lock file")
	}
	return pid, nil
}

// isProcessRunning probes pid with signal 0.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
