// Package lock prevents two gitdoc watch sessions from running against the
// same repository at once.
//
// Two sessions on one working tree would each debounce and commit the same
// edits, so the CLI takes an exclusive flock before starting the session:
//
//	locker, err := lock.New(repo.Root())
//	if err != nil {
//	    return err
//	}
//	if err := locker.Acquire(); err != nil {
//	    return err // wraps errors.ErrAlreadyRunning when another session is live
//	}
//	defer locker.Release()
//
// A lock file left behind by a process that no longer exists is detected
// through the PID it records and reclaimed.
package lock
