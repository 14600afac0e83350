// Package errors provides error handling utilities for gitdoc.
//
// It wraps the standard library errors package and adds the sentinel and
// typed errors used across the commit pipeline, so callers can classify
// failures with errors.Is and errors.As:
//
//   - GitError: a git command or go-git call failed (op, args, output)
//   - LockError: the per-repository session lock could not be handled
//   - ConfigError: a setting is invalid
//   - GenerationError: generating a commit message with a model failed
//
// Generation failures are never fatal: the resolver logs them and falls
// back to the template message.
//
// # Usage
//
//	if err != nil {
//	    return errors.Wrap(err, "failed to read changes")
//	}
//
//	if errors.Is(err, errors.ErrNoModel) {
//	    // use the template message
//	}
package errors
