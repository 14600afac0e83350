// Package logger provides logging facilities for gitdoc.
//
// It defines the Logger interface injected into every component and
// DefaultLogger, the implementation used by the CLI. Debug records are
// written as JSON lines through zap; user-facing lines are printed to the
// terminal with a colored emoji prefix.
//
// # Message Types
//
//   - Info: debug-only, log file
//   - Warning: log file, echoed to stdout in verbose mode
//   - Error: log file and stderr
//   - InfoToUser, WarningToUser, Success: stdout and log file
//   - StatusMessage: stdout only
//
// # Usage
//
//	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
//	defer log.Close()
//
//	log.AddField("session", sessionID)
//	log.Info("commit scheduled in %v", delay)
//	log.Success("Committed %d file(s)", n)
//
// DefaultLogger is safe for concurrent use.
package logger
