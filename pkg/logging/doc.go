// Package logging provides structured logging configuration for commercemock.
//
// This package wraps log/slog so the server, the repositories and the CLI log
// the same way. Levels and formats are parsed from configuration strings:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel(cfg.Log.Level),
//	    Format: logging.ParseFormat(cfg.Log.Format),
//	})
//
//	logger.Info("server started", "addr", ":8989")
//
// Components accept a *slog.Logger in their constructor or via SetLogger.
// If no logger is provided, they use Nop().
package logging
