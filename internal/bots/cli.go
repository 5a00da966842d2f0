// Package bots plays Flappy Ghost headlessly. Autopilot players drive real
// rounds against a ghost store, and a watcher prints the live death feed.
package bots

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/flappyghost/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initialises the global logger on stderr, teeing to logFile
// when one is given. The returned func closes the log file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		return func() error { return nil }, logger.InitWithWriter(os.Stderr)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stderr, file)); err != nil {
		_ = file.Close()
		return nil, err
	}
	return file.Close, nil
}
