// Package scanner owns the camera/decoder resource for the verification
// workflow. The concrete decode hardware lives behind the ScanSource
// capability interface so the session and verification logic never touch a
// scanning library directly.
package scanner

import (
	"context"
	"errors"

	"washops/internal/domain"
)

// ErrSourceClosed ends the decode sequence for a closed source. A new Open
// is required to resume scanning; the sequence is not restartable.
var ErrSourceClosed = errors.New("scan source closed")

// Config mirrors the camera options the console widget understands.
type Config struct {
	FacingMode  string `json:"facingMode"`
	TargetFPS   int    `json:"targetFps"`
	ScanBoxSize int    `json:"scanBoxSize"`
}

func (c Config) validate() error {
	switch c.FacingMode {
	case "", "environment", "user":
		return nil
	default:
		return domain.ValidationError{Field: "facingMode", Msg: "must be environment or user"}
	}
}

// withDefaults fills unset options the way the console widget does.
func (c Config) withDefaults() Config {
	if c.FacingMode == "" {
		c.FacingMode = "environment"
	}
	if c.TargetFPS <= 0 {
		c.TargetFPS = 10
	}
	if c.ScanBoxSize <= 0 {
		c.ScanBoxSize = 250
	}
	return c
}

// ScanSource is the camera capability. Open acquires the device, Decode
// blocks until one decode attempt finishes (a payload or a transient error),
// Close releases the device and ends the sequence. Close on a closed source
// is a no-op.
type ScanSource interface {
	Open(cfg Config) error
	Decode(ctx context.Context) (string, error)
	Close() error
}
