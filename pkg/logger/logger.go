// Package logger constructs the structured, per-service loggers used
// across the storage core. Every component receives a *zap.SugaredLogger
// named after the subsystem it belongs to, so multiplexed actor output
// stays attributable (§5: one mailbox per actor, one named logger per
// actor).
package logger

import (
	"go.uber.org/zap"
)

// New builds a production-profile SugaredLogger tagged with service.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Sugar().Named(service)
}

// NewDevelopment builds a development-profile SugaredLogger (human
// readable, debug level enabled) tagged with service. Used by cmd/vastctl
// and tests that want readable output.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Sugar().Named(service)
}

// Nop returns a logger that discards everything, for tests that don't
// care about log output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
