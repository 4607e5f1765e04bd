// Package cpu implements the host-memory concatenation engine.
package cpu

import (
	"github.com/go-logr/logr"

	"github.com/born-ml/blockcat/internal/parallel"
)

// CPUBackend runs concatenation plans on host memory.
//
// A CPUBackend holds only immutable configuration; one instance may serve
// concurrent calls on disjoint buffers.
type CPUBackend struct {
	parallel parallel.Config
	log      logr.Logger
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the worker configuration used by copy loops.
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// WithLogger sets the logger for plan and copy diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(cpu *CPUBackend) {
		cpu.log = log
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		parallel: parallel.DefaultConfig(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the backend's worker configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.parallel
}
