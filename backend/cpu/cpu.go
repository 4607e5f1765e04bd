// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/go-logr/logr"

	internalcpu "github.com/born-ml/blockcat/internal/backend/cpu"
	"github.com/born-ml/blockcat/internal/parallel"
)

// Backend represents the CPU concatenation engine.
type Backend = internalcpu.CPUBackend

// Option configures a Backend.
type Option = internalcpu.Option

// ParallelConfig controls how copy loops are spread over goroutines.
type ParallelConfig = parallel.Config

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New(cpu.WithParallel(cpu.Sequential()))
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithParallel sets the worker configuration.
func WithParallel(cfg ParallelConfig) Option {
	return internalcpu.WithParallel(cfg)
}

// WithLogger sets the logger for plan diagnostics. Rejections are logged at
// V(1), per-source progress at V(2).
func WithLogger(log logr.Logger) Option {
	return internalcpu.WithLogger(log)
}

// DefaultParallel returns a configuration using every CPU.
func DefaultParallel() ParallelConfig {
	return parallel.DefaultConfig()
}

// Sequential returns a configuration that runs every copy inline.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}
