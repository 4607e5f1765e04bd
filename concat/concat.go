// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package concat

import (
	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/tensor"
)

// Plan describes one concatenation.
type Plan = concat.Plan

// Rule identifies a compatibility rule.
type Rule = concat.Rule

// ValidationError describes a rejected plan.
type ValidationError = concat.ValidationError

// BuildOption customizes destination synthesis.
type BuildOption = concat.BuildOption

// Error kinds.
var (
	ErrInvalidArgument = concat.ErrInvalidArgument
	ErrUnimplemented   = concat.ErrUnimplemented
)

// Compatibility rules.
const (
	RuleNoSources = concat.RuleNoSources
	RuleExtent    = concat.RuleExtent
	RuleRank      = concat.RuleRank
	RuleFormat    = concat.RuleFormat
	RuleAxis      = concat.RuleAxis
	RuleDataType  = concat.RuleDataType
	RuleShape     = concat.RuleShape
	RuleAxisSum   = concat.RuleAxisSum
	RuleBlocking  = concat.RuleBlocking
	RuleBuffer    = concat.RuleBuffer
)

// Destination is the ValidationError.Source value for destination faults.
const Destination = concat.Destination

// NewPlan creates a validated plan.
func NewPlan(srcs []tensor.Descriptor, dst tensor.Descriptor, axis int) (Plan, error) {
	return concat.NewPlan(srcs, dst, axis)
}

// Validate applies the compatibility rules to p.
func Validate(p Plan) error {
	return concat.Validate(p)
}

// Build synthesizes a destination descriptor for srcs joined along axis.
func Build(srcs []tensor.Descriptor, axis int, opts ...BuildOption) (tensor.Descriptor, error) {
	return concat.Build(srcs, axis, opts...)
}

// WithFormat requests a destination memory format.
func WithFormat(f tensor.Format) BuildOption {
	return concat.WithFormat(f)
}

// Resolve completes a destination whose shape is nil or whose format is Any.
// A destination given with a shape keeps its data type.
func Resolve(srcs []tensor.Descriptor, dst tensor.Descriptor, axis int) (Plan, error) {
	return concat.Resolve(srcs, dst, axis)
}

// RuleOf returns the rule err violated, or 0.
func RuleOf(err error) Rule {
	return concat.RuleOf(err)
}

// Verify checks a materialized concatenation bit for bit, padding included.
func Verify(srcs []*tensor.Buffer, dst *tensor.Buffer, axis int) error {
	return concat.Verify(srcs, dst, axis)
}
