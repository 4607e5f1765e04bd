// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package concat validates and plans tensor concatenation across memory formats.
//
// # Overview
//
// A Plan names the source descriptors, the destination descriptor and the
// axis to join along. Validate checks the plan before any data moves:
//   - every tensor has the same rank (2 to 5) and element type
//   - every dimension except the axis matches the destination
//   - the axis extents of the sources sum to the destination's
//
// Failures unwrap to ErrInvalidArgument. Plans that are legal but have no
// copy path unwrap to ErrUnimplemented: a blocked destination joined along
// channels needs every non-empty source to start on an 8-channel boundary.
//
// # Basic Usage
//
//	dst, err := concat.Build(srcs, 1, concat.WithFormat(tensor.NChw16c))
//	if errors.Is(err, concat.ErrUnimplemented) {
//	    dst, err = concat.Build(srcs, 1, concat.WithFormat(tensor.NCHW))
//	}
package concat
