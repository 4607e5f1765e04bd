// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor describes tensors in plain and channel-blocked memory formats.
//
// # Overview
//
// A Descriptor pairs a logical shape with an element type and a memory
// format. A Buffer is raw storage sized to the descriptor's physical layout.
//
// # Memory Formats
//
// Plain formats store dimensions in a fixed nested order:
//   - nc, ncw, nchw, ncdhw (channels-first)
//   - nwc, nhwc, ndhwc (channels-last)
//
// Blocked formats split channels into groups of 8 or 16. The last group is
// padded with zeros when the channel count is not a multiple of the block:
//   - nCw8c, nChw8c, nCdhw8c
//   - nCw16c, nChw16c, nCdhw16c
//
// # Supported Data Types
//
//   - f32 (IEEE float32)
//   - s8 (int8)
//   - bf16 (bfloat16)
//   - f16 (IEEE half float)
//
// # Basic Usage
//
//	desc, err := tensor.NewDescriptor(tensor.Shape{4, 25, 5, 5}, tensor.Float32, tensor.NChw16c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	buf, _ := tensor.NewBuffer(desc)
//	fmt.Println(desc.PhysicalSize()) // 3200: 25 channels padded to 32
package tensor
