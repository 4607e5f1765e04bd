// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU concatenation engine.
//
// # Overview
//
// The engine joins tensors stored in plain or channel-blocked formats into a
// destination of any supported format:
//   - Pure Go implementation (no CGO)
//   - f32, s8, bf16 and f16 elements, copied bit-exactly
//   - Destination padding is always left zeroed
//   - Sources and rows are copied in parallel
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/blockcat/backend/cpu"
//	    "github.com/born-ml/blockcat/concat"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    plan, err := concat.NewPlan(srcs, dst, 1)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := backend.Concat(plan, srcData, dstData); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Thread Safety
//
// A Backend holds only configuration and is safe for concurrent use on
// disjoint buffers.
package cpu
