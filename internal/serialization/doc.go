// Package serialization dumps and loads tensor buffers as SafeTensors files.
//
// File layout:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON, one entry per tensor plus "__metadata__"]
//	[tensor data: raw bytes]
//
// Buffers are stored in physical order, padding included, so a blocked tensor
// round-trips exactly. The stored shape is the physical dims; the logical
// shape and the format live in the metadata under "<name>.shape" and
// "<name>.format". A SHA-256 of each tensor's bytes is kept under
// "<name>.sha256".
package serialization
