// Package mmap provides read-only memory-mapped file access.
//
// # Overview
//
// Memory mapping allows direct access to file contents without copying data
// through kernel buffers. Snapshot containers use it to serve index and value
// sections of large matrices straight from the page cache, and local blob
// stores use it to hand out zero-copy readers.
//
// # Usage
//
//	m, err := mmap.Open("matrix.spx")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// Create a view into a specific section
//	region, _ := m.Region(offset, size)
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent read access. The Close() method
// is idempotent and protected by atomic operations. However, callers must
// ensure no goroutines access Bytes() after Close() returns.
package mmap
