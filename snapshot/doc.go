// Package snapshot persists matrices in a binary container format.
//
// # Container Layout
//
// A container starts with a fixed header carrying the magic number,
// format tag, value kind, shape and codec name, followed by a section
// table and the section payloads. Each format serializes its native
// arrays as one section per array: index arrays as little-endian int64,
// value arrays as little-endian IEEE floats. Every section records the
// decoded length, the stored length and a CRC-32 (Castagnoli) of the
// decoded payload, and every payload starts on an 8-byte boundary.
//
// # Codecs
//
// Section payloads run through a pluggable Codec chosen by name: raw,
// zstd (the default) or lz4. Incompressible sections fall back to raw
// storage per section, so a zstd container may still hold raw payloads.
//
// # Zero-Copy Loads
//
// Read decodes a container from a stream into freshly allocated
// matrices. Open maps the file instead and Load serves raw-coded index
// and value arrays directly out of the mapping on little-endian hosts,
// so multi-gigabyte operands come up at page-cache speed. Matrices
// loaded that way alias the mapping and must not outlive the File.
package snapshot
