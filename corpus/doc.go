// Package corpus provides read-mostly blob stores for matrix collections.
//
// A Store names immutable matrix blobs (snapshot containers or Matrix
// Market files) and hands out read-only handles. Implementations cover
// the local filesystem (memory-mapped), plain memory (tests and
// tooling), Amazon S3, MinIO, and a pull-through disk cache that sits
// in front of a remote store.
//
// FetchCOO ties the package to the decoders: it opens a blob, sniffs
// the snapshot magic versus Matrix Market text, and returns a canonical
// COO matrix either way.
package corpus
