// Package files persists the built summary.
//
// A Store saves and loads one summary blob. FileStore writes a JSON envelope
// to disk through a temp file and rename, so a concurrent reader sees either
// the previous blob or the new one, never a partial write. It optionally
// compresses the blob with snappy and still reads the bare JSON array written
// by older tooling. Every envelope records a blake2b digest of its summary,
// checked on load. SQLStore keeps one MySQL row per save and loads the
// newest for its entity. MemoryStore keeps the summary in process.
//
// Loading before anything was saved returns an error wrapping
// ErrMissingSource.
package files
