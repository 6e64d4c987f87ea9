// Package client implements SurfStore's client-side state machine: the
// upload/download/delete operations an end user or cmd/client drives.
//
// # Overview
//
// The client owns no durable state of its own beyond two caches (see
// below); every fact about a file's existence and contents lives in the
// MetadataStore and BlockStores it talks to over HTTP. A Client is cheap
// to construct and safe to use from a single goroutine per logical
// operation — concurrent callers sharing one Client are fine too, since
// rpcclient.go's RPC stubs hold no mutable state and the remote stores
// serialize conflicting writes on their own.
//
// # Upload
//
// Chunk the file into 4096-byte blocks (the last block may be shorter),
// hash each with SHA-256, read the file's current version, and try to
// commit (version+1, hashlist). A missing-blocks rejection names exactly
// which blocks to upload before retrying; a wrong-version rejection means
// a concurrent writer won the race, so the client re-reads and retries
// with the new version. Blocks are kept in an in-memory LRU
// (github.com/hashicorp/golang-lru/v2) for the duration of the call, so a
// missing-blocks retry never re-reads the source file from disk.
//
// # Download
//
// Read (version, hashlist); a version of 0 or a tombstone means the file
// doesn't exist (ErrRemoteFileNotFound). Otherwise fetch each block — from
// a local per-hash cache file in the destination directory if present,
// from its owning BlockStore shard otherwise, caching it to disk on the
// way — and concatenate in hashlist order. A second download of the same
// file into the same directory touches no BlockStore at all.
//
// # Delete
//
// Same read-then-retry shape as Upload, but against delete_file: no
// missing-blocks case exists since a delete names no blocks.
//
// # Debug output
//
// Every read_file call made on the way to a commit logs "Version: <v>" to
// stderr via the standard log package, mirroring the original
// implementation's self.eprint('Version:', v) (original_source/client.py).
// This is diagnostic output, not part of the client's return-value
// contract — callers should never parse it.
package client
