// Package meta implements SurfStore's MetadataStore: the single
// version-tracked directory mapping filenames to block hashlists.
//
// # Overview
//
// The MetadataStore is the system's single source of truth for "what
// version of what file currently exists." It never touches block bytes
// itself; instead, every mutation cross-checks block presence against the
// BlockStore shards before committing, so a file's hashlist can only ever
// name blocks that are actually durable somewhere in the cluster.
//
// # Architecture
//
//	┌────────────────────────────────────────────┐
//	│               MetadataStore                 │
//	├────────────────────────────────────────────┤
//	│  HTTP API:                                  │
//	│    GET  /files/<name>          read_file    │
//	│    POST /files/<name>/modify   modify_file  │
//	│    POST /files/<name>/delete   delete_file  │
//	├────────────────────────────────────────────┤
//	│  Components:                                │
//	│    Store   - filename -> fileEntry map      │
//	│    Server  - http.Handler wrapping it       │
//	│    N BlockStoreClient handles, one per shard│
//	└────────────────────────────────────────────┘
//
// # Protocol
//
// Three operations, each normalizing the filename to its basename first
// (spec.md §4.2 treats "a/b/c.txt" and "c.txt" as the same file, matching
// the original implementation's flat namespace):
//
//	ReadFile(name)                    -> (version, hashlist | tombstone | never-seen)
//	ModifyFile(name, version, hashes) -> commit | MissingBlocksError | WrongVersionError
//	DeleteFile(name, version)         -> commit (tombstone) | WrongVersionError
//
// ModifyFile's block-presence check and its version/commit step run inside
// one critical section: no block can be observed present during the check
// and then vanish before commit, because nothing else can run concurrently
// with the check (spec.md §5). This makes "all blocks present implies
// commit" atomic at this single node, at the cost of serializing all
// metadata operations to one at a time — an explicit, documented trade-off,
// not an oversight.
//
// # State machine
//
// Per filename: Never-seen(v=0), Live(v>=1), Tombstoned(v>=1). ModifyFile
// moves any state to Live and DeleteFile moves any state to Tombstoned
// (both in store.go), every transition incrementing version by exactly 1.
// A live file may have an empty (but non-nil) hashlist
// (spec.md §4.2: "if the hashlist is empty, the file is considered live
// but empty") — that state is distinct from Tombstoned, whose hashlist is
// always nil.
//
// # Concurrency and Thread Safety
//
// Store.mu is a plain sync.Mutex, not sync.RWMutex: every operation,
// including reads, takes the exclusive lock. Reads are included because
// spec.md never calls for read/write concurrency inside the MetadataStore
// and a single coarse lock is the simplest correct implementation of the
// atomicity requirement described above; splitting it into a finer-grained
// scheme would only pay off under contention spec.md's scope doesn't
// anticipate (a single-process metadata service, not a sharded one).
//
// # Failure modes
//
// A mutation can fail in exactly two tagged ways (internal/mserrors):
// MissingBlocksError, naming every hash in the attempted hashlist that its
// owning BlockStore shard does not currently report as present (a failed
// presence check counts as absent), and WrongVersionError, naming the filename's
// actual current version so the caller can re-read and retry. Both are
// ordinary return values, never panics or out-of-band signals — callers
// inspect them with errors.As.
package meta
