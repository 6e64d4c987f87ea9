// Package block implements the BlockStore side of SurfStore: a minimal
// content-addressed put/get/has service for raw block bytes.
//
// # Overview
//
// A BlockStore holds no state beyond its hash-to-bytes map (see Store) and
// serves requests concurrently (see Server); it has no notion of files,
// versions, or filenames — those live entirely in the MetadataStore
// (internal/meta). The cluster runs N independent BlockStores; a block's
// owning shard is a pure function of its hash (internal/hashutil.Shard),
// computed identically by the client and the MetadataStore, so a
// BlockStore never needs to know about its siblings.
//
// # Architecture
//
//	┌──────────────────────────────────────┐
//	│              BlockStore              │
//	├──────────────────────────────────────┤
//	│  HTTP API:                           │
//	│    POST /blocks/<hash>   store_block │
//	│    GET  /blocks/<hash>   get_block   │
//	│    HEAD /blocks/<hash>   has_block   │
//	│    GET  /stats           ambient     │
//	├──────────────────────────────────────┤
//	│  Components:                         │
//	│    Store   - hash -> []byte map      │
//	│    Server  - http.Handler wrapping it│
//	└──────────────────────────────────────┘
//
// # Concurrency and Thread Safety
//
// Store is safe for concurrent use from multiple goroutines (one per HTTP
// request, via net/http's default one-goroutine-per-connection model):
//
//   - Put takes the exclusive lock only for the map write itself; hashing
//     and the optional verify-hash check happen before acquiring it.
//   - Get and Has take the shared (read) lock; many concurrent reads never
//     block each other.
//   - Put stores a private copy of the caller's bytes and Get returns a
//     private copy of the stored ones, so a caller can never observe or corrupt another goroutine's buffer
//     through the shared map entry.
//
// # Memory
//
// Every stored block is kept in memory for the lifetime of the process:
// there is no eviction, no disk spill, and no size cap beyond whatever the
// host has available. A block that is uploaded once and never downloaded
// again still occupies its slot in the map. This matches spec.md's scope
// (no persistence, no GC) rather than being an oversight; a production
// deployment would add one of the eviction or persistence strategies
// internal/storage's now-removed RocksDB/Kuzu variants sketched for torua,
// but SurfStore's spec has no such requirement.
//
// # Verification
//
// store_block normally trusts the caller's claimed hash (the client
// computed it when chunking the file). Passing -verify-hashes to
// cmd/blockstore turns on a defensive SHA-256 recomputation on every Put,
// rejecting any block whose bytes don't match the hash under which it was
// submitted (spec.md §9's open question 3). This is off by default to
// match the original implementation and because in the normal case the
// hash is derived from the very bytes being sent — verification only
// matters if a caller is buggy or malicious.
package block
