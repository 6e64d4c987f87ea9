// Package hashutil provides the block-hashing and hash-sharding primitives
// shared by the client and the MetadataStore, so that both sides agree on
// where any given block lives without a coordination round trip.
//
// # Overview
//
// Every block is identified by the lowercase hex SHA-256 of its contents
// (Hash). A file is split into fixed-size blocks (Chunk) before hashing.
// Given a hash and the cluster's shard count, Shard deterministically
// names the one BlockStore responsible for that hash — computed the same
// way by internal/client (before an upload) and internal/meta (during the
// missing-blocks check), with no RPC between them required to agree.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// BlockSize is the maximum size, in bytes, of a single block. Every block
// except the last one in a file is exactly this size.
const BlockSize = 4096

// Hash returns the lowercase hex-encoded SHA-256 digest of block.
func Hash(block []byte) string {
	sum := sha256.Sum256(block)
	return hex.EncodeToString(sum[:])
}

// Chunk splits data into BlockSize-sized blocks, the last of which may be
// shorter. Chunking an empty slice returns an empty slice of blocks (a file
// with zero bytes has zero blocks, not one empty block).
func Chunk(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	blocks := make([][]byte, 0, (len(data)+BlockSize-1)/BlockSize)
	for off := 0; off < len(data); off += BlockSize {
		end := off + BlockSize
		if end > len(data) {
			end = len(data)
		}
		blocks = append(blocks, data[off:end])
	}
	return blocks
}

// Shard computes the shard index that owns the block identified by hash, out
// of n total BlockStores. It is a pure function of (hash, n): the client and
// the MetadataStore compute it identically and never need to ask each other.
//
// Shard parses hash as a base-16 integer, per the glossary definition
// shard(H) = int(H, 16) mod N, rather than truncating to a machine word
// first, so the result does not depend on which 64 bits of the hash a
// smaller integer type would have kept.
func Shard(hash string, n int) int {
	if n <= 0 {
		return 0
	}
	h, ok := new(big.Int).SetString(hash, 16)
	if !ok {
		// A malformed hash still needs a deterministic shard so callers can
		// surface a BlockStore-side not-found rather than a local panic.
		h = new(big.Int)
	}
	mod := big.NewInt(int64(n))
	return int(new(big.Int).Mod(h, mod).Int64())
}
