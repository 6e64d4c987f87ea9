// Package client implements the SurfStore client: the upload/download/delete
// state machine that drives the MetadataStore's version protocol and routes
// blocks to the correct BlockStore shard. See doc.go for the protocol
// narrative.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dreamware/surfstore/internal/config"
	"github.com/dreamware/surfstore/internal/hashutil"
	"github.com/dreamware/surfstore/internal/mserrors"
)

// defaultCacheCapacity bounds the in-memory hash->bytes map a single upload
// keeps around to re-send blocks on a missing-blocks retry, without reading
// the source file again. Sized at 1<<18 = 262,144 blocks, i.e. 1 GiB of
// 4096-byte blocks (SPEC_FULL.md §5). Blocks evicted from the cache are not
// re-read from the source file: when a missing-blocks retry names a block
// that is no longer cached, Upload returns an error.
const defaultCacheCapacity = 1 << 18

// ErrLocalFileNotFound is returned by Upload when the local source file
// does not exist.
var ErrLocalFileNotFound = errors.New("client: local file not found")

// ErrRemoteFileNotFound is returned by Download when the remote file has
// never existed or is tombstoned.
var ErrRemoteFileNotFound = errors.New("client: remote file not found")

// Client drives uploads, downloads, and deletes against one MetadataStore
// and N BlockStore shards.
type Client struct {
	meta        *MetadataClient
	blockStores []*BlockStoreClient
}

// New builds a Client from a parsed Config.
func New(cfg *config.Config) *Client {
	blockStores := make([]*BlockStoreClient, len(cfg.BlockStores))
	for i, addr := range cfg.BlockStores {
		blockStores[i] = NewBlockStoreClient("http://" + addr.String())
	}
	return &Client{
		meta:        NewMetadataClient("http://" + cfg.Metadata.String()),
		blockStores: blockStores,
	}
}

func (c *Client) shardFor(hash string) *BlockStoreClient {
	return c.blockStores[hashutil.Shard(hash, len(c.blockStores))]
}

// Upload chunks, hashes, and commits localPath to the MetadataStore under
// its basename, retrying on missing-blocks and wrong-version rejections
// until the commit succeeds (spec.md §4.3).
func (c *Client) Upload(ctx context.Context, localPath string) error {
	data, err := os.ReadFile(localPath)
	if errors.Is(err, os.ErrNotExist) {
		return ErrLocalFileNotFound
	}
	if err != nil {
		return fmt.Errorf("upload: read %s: %w", localPath, err)
	}

	name := filepath.Base(localPath)
	blocks := hashutil.Chunk(data)
	hashlist := make([]string, len(blocks))

	cache, err := lru.New[string, []byte](defaultCacheCapacity)
	if err != nil {
		return err
	}
	for i, b := range blocks {
		h := hashutil.Hash(b)
		hashlist[i] = h
		cp := make([]byte, len(b))
		copy(cp, b)
		cache.Add(h, cp)
	}

	for {
		version, _, _, err := c.meta.ReadFile(ctx, name)
		if err != nil {
			return fmt.Errorf("upload: read_file: %w", err)
		}
		log.Printf("Version: %d", version)

		err = c.meta.ModifyFile(ctx, name, version+1, hashlist)
		if err == nil {
			return nil
		}

		var missing *mserrors.MissingBlocksError
		if errors.As(err, &missing) {
			if err := c.uploadMissingBlocks(ctx, missing.Missing, cache); err != nil {
				return err
			}
			continue
		}

		var wrongVersion *mserrors.WrongVersionError
		if errors.As(err, &wrongVersion) {
			continue // another writer raced us; re-read and retry.
		}

		return fmt.Errorf("upload: modify_file: %w", err)
	}
}

func (c *Client) uploadMissingBlocks(ctx context.Context, missing []string, cache *lru.Cache[string, []byte]) error {
	for _, h := range missing {
		bs := c.shardFor(h)
		present, err := bs.Has(ctx, h)
		if err != nil {
			return fmt.Errorf("upload: has_block %s: %w", h, err)
		}
		if present {
			continue
		}
		block, ok := cache.Get(h)
		if !ok {
			return fmt.Errorf("upload: block %s not in local cache", h)
		}
		if err := bs.Put(ctx, h, block); err != nil {
			return fmt.Errorf("upload: store_block %s: %w", h, err)
		}
	}
	return nil
}

// Download fetches remotename's current version and writes it to
// localDir/remotename, byte-identical to the uploaded original. Each
// block is read from a per-hash cache file in localDir if present, and
// written there after a BlockStore fetch otherwise, so a repeat download
// of the same hashes makes no BlockStore calls (spec.md §4.3).
func (c *Client) Download(ctx context.Context, remotename, localDir string) error {
	version, hashlist, deleted, err := c.meta.ReadFile(ctx, remotename)
	if err != nil {
		return fmt.Errorf("download: read_file: %w", err)
	}
	log.Printf("Version: %d", version)
	if version == 0 || deleted {
		return ErrRemoteFileNotFound
	}

	out := make([]byte, 0, len(hashlist)*hashutil.BlockSize)
	for _, h := range hashlist {
		block, err := c.readBlockWithCache(ctx, h, localDir)
		if err != nil {
			return fmt.Errorf("download: block %s: %w", h, err)
		}
		out = append(out, block...)
	}

	return os.WriteFile(filepath.Join(localDir, filepath.Base(remotename)), out, 0o644)
}

func (c *Client) readBlockWithCache(ctx context.Context, hash, localDir string) ([]byte, error) {
	cachePath := filepath.Join(localDir, hash)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	block, err := c.shardFor(hash).Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(cachePath, block, 0o644); err != nil {
		return nil, err
	}
	return block, nil
}

// Delete tombstones remotename, retrying on wrong-version exactly like
// Upload.
func (c *Client) Delete(ctx context.Context, remotename string) error {
	for {
		version, _, _, err := c.meta.ReadFile(ctx, remotename)
		if err != nil {
			return fmt.Errorf("delete: read_file: %w", err)
		}
		log.Printf("Version: %d", version)

		err = c.meta.DeleteFile(ctx, remotename, version+1)
		if err == nil {
			return nil
		}

		var wrongVersion *mserrors.WrongVersionError
		if errors.As(err, &wrongVersion) {
			continue
		}
		return fmt.Errorf("delete: delete_file: %w", err)
	}
}
