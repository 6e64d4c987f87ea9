package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dreamware/surfstore/internal/mserrors"
)

// httpClient is the shared HTTP client for all RPCs, in the shape of the
// teacher's package-level cluster.httpClient: a short timeout so a dead peer
// fails fast instead of hanging the caller.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// BlockStoreClient is the client-side RPC stub for one BlockStore shard.
type BlockStoreClient struct {
	baseURL string
}

// NewBlockStoreClient builds a stub for the BlockStore reachable at baseURL
// (e.g. "http://localhost:8081").
func NewBlockStoreClient(baseURL string) *BlockStoreClient {
	return &BlockStoreClient{baseURL: baseURL}
}

// ErrBlockNotFound is returned by Get when the BlockStore does not have the
// requested hash.
var ErrBlockNotFound = fmt.Errorf("block not found")

// Has implements meta.BlockStoreClient and is also used directly by the
// client's upload loop.
func (b *BlockStoreClient) Has(ctx context.Context, hash string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, b.baseURL+"/blocks/"+hash, nil)
	if err != nil {
		return false, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// Get fetches the bytes for hash, or ErrBlockNotFound if the BlockStore
// doesn't have it.
func (b *BlockStoreClient) Get(ctx context.Context, hash string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/blocks/"+hash, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrBlockNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blockstore get %s: http %d", hash, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Put uploads block under hash. The caller is expected to have computed hash
// itself; the BlockStore does not re-derive it unless that shard was
// started with -verify-hashes.
func (b *BlockStoreClient) Put(ctx context.Context, hash string, block []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/blocks/"+hash, bytes.NewReader(block))
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("blockstore put %s: http %d: %s", hash, resp.StatusCode, body)
	}
	return nil
}

// MetadataClient is the client-side RPC stub for the single MetadataStore.
type MetadataClient struct {
	baseURL string
}

// NewMetadataClient builds a stub for the MetadataStore reachable at
// baseURL.
func NewMetadataClient(baseURL string) *MetadataClient {
	return &MetadataClient{baseURL: baseURL}
}

// wireReadResponse mirrors meta.ReadResponse without importing the server
// package, keeping the client's dependency surface limited to the wire
// format rather than the MetadataStore's internals.
type wireReadResponse struct {
	Version  int      `json:"version"`
	HashList []string `json:"hashlist"`
	Deleted  bool     `json:"deleted"`
}

type wireModifyRequest struct {
	Version  int      `json:"version"`
	HashList []string `json:"hashlist"`
}

type wireDeleteRequest struct {
	Version int `json:"version"`
}

type wireErrorResponse struct {
	Kind    string   `json:"kind"`
	Missing []string `json:"missing,omitempty"`
	Current int      `json:"current,omitempty"`
}

// ReadFile calls MetadataStore.read_file.
func (m *MetadataClient) ReadFile(ctx context.Context, filename string) (version int, hashlist []string, deleted bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/files/"+filename, nil)
	if err != nil {
		return 0, nil, false, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, false, err
	}
	defer resp.Body.Close()

	var wire wireReadResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return 0, nil, false, err
	}
	return wire.Version, wire.HashList, wire.Deleted, nil
}

// ModifyFile calls MetadataStore.modify_file. On rejection it returns
// *mserrors.MissingBlocksError or *mserrors.WrongVersionError.
func (m *MetadataClient) ModifyFile(ctx context.Context, filename string, version int, hashlist []string) error {
	body, err := json.Marshal(wireModifyRequest{Version: version, HashList: hashlist})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/files/"+filename+"/modify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeMutationError(resp)
}

// DeleteFile calls MetadataStore.delete_file. On rejection it returns
// *mserrors.WrongVersionError.
func (m *MetadataClient) DeleteFile(ctx context.Context, filename string, version int) error {
	body, err := json.Marshal(wireDeleteRequest{Version: version})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/files/"+filename+"/delete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeMutationError(resp)
}

func decodeMutationError(resp *http.Response) error {
	if resp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("metastore: http %d: %s", resp.StatusCode, body)
	}
	var wire wireErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return err
	}
	switch wire.Kind {
	case "missing-blocks":
		return &mserrors.MissingBlocksError{Missing: wire.Missing}
	case "wrong-version":
		return &mserrors.WrongVersionError{Current: wire.Current}
	default:
		return fmt.Errorf("metastore: unrecognized error kind %q", wire.Kind)
	}
}
