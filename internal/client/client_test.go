package client

import (
	"bytes"
	"context"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/dreamware/surfstore/internal/block"
	"github.com/dreamware/surfstore/internal/config"
	"github.com/dreamware/surfstore/internal/hashutil"
	"github.com/dreamware/surfstore/internal/meta"
)

// testCluster spins up one MetadataStore and N BlockStores over
// httptest.Server, wired together the way cmd/metastore and cmd/blockstore
// wire them in production, and returns a Client configured to talk to them.
type testCluster struct {
	metaSrv    *httptest.Server
	blockSrvs  []*httptest.Server
	blockStore []*block.Store
}

func newTestCluster(t *testing.T, n int) (*Client, *testCluster) {
	t.Helper()

	tc := &testCluster{}
	blockStoreClients := make([]meta.BlockStoreClient, n)
	cfgBlockStores := make([]config.Addr, n)

	for i := 0; i < n; i++ {
		store := block.NewStore(false)
		srv := httptest.NewServer(block.NewServer(store).Handler())
		t.Cleanup(srv.Close)

		tc.blockSrvs = append(tc.blockSrvs, srv)
		tc.blockStore = append(tc.blockStore, store)
		blockStoreClients[i] = NewBlockStoreClient(srv.URL)
		cfgBlockStores[i] = mustParseAddr(t, srv.URL)
	}

	metaStore := meta.NewStore(n, blockStoreClients)
	metaSrv := httptest.NewServer(meta.NewServer(metaStore).Handler())
	t.Cleanup(metaSrv.Close)
	tc.metaSrv = metaSrv

	cfg := &config.Config{
		NumBlockStores: n,
		Metadata:       mustParseAddr(t, metaSrv.URL),
		BlockStores:    cfgBlockStores,
	}
	return New(cfg), tc
}

func mustParseAddr(t *testing.T, rawURL string) config.Addr {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return config.Addr{Host: u.Hostname(), Port: port}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	c, _ := newTestCluster(t, 3)
	ctx := context.Background()

	srcDir := t.TempDir()
	content := append(bytes.Repeat([]byte{'A'}, hashutil.BlockSize), bytes.Repeat([]byte{'B'}, 100)...)
	srcPath := filepath.Join(srcDir, "a.txt")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Upload(ctx, srcPath); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	outDir := t.TempDir()
	if err := c.Download(ctx, "a.txt", outDir); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded content does not match uploaded content")
	}
}

func TestDownloadUsesCacheOnSecondCall(t *testing.T) {
	c, tc := newTestCluster(t, 2)
	ctx := context.Background()

	srcDir := t.TempDir()
	content := bytes.Repeat([]byte{'X'}, hashutil.BlockSize+50)
	srcPath := filepath.Join(srcDir, "f.bin")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Upload(ctx, srcPath); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	if err := c.Download(ctx, "f.bin", outDir); err != nil {
		t.Fatal(err)
	}

	// Close every BlockStore server: a second download must be served
	// entirely from the on-disk per-hash cache written by the first.
	for _, srv := range tc.blockSrvs {
		srv.Close()
	}

	if err := c.Download(ctx, "f.bin", outDir); err != nil {
		t.Fatalf("second Download() should use cache, got error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(outDir, "f.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("cached download content mismatch")
	}
}

func TestDownloadNotFound(t *testing.T) {
	c, _ := newTestCluster(t, 1)
	ctx := context.Background()

	err := c.Download(ctx, "never-uploaded.txt", t.TempDir())
	if err != ErrRemoteFileNotFound {
		t.Errorf("Download() error = %v, want ErrRemoteFileNotFound", err)
	}
}

func TestUploadLocalFileNotFound(t *testing.T) {
	c, _ := newTestCluster(t, 1)
	ctx := context.Background()

	err := c.Upload(ctx, filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != ErrLocalFileNotFound {
		t.Errorf("Upload() error = %v, want ErrLocalFileNotFound", err)
	}
}

func TestDeleteThenDownloadNotFound(t *testing.T) {
	c, _ := newTestCluster(t, 1)
	ctx := context.Background()

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "d.txt")
	if err := os.WriteFile(srcPath, []byte("short file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Upload(ctx, srcPath); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "d.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err := c.Download(ctx, "d.txt", t.TempDir())
	if err != ErrRemoteFileNotFound {
		t.Errorf("Download() after delete error = %v, want ErrRemoteFileNotFound", err)
	}
}

func TestDedupUploadTwiceIsIdempotent(t *testing.T) {
	c, tc := newTestCluster(t, 2)
	ctx := context.Background()

	srcDir := t.TempDir()
	content := bytes.Repeat([]byte{'Z'}, hashutil.BlockSize*2)
	srcPath := filepath.Join(srcDir, "dup.txt")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Upload(ctx, srcPath); err != nil {
		t.Fatalf("first Upload() error = %v", err)
	}
	if err := c.Upload(ctx, srcPath); err != nil {
		t.Fatalf("second Upload() error = %v", err)
	}

	total := 0
	for _, s := range tc.blockStore {
		total += s.Stats().BlockCount
	}
	// Both 4096-byte blocks are all 'Z', so they share one hash and are
	// stored once.
	if total != 1 {
		t.Errorf("expected 1 unique block across all shards, got %d", total)
	}
}
