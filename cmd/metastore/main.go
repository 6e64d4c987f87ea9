// Command metastore runs the single MetadataStore instance: the
// version-tracked filename directory described in spec.md §4.2.
//
// Configuration is read from the shared SurfStore config file (spec.md §6);
// the metastore connects to every configured block<i> address as an RPC
// client for the missing-blocks presence check.
//
// Required flags:
//
//	-config   path to the SurfStore config file
//
// Lifecycle:
//
//  1. Parse flags and load the config file; either failure is fatal.
//  2. Build one meta.BlockStoreClient per configured block<i> address.
//  3. Construct the meta.Store and wrap it in an HTTP server.
//  4. Serve in a background goroutine; block on SIGINT/SIGTERM.
//  5. On signal, shut the server down with a 5-second grace period.
//
// Example usage:
//
//	metastore -config surfstore.conf
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/surfstore/internal/client"
	"github.com/dreamware/surfstore/internal/config"
	"github.com/dreamware/surfstore/internal/meta"
)

// main reads -config, builds the MetadataStore and its BlockStore RPC
// handles, and serves until told to stop.
//
// Exit behavior:
//   - A missing or malformed -config is a fatal startup error (log.Fatalf,
//     process exits non-zero); there is nothing sensible to retry.
//   - Once serving, the only normal way to stop is SIGINT or SIGTERM,
//     which triggers a graceful net/http.Server.Shutdown with a 5-second
//     timeout so in-flight requests finish rather than being dropped.
func main() {
	configPath := flag.String("config", "", "path to the SurfStore config file")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("metastore: -config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("metastore: %v", err)
	}

	blockStores := make([]meta.BlockStoreClient, len(cfg.BlockStores))
	for i, addr := range cfg.BlockStores {
		blockStores[i] = client.NewBlockStoreClient("http://" + addr.String())
	}

	store := meta.NewStore(cfg.NumBlockStores, blockStores)
	srv := &http.Server{
		Addr:              cfg.Metadata.String(),
		Handler:           meta.NewServer(store).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("metastore listening on %s (%d block stores)", cfg.Metadata, len(cfg.BlockStores))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metastore: listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("metastore: shutdown error: %v", err)
	}
	log.Println("metastore stopped")
}
