// Command blockstore runs one BlockStore instance: a content-addressed
// put/get/has service for raw block bytes, per spec.md §4.1.
//
// Configuration is read from the shared SurfStore config file (spec.md §6);
// this process serves whichever "block<i>:" line matches -shard.
//
// Required flags:
//
//	-config   path to the SurfStore config file
//	-shard    1-based index into the config file's block<i> lines
//
// Optional flags:
//
//	-verify-hashes   reject store_block calls whose bytes don't hash to
//	                 the claimed key (spec open question 3; off by default)
//
// One process serves exactly one shard: a cluster of N BlockStores is N
// separate invocations of this binary, each pointed at a different -shard
// index against the same config file. -shard is validated against the
// config file's block count at startup, so a typo in the deploy script
// fails fast instead of silently serving the wrong address.
//
// Example usage:
//
//	blockstore -config surfstore.conf -shard 1
//	blockstore -config surfstore.conf -shard 2 -verify-hashes
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

	"github.com/dreamware/surfstore/internal/block"
	"github.com/dreamware/surfstore/internal/config"
)

// main reads -config/-shard/-verify-hashes, builds the Store for this
// shard, and serves it until SIGINT/SIGTERM triggers a graceful shutdown.
//
// A bad -shard value (non-positive, or past the end of the config file's
// block<i> lines) is a fatal startup error: there is no way to serve a
// shard that doesn't exist, so retrying in place would just loop forever.
func main() {
	configPath := flag.String("config", "", "path to the SurfStore config file")
	shard := flag.Int("shard", 0, "1-based index into the config file's block<i> lines")
	verifyHashes := flag.Bool("verify-hashes", false, "reject store_block calls with a mismatched hash")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("blockstore: -config is required")
	}
	if *shard <= 0 {
		log.Fatalf("blockstore: -shard must be a positive 1-based index")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("blockstore: %v", err)
	}
	if *shard > len(cfg.BlockStores) {
		log.Fatalf("blockstore: -shard %d exceeds %d configured block stores", *shard, len(cfg.BlockStores))
	}
	addr := cfg.BlockStores[*shard-1]

	store := block.NewStore(*verifyHashes)
	srv := &http.Server{
		Addr:              addr.String(),
		Handler:           block.NewServer(store).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("blockstore[shard %d] listening on %s", *shard, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("blockstore: listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("blockstore: shutdown error: %v", err)
	}
	log.Println("blockstore stopped")
}
