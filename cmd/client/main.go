// Command client implements the SurfStore CLI surface from spec.md §6:
//
//	client <config> upload <localpath>
//	client <config> download <remotename> <localdir>
//	client <config> delete <remotename>
//
// On success it prints "OK" to stdout. A missing local source (upload) or a
// missing/tombstoned remote file (download) prints "Not Found". Debug lines
// (including the "Version: <v>" line internal/client logs before every
// commit attempt) and errors go to stderr via the standard log package, in
// the teacher's style.
//
// <config> always precedes the subcommand, which does not match
// urfave/cli/v2's subcommand-first convention; main works around this by
// consuming os.Args[1] itself before handing the remaining args to the
// cli.App (see the comment at the app.Run call below).
//
// Example usage:
//
//	client surfstore.conf upload ./photo.jpg
//	client surfstore.conf download photo.jpg ./downloads
//	client surfstore.conf delete photo.jpg
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	surfclient "github.com/dreamware/surfstore/internal/client"
	"github.com/dreamware/surfstore/internal/config"
)

// main loads the config named by os.Args[1], builds a client against it,
// and dispatches the remaining arguments to the matching urfave/cli
// subcommand. A bad config path or a urfave/cli action error both exit
// with status 1; a well-formed operation that simply found nothing (a
// missing local file, a missing remote file) is not an error at this
// layer — it prints "Not Found" and exits 0, matching the original
// implementation's behavior.
func main() {
	if len(os.Args) < 3 {
		log.Fatalf("usage: client <config> <upload|download|delete> ...")
	}
	configPath := os.Args[1]

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	c := surfclient.New(cfg)

	app := &cli.App{
		Name:  "client",
		Usage: "SurfStore client: upload, download, and delete files",
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "upload a local file",
				ArgsUsage: "<localpath>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return fmt.Errorf("upload requires exactly one <localpath> argument")
					}
					return runUpload(c, ctx.Args().First())
				},
			},
			{
				Name:      "download",
				Usage:     "download a remote file",
				ArgsUsage: "<remotename> <localdir>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 2 {
						return fmt.Errorf("download requires <remotename> and <localdir> arguments")
					}
					return runDownload(c, ctx.Args().Get(0), ctx.Args().Get(1))
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a remote file",
				ArgsUsage: "<remotename>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return fmt.Errorf("delete requires exactly one <remotename> argument")
					}
					return runDelete(c, ctx.Args().First())
				},
			},
		},
	}

	// spec.md's CLI surface puts <config> before the subcommand, which
	// urfave/cli has no notion of; having consumed it above, hand the
	// library the args it expects: [progname, subcommand, ...].
	args := append([]string{os.Args[0]}, os.Args[2:]...)
	if err := app.Run(args); err != nil {
		log.Printf("client: %v", err)
		os.Exit(1)
	}
}

// runUpload drives one upload and translates its outcome to the CLI's
// stdout contract: "OK" on success, "Not Found" if localPath doesn't
// exist, or a logged error (and non-nil return, so urfave/cli sets a
// non-zero exit code) for anything else.
func runUpload(c *surfclient.Client, localPath string) error {
	err := c.Upload(context.Background(), localPath)
	switch {
	case err == nil:
		fmt.Println("OK")
		return nil
	case errors.Is(err, surfclient.ErrLocalFileNotFound):
		fmt.Println("Not Found")
		return nil
	default:
		log.Printf("upload: %v", err)
		return err
	}
}

// runDownload mirrors runUpload for the download path: "Not Found" covers
// both a never-uploaded remotename and one that has since been deleted.
func runDownload(c *surfclient.Client, remotename, localDir string) error {
	err := c.Download(context.Background(), remotename, localDir)
	switch {
	case err == nil:
		fmt.Println("OK")
		return nil
	case errors.Is(err, surfclient.ErrRemoteFileNotFound):
		fmt.Println("Not Found")
		return nil
	default:
		log.Printf("download: %v", err)
		return err
	}
}

// runDelete has no "Not Found" case: deleting a never-seen filename
// succeeds and creates a tombstone (spec.md §4.2), so it always prints
// "OK" unless the RPC itself fails.
func runDelete(c *surfclient.Client, remotename string) error {
	err := c.Delete(context.Background(), remotename)
	if err != nil {
		log.Printf("delete: %v", err)
		return err
	}
	fmt.Println("OK")
	return nil
}
