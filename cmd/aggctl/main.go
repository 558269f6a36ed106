package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ntentasd/aggregator-api/internal/cli"
)

const usage = `Usage:
  aggctl [flags] upload <path> [--wait]
  aggctl [flags] result <file_id>

Flags:
  -base-url URL        aggregator API base URL (default API_BASE_URL env or http://localhost:8080)
  -poll-interval DUR   interval between status checks while waiting (default 500ms)
  -timeout DUR         maximum time to wait when polling (default 60s)
`

func main() {
	baseURL := flag.String("base-url", "", "aggregator API base URL")
	pollInterval := flag.Duration("poll-interval", 0, "interval between status checks while waiting")
	timeout := flag.Duration("timeout", 0, "maximum time to wait when polling")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := cli.LoadConfig(*baseURL, *pollInterval, *timeout)
	client := cli.NewClient(cfg)

	switch args[0] {
	case "upload":
		os.Exit(runUpload(client, cfg, args[1:]))
	case "result":
		os.Exit(runResult(client, args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

func runUpload(client *cli.Client, cfg cli.Config, args []string) int {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	wait := fs.Bool("wait", false, "wait for processing to finish and display the result")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "upload requires exactly one file path")
		return 2
	}
	path := fs.Arg(0)

	fmt.Printf("Uploading %s to %s ...\n", path, cfg.BaseURL)
	fileID, err := client.UploadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Upload accepted. file_id=%s\n", fileID)

	if !*wait {
		return 0
	}

	fmt.Printf("Waiting for processing (interval=%s, timeout=%s)...\n", cfg.PollInterval, cfg.PollTimeout)
	record, err := client.PollResult(fileID, cfg.PollInterval, cfg.PollTimeout)
	if err != nil {
		var timeoutErr *cli.PollTimeoutError
		if errors.As(err, &timeoutErr) {
			fmt.Fprintln(os.Stderr, timeoutErr)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Println()
	cli.RenderResult(os.Stdout, record)
	return 0
}

func runResult(client *cli.Client, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "result requires exactly one file_id")
		return 2
	}

	record, err := client.GetResult(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cli.RenderResult(os.Stdout, record)
	return 0
}
