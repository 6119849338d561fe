package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dnsblockd/dnsblockd/internal/commands"
	"github.com/dnsblockd/dnsblockd/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", "/etc/dnsblockd/dnsblockd.conf", "Path to configuration file")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dnsblockd - DNS-level advertisement and tracker blocking\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  serve                   Run the resolver daemon (DNS proxy, API server, list refresher)\n")
		fmt.Fprintf(os.Stderr, "  download                Download filter lists to the cache directory\n")
		fmt.Fprintf(os.Stderr, "  check                   Classify domains against the compiled filter index\n")
		fmt.Fprintf(os.Stderr, "  init                    Write a preset configuration file\n")
		fmt.Fprintf(os.Stderr, "  version                 Print build identification\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateServeCommand(),
		commands.CreateDownloadCommand(),
		commands.CreateCheckCommand(),
		commands.CreateInitCommand(),
		commands.CreateVersionCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
