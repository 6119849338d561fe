package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/lists"
)

func CreateCheckCommand() *CheckCommand {
	gc := &CheckCommand{
		fs: flag.NewFlagSet("check", flag.ExitOnError),
	}

	gc.fs.StringVar(&gc.Path, "path", "", "URL path to include in classification (e.g. /banner/ad.js)")
	gc.fs.BoolVar(&gc.Refresh, "refresh", false, "Re-download filter lists instead of using the cache")

	return gc
}

// CheckCommand classifies domains from the command line against a freshly
// compiled index, without starting the resolver.
type CheckCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config

	Path    string
	Refresh bool

	domains []string
}

func (g *CheckCommand) Name() string {
	return g.fs.Name()
}

func (g *CheckCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	g.domains = g.fs.Args()
	if len(g.domains) == 0 {
		return fmt.Errorf("usage: check [-path <url-path>] [-refresh] <domain> [domain...]")
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *CheckCommand) Run() error {
	idx, err := lists.BuildIndex(context.Background(), g.cfg, g.Refresh)
	if err != nil {
		return fmt.Errorf("filter compilation failed: %w", err)
	}

	for _, domain := range g.domains {
		d := idx.Classify(filter.Query{Domain: domain, Path: g.Path})
		if d.Blocked {
			fmt.Printf("%s: BLOCKED [%s] %s\n", domain, d.Category, d.Reason)
		} else {
			fmt.Printf("%s: allowed [%s] %s\n", domain, d.Category, d.Reason)
		}
	}

	return nil
}
