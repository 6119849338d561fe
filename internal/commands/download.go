package commands

import (
	"context"
	"flag"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/lists"
)

func CreateDownloadCommand() *DownloadCommand {
	gc := &DownloadCommand{
		fs: flag.NewFlagSet("download", flag.ExitOnError),
	}
	return gc
}

// DownloadCommand fetches every enabled filter list into the cache
// directory without starting the resolver.
type DownloadCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
}

func (g *DownloadCommand) Name() string {
	return g.fs.Name()
}

func (g *DownloadCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *DownloadCommand) Run() error {
	return lists.DownloadAll(context.Background(), g.cfg)
}
