package commands

import (
	"flag"
	"fmt"
)

func CreateVersionCommand() *VersionCommand {
	return &VersionCommand{
		fs: flag.NewFlagSet("version", flag.ExitOnError),
	}
}

// VersionCommand prints the build identification.
type VersionCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
}

func (g *VersionCommand) Name() string {
	return g.fs.Name()
}

func (g *VersionCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx
	return g.fs.Parse(args)
}

func (g *VersionCommand) Run() error {
	fmt.Printf("dnsblockd %s (commit: %s, built: %s)\n", g.ctx.Version, g.ctx.Commit, g.ctx.Date)
	return nil
}
