package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/dnsblockd/dnsblockd/internal/config"
)

func CreateInitCommand() *InitCommand {
	gc := &InitCommand{
		fs: flag.NewFlagSet("init", flag.ExitOnError),
	}

	gc.fs.StringVar(&gc.Preset, "preset", config.PresetDefault,
		"Configuration preset: default, minimal, privacy_focused or performance_focused")
	gc.fs.BoolVar(&gc.Force, "force", false, "Overwrite an existing configuration file")

	return gc
}

// InitCommand writes a preset configuration file to the -config path.
type InitCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext

	Preset string
	Force  bool
}

func (g *InitCommand) Name() string {
	return g.fs.Name()
}

func (g *InitCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx
	return g.fs.Parse(args)
}

func (g *InitCommand) Run() error {
	if !g.Force {
		if _, err := os.Stat(g.ctx.ConfigPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -force to overwrite)", g.ctx.ConfigPath)
		}
	}

	cfg, err := config.PresetWithPath(g.Preset, g.ctx.ConfigPath)
	if err != nil {
		return err
	}

	if err := cfg.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write configuration: %v", err)
	}

	fmt.Printf("Wrote %q configuration to %s\n", g.Preset, g.ctx.ConfigPath)
	return nil
}
