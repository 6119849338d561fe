// Package commands implements the CLI command handlers for dnsblockd.
//
// Each subcommand implements the Runner interface and delegates the actual
// work to the service packages:
//   - Init(): parse arguments and load/validate configuration
//   - Run(): execute the command
//   - Name(): return the command name for dispatch
//
// # Available Commands
//
//   - serve: run the resolver daemon (DNS proxy, refresher, API, redirect)
//   - download: download filter lists to the cache directory
//   - check: classify domains from the command line
//   - init: write a preset configuration file
//   - version: print build identification
//
// Commands are thin wrappers; business logic lives in the lists, filter,
// dnsproxy and api packages.
package commands
