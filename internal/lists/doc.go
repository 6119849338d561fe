// Package lists handles filter list management for dnsblockd.
//
// This package downloads, caches and assembles the filter lists selected by
// the configuration, and hands their text to the filter compiler. It supports
// MD5 hash-based change detection so unchanged lists are not rewritten, and
// cached fallback so a temporarily unreachable mirror degrades coverage
// instead of taking the resolver down.
//
// # List Sources
//
// Lists can be sourced from:
//
//   - Built-in lists: EasyList, EasyPrivacy, the URLhaus malware filter and
//     Fanboy's social list, toggled by the filtering configuration
//   - Remote URLs: extra [[source]] entries downloaded via HTTP/HTTPS
//   - Local files: read from filesystem paths
//   - Inline rules: custom_filters entries defined directly in configuration
//
// Hosts-format lists (such as the StevenBlack hosts file) are supported via
// format = "hosts" on a source.
//
// # Example Usage
//
// Downloading all lists from configuration:
//
//	if err := lists.DownloadAll(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Building a classification index:
//
//	idx, err := lists.BuildIndex(ctx, cfg, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store.Publish(idx)
//
// A refresh re-downloads URL sources and recompiles; readers keep the old
// index until the new one is published.
package lists
