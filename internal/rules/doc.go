// Package rules parses filter-list syntax into structured blocking rules.
//
// This package understands the common subset of the EasyList rule language
// that is meaningful for DNS-level blocking, plus the /etc/hosts format used
// by host-file blocklists.
//
// # Supported Syntax
//
//   - ||domain^ anchors: domain block rules that match a domain and its subdomains
//   - @@ prefixes: exception rules that unblock what another rule would block
//   - Bare domains: shorthand for domain block rules
//   - Wildcard patterns with * and the ^ separator class
//   - | start anchors for URL-prefix patterns
//   - $-options: recognized and either stripped or the whole rule is dropped
//   - Cosmetic rules (##, #@#, #?#, #$#): recognized and ignored
//   - hosts lines ("0.0.0.0 ads.example.com")
//
// Lines that cannot be understood are reported to the caller instead of
// failing the whole list; filter lists in the wild always contain a few
// rules outside any parser's subset.
//
// # Example Usage
//
//	rule, ok := rules.ParseLine("||ads.example.com^", rules.SourceEasyList)
//	if ok {
//	    fmt.Println(rule.Describe()) // ads.example.com (easylist)
//	}
//
// The package also carries the built-in tracker and social domain tables
// which are compiled when no external list covers those categories.
package rules
