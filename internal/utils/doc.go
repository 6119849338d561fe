// Package utils provides general-purpose utility functions for dnsblockd.
//
// This package contains helper functions used across the application,
// including domain name normalization and path handling.
//
// # Components
//
//   - Domain utilities: Normalization (lowercase, IDNA punycode) and suffix walking
//   - Path utilities: Handle absolute and relative paths
//
// # Example Usage
//
// Domain normalization:
//
//	name := utils.NormalizeDomain("Пример.РФ.")
//	// Returns: xn--e1afmkfd.xn--p1ai
//
// Walking domain suffixes from most to least specific:
//
//	utils.WalkSuffixes("a.b.example.com", func(suffix string) bool {
//	    fmt.Println(suffix) // a.b.example.com, b.example.com, example.com
//	    return true
//	})
//
// Path resolution:
//
//	absPath := utils.GetAbsolutePath("filters/custom.txt", "/etc/dnsblockd")
//	// Returns: /etc/dnsblockd/filters/custom.txt
package utils
