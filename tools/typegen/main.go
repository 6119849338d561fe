// Command typegen generates TypeScript definitions for the management API
// response types, so dashboard code never drifts from the Go structs.
//
// Usage:
//
//	go run ./tools/typegen -out web/src/api/types.ts
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/coder/guts"
	"github.com/coder/guts/config"
)

const apiPackage = "github.com/dnsblockd/dnsblockd/internal/api"

// referencePackages are only emitted for types the API package actually
// references (filter.IndexStats, the stats counters).
var referencePackages = []string{
	"github.com/dnsblockd/dnsblockd/internal/filter",
	"github.com/dnsblockd/dnsblockd/internal/stats",
}

func main() {
	out := flag.String("out", "", "Output file (default: stdout)")
	flag.Parse()

	golang, err := guts.NewGolangParser()
	if err != nil {
		fatalf("create parser: %v", err)
	}

	if err := golang.IncludeGenerate(apiPackage); err != nil {
		fatalf("include %s: %v", apiPackage, err)
	}
	for _, ref := range referencePackages {
		if err := golang.IncludeReference(ref, ""); err != nil {
			fatalf("include reference %s: %v", ref, err)
		}
	}

	if err := golang.IncludeCustom(map[string]string{
		"time.Time": "string",
	}); err != nil {
		fatalf("include custom mappings: %v", err)
	}

	ts, err := golang.ToTypescript()
	if err != nil {
		fatalf("convert to typescript: %v", err)
	}

	ts.ApplyMutations(
		config.EnumLists,
		config.ExportTypes,
	)

	output, err := ts.Serialize()
	if err != nil {
		fatalf("serialize: %v", err)
	}

	if *out == "" {
		fmt.Println(output)
		return
	}
	if err := os.WriteFile(*out, []byte(output), 0644); err != nil {
		fatalf("write %s: %v", *out, err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "typegen: "+format+"\n", args...)
	os.Exit(1)
}
