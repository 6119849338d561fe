// Package filter compiles parsed rules into an immutable classification index
// and answers the single question the DNS pipeline asks: should this domain
// be blocked, and if so, why.
//
// # Components
//
//   - Compile: turns raw list text into an Index, tolerating partially broken sources
//   - Index.Classify: precedence-ordered lookup (whitelist, exceptions, domain
//     rules, aggressive matches, wildcard patterns)
//   - Store: atomic snapshot holder so queries never observe a half-built index
//
// An Index is never mutated after Compile returns. Configuration changes and
// list refreshes compile a fresh Index and publish it through the Store;
// in-flight queries keep using the snapshot they started with.
//
// # Example Usage
//
//	idx, err := filter.Compile(inputs, filter.Options{Whitelist: wl})
//	if err != nil {
//	    return err
//	}
//	store.Publish(idx)
//
//	d := store.Current().Classify(filter.Query{Domain: "ads.example.com"})
//	if d.Blocked {
//	    fmt.Printf("blocked as %s (%s)\n", d.Category, d.Reason)
//	}
package filter
