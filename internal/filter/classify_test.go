package filter

import (
	"testing"

	"github.com/dnsblockd/dnsblockd/internal/rules"
)

func mustCompile(t *testing.T, inputs []SourceText, opts Options) *Index {
	t.Helper()
	idx, err := Compile(inputs, opts)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return idx
}

func TestClassify_DomainBlock(t *testing.T) {
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||doubleclick.net^"},
	}, Options{})

	tests := []struct {
		domain   string
		blocked  bool
		category Category
	}{
		{"googleads.g.doubleclick.net", true, CategoryAdvertisement},
		{"doubleclick.net", true, CategoryAdvertisement},
		{"DOUBLECLICK.NET.", true, CategoryAdvertisement},
		{"github.com", false, CategoryClean},
		{"notdoubleclick.net", false, CategoryClean},
	}

	for _, tt := range tests {
		d := idx.Classify(Query{Domain: tt.domain})
		if d.Blocked != tt.blocked || d.Category != tt.category {
			t.Errorf("classify(%q) = blocked=%v category=%v, want blocked=%v category=%v",
				tt.domain, d.Blocked, d.Category, tt.blocked, tt.category)
		}
	}
}

func TestClassify_WhitelistWins(t *testing.T) {
	// Whitelist beats a block rule covering the same name.
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "*.trusted-ads.com"},
	}, Options{Whitelist: []string{"trusted-ads.com"}})

	d := idx.Classify(Query{Domain: "cdn.trusted-ads.com"})
	if d.Blocked {
		t.Errorf("whitelisted domain was blocked: %+v", d)
	}
	if d.Category != CategoryWhitelisted {
		t.Errorf("expected CategoryWhitelisted, got %v", d.Category)
	}

	// The whitelist is a suffix set: entries cover subdomains.
	d = idx.Classify(Query{Domain: "a.b.trusted-ads.com"})
	if d.Blocked || d.Category != CategoryWhitelisted {
		t.Errorf("expected deep subdomain to be whitelisted, got %+v", d)
	}
}

func TestClassify_ExceptionWinsOverGlob(t *testing.T) {
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "@@||analytics.mysite.com^\n*/analytics.js"},
	}, Options{})

	d := idx.Classify(Query{Domain: "analytics.mysite.com", Path: "/analytics.js"})
	if d.Blocked {
		t.Errorf("exception did not win over glob block: %+v", d)
	}

	// The glob still blocks on domains the exception does not cover.
	d = idx.Classify(Query{Domain: "other.site.com", Path: "/analytics.js"})
	if !d.Blocked || d.Category != CategoryAdvertisement {
		t.Errorf("expected glob block for other.site.com/analytics.js, got %+v", d)
	}
}

func TestClassify_ExceptionWinsOverMoreSpecificBlock(t *testing.T) {
	// An exception at any suffix level beats a block rule, even a more
	// specific one.
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||cdn.media.example.com^\n@@||example.com^"},
	}, Options{})

	d := idx.Classify(Query{Domain: "cdn.media.example.com"})
	if d.Blocked {
		t.Errorf("exception at parent suffix should allow, got %+v", d)
	}
	if d.Rule == nil || d.Rule.Kind != rules.KindException {
		t.Errorf("expected decision to reference the exception rule, got %+v", d.Rule)
	}
}

func TestClassify_MostSpecificBlockWins(t *testing.T) {
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||example.com^"},
		{Source: rules.SourceMalware, Name: "malware", Text: "||evil.example.com^"},
	}, Options{})

	d := idx.Classify(Query{Domain: "sub.evil.example.com"})
	if !d.Blocked || d.Category != CategoryMalware {
		t.Errorf("expected most specific rule (malware) to win, got %+v", d)
	}

	d = idx.Classify(Query{Domain: "www.example.com"})
	if !d.Blocked || d.Category != CategoryAdvertisement {
		t.Errorf("expected easylist rule at parent, got %+v", d)
	}
}

func TestClassify_CategoryMapping(t *testing.T) {
	tests := []struct {
		source   rules.Source
		category Category
	}{
		{rules.SourceEasyList, CategoryAdvertisement},
		{rules.SourceEasyPrivacy, CategoryTracking},
		{rules.SourceTracking, CategoryTracking},
		{rules.SourceMalware, CategoryMalware},
		{rules.SourceSocial, CategorySocial},
		{rules.SourceCustom, CategoryCustom},
	}

	for _, tt := range tests {
		idx := mustCompile(t, []SourceText{
			{Source: tt.source, Name: tt.source.String(), Text: "||blocked.test^"},
		}, Options{})
		d := idx.Classify(Query{Domain: "blocked.test"})
		if !d.Blocked || d.Category != tt.category {
			t.Errorf("source %v: got blocked=%v category=%v, want category %v",
				tt.source, d.Blocked, d.Category, tt.category)
		}
	}
}

func TestClassify_SourcePriorityForSharedDomain(t *testing.T) {
	// When several lists block the same name, the security source decides
	// the category.
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||shared.test^"},
		{Source: rules.SourceMalware, Name: "malware", Text: "||shared.test^"},
	}, Options{})

	d := idx.Classify(Query{Domain: "shared.test"})
	if d.Category != CategoryMalware {
		t.Errorf("expected malware to take priority, got %v", d.Category)
	}
}

func TestClassify_AggressiveExactMatch(t *testing.T) {
	inputs := []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||ads.site.com/banner/*"},
	}

	// Off: the rule is path-restricted, a bare domain query stays clean.
	idx := mustCompile(t, inputs, Options{})
	if d := idx.Classify(Query{Domain: "ads.site.com"}); d.Blocked {
		t.Errorf("path glob should not block bare domain without aggressive mode: %+v", d)
	}

	// On: the domain part of the pattern blocks exactly, as Advertisement.
	idx = mustCompile(t, inputs, Options{Aggressive: true})
	d := idx.Classify(Query{Domain: "ads.site.com"})
	if !d.Blocked || d.Category != CategoryAdvertisement {
		t.Errorf("expected aggressive exact match to block, got %+v", d)
	}

	// Exact means exact: subdomains are not widened.
	if d := idx.Classify(Query{Domain: "sub.ads.site.com"}); d.Blocked {
		t.Errorf("aggressive match must not cover subdomains: %+v", d)
	}
}

func TestClassify_AggressiveNeverBeatsWhitelistOrException(t *testing.T) {
	inputs := []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||ads.site.com/banner/*\n@@||promo.site.com^\n||promo.site.com/banner/*"},
	}
	idx := mustCompile(t, inputs, Options{
		Aggressive: true,
		Whitelist:  []string{"ads.site.com"},
	})

	if d := idx.Classify(Query{Domain: "ads.site.com"}); d.Blocked || d.Category != CategoryWhitelisted {
		t.Errorf("whitelist must beat aggressive matching, got %+v", d)
	}
	if d := idx.Classify(Query{Domain: "promo.site.com"}); d.Blocked {
		t.Errorf("exception must beat aggressive matching, got %+v", d)
	}
}

func TestClassify_GlobAnchors(t *testing.T) {
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "|http://ads.example.com/\n||tracker.io^ad"},
	}, Options{})

	// Start anchor pins the beginning of the target.
	if d := idx.Classify(Query{Domain: "ads.example.com", Path: "/img.gif"}); !d.Blocked {
		t.Errorf("start-anchored glob should match, got %+v", d)
	}
	if d := idx.Classify(Query{Domain: "sub.ads.example.com", Path: "/img.gif"}); d.Blocked {
		t.Errorf("start-anchored glob must not match mid-target, got %+v", d)
	}

	// '^' matches a separator.
	if d := idx.Classify(Query{Domain: "tracker.io", Path: "/adserve"}); !d.Blocked {
		t.Errorf("separator glob should match tracker.io/adserve, got %+v", d)
	}
	if d := idx.Classify(Query{Domain: "tracker.iosad.com"}); d.Blocked {
		t.Errorf("separator must not match a hostname character, got %+v", d)
	}
}

func TestClassify_GlobsApplyWithoutPath(t *testing.T) {
	// Substring globs fire on bare domain queries, not only on URLs.
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "-banner-ad-"},
	}, Options{})

	if d := idx.Classify(Query{Domain: "cdn-banner-ad-7.example.net"}); !d.Blocked {
		t.Errorf("expected substring glob to match inside domain, got %+v", d)
	}
	if d := idx.Classify(Query{Domain: "cdn.example.net"}); d.Blocked {
		t.Errorf("unexpected block without substring, got %+v", d)
	}
}

func TestClassify_ReferrerIsInert(t *testing.T) {
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||doubleclick.net^"},
	}, Options{})

	plain := idx.Classify(Query{Domain: "stats.example.org"})
	withRef := idx.Classify(Query{Domain: "stats.example.org", Referrer: "https://news.site/"})
	if plain.Blocked != withRef.Blocked || plain.Category != withRef.Category {
		t.Errorf("referrer changed the decision: %+v vs %+v", plain, withRef)
	}
}

func TestClassify_NilIndexFailsOpen(t *testing.T) {
	var idx *Index
	d := idx.Classify(Query{Domain: "anything.example"})
	if d.Blocked || d.Category != CategoryClean {
		t.Errorf("nil index must fail open, got %+v", d)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	idx := mustCompile(t, []SourceText{
		{Source: rules.SourceEasyList, Name: "easylist", Text: "||doubleclick.net^\n*/analytics.js\n@@||good.example^"},
	}, Options{Whitelist: []string{"trusted.example"}})

	q := Query{Domain: "metrics.doubleclick.net", Path: "/collect"}
	first := idx.Classify(q)
	for i := 0; i < 100; i++ {
		if got := idx.Classify(q); got != first {
			t.Fatalf("decision changed between calls: %+v vs %+v", first, got)
		}
	}
}
