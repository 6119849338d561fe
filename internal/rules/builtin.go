package rules

// BuiltinTracking returns the tracker rules applied whenever tracking
// protection is enabled, independent of EasyPrivacy availability.
func BuiltinTracking() []Rule {
	domains := []string{
		// Google Analytics & Ads
		"google-analytics.com",
		"googletagmanager.com",
		"googlesyndication.com",
		"doubleclick.net",
		"googleadservices.com",
		// Facebook
		"connect.facebook.net",
		// Amazon
		"amazon-adsystem.com",
		// Other major trackers
		"scorecardresearch.com",
		"quantserve.com",
		"outbrain.com",
		"taboola.com",
		"adsystem.com",
		"ads.yahoo.com",
		"advertising.com",
		// Analytics
		"hotjar.com",
		"mixpanel.com",
		"segment.com",
		"amplitude.com",
	}
	globs := []string{
		"facebook.com/tr",
		"adsystem.amazon",
	}
	return builtinRules(domains, globs, SourceTracking)
}

// BuiltinSocial returns the social widget rules applied when social
// blocking is enabled.
func BuiltinSocial() []Rule {
	domains := []string{
		"addthis.com",
		"sharethis.com",
	}
	globs := []string{
		"facebook.com/plugins",
		"twitter.com/widgets",
		"linkedin.com/widgets",
		"instagram.com/embed",
		"youtube.com/embed",
		"tiktok.com/embed",
	}
	return builtinRules(domains, globs, SourceSocial)
}

func builtinRules(domains, globs []string, src Source) []Rule {
	out := make([]Rule, 0, len(domains)+len(globs))
	for _, d := range domains {
		out = append(out, Rule{Pattern: d, Kind: KindDomainBlock, Anchor: AnchorDomain, Source: src})
	}
	for _, g := range globs {
		out = append(out, Rule{Pattern: g, Kind: KindPathGlob, Anchor: AnchorNone, Source: src})
	}
	return out
}
