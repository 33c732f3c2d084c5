package schedule

// Builtin test ids. Runners register under these ids; the classification
// table below is the single source of truth for their scheduling metadata.
const (
	TestSitemapGenerate   = "sitemap-generate"
	TestSitemapCrawl      = "sitemap-crawl"
	TestRobotsAudit       = "robots-audit"
	TestScreenshotDesktop = "screenshot-desktop"
	TestScreenshotMobile  = "screenshot-mobile"
	TestContentScrape     = "content-scrape"
	TestPerformanceTiming = "performance-timing"
	TestAccessibilityScan = "accessibility-scan"
	TestSEOAudit          = "seo-audit"
	TestLinkCheck         = "link-check"
)

// Audit phase numbers.
const (
	PhaseDiscovery = 1
	PhaseCapture   = 2
	PhaseAnalysis  = 3
)

var builtinClassifications = []TestClassification{
	{
		TestID:         TestSitemapGenerate,
		Phase:          PhaseDiscovery,
		Scope:          ScopeSession,
		ExecutionOrder: 10,
	},
	{
		TestID:         TestSitemapCrawl,
		Phase:          PhaseDiscovery,
		Scope:          ScopeSession,
		ExecutionOrder: 20,
		Dependencies:   []string{TestSitemapGenerate},
	},
	{
		TestID:         TestRobotsAudit,
		Phase:          PhaseDiscovery,
		Scope:          ScopeSession,
		ExecutionOrder: 30,
	},
	{
		TestID:            TestScreenshotDesktop,
		Phase:             PhaseCapture,
		Scope:             ScopePage,
		ExecutionOrder:    10,
		ConflictsWith:     []string{TestPerformanceTiming},
		ResourceIntensive: true,
	},
	{
		TestID:            TestScreenshotMobile,
		Phase:             PhaseCapture,
		Scope:             ScopePage,
		ExecutionOrder:    20,
		ConflictsWith:     []string{TestPerformanceTiming},
		ResourceIntensive: true,
	},
	{
		TestID:         TestContentScrape,
		Phase:          PhaseCapture,
		Scope:          ScopePage,
		ExecutionOrder: 30,
	},
	{
		// Viewport emulation skews navigation timings, so the timing probe
		// must never overlap a screenshot capture on the same page.
		TestID:            TestPerformanceTiming,
		Phase:             PhaseCapture,
		Scope:             ScopePage,
		ExecutionOrder:    40,
		ConflictsWith:     []string{TestScreenshotDesktop, TestScreenshotMobile},
		ResourceIntensive: true,
	},
	{
		TestID:            TestAccessibilityScan,
		Phase:             PhaseAnalysis,
		Scope:             ScopePage,
		ExecutionOrder:    10,
		ResourceIntensive: true,
	},
	{
		TestID:         TestSEOAudit,
		Phase:          PhaseAnalysis,
		Scope:          ScopePage,
		ExecutionOrder: 20,
		Dependencies:   []string{TestContentScrape},
	},
	{
		TestID:         TestLinkCheck,
		Phase:          PhaseAnalysis,
		Scope:          ScopeSession,
		ExecutionOrder: 30,
		Dependencies:   []string{TestContentScrape},
	},
}

var builtinPhases = []PhaseDefinition{
	{
		Phase:          PhaseDiscovery,
		Name:           "Site Discovery",
		Description:    "Sitemap generation and site-level checks that establish state for later phases",
		Scope:          ScopeSession,
		Parallelizable: false,
	},
	{
		Phase:          PhaseCapture,
		Name:           "Page Capture",
		Description:    "Per-page screenshots, content scraping and timing probes",
		Scope:          ScopePage,
		Dependencies:   []int{PhaseDiscovery},
		Parallelizable: true,
	},
	{
		Phase:          PhaseAnalysis,
		Name:           "Analysis",
		Description:    "Accessibility, SEO and link health analysis over captured data",
		Scope:          ScopePage,
		Dependencies:   []int{PhaseCapture},
		Parallelizable: true,
	},
}

var (
	defaultRegistry      = MustNewRegistry(builtinClassifications)
	defaultPhaseRegistry = MustNewPhaseRegistry(builtinPhases)
)

// DefaultRegistry returns the builtin classification table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// DefaultPhaseRegistry returns the builtin phase table.
func DefaultPhaseRegistry() *PhaseRegistry {
	return defaultPhaseRegistry
}
