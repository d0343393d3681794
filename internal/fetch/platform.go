package fetch

import (
	"net/url"
	"slices"
	"strings"
)

// Platform is an applicant tracking system that hosts careers pages.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	// PlatformUnknown is a company-hosted or unrecognized page.
	PlatformUnknown Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"ashbyhq.com", PlatformAshby},
}

// Listing containers come before single-posting containers so a page with
// several openings is kept whole.
var (
	careersContent = []string{
		".careers", "#careers", ".job-listings", ".jobs-list", ".openings", "#jobs",
		".job-description", "#job-description", ".posting-content", ".job-details",
		"[data-testid='job-description']",
		"main", "article", ".content", "#content",
	}

	platformContent = map[Platform][]string{
		PlatformGreenhouse: {"#main", ".job-posts", ".job__description.body", ".job__description", ".job-post-container"},
		PlatformLever:      {".postings-wrapper", ".posting-page", ".section-wrapper.page-full-width", ".posting-description"},
		PlatformWorkday:    {"[data-automation-id='jobResults']", "[data-automation-id='jobDescription']", ".job-description"},
		PlatformAshby:      {".ashby-job-board", ".ashby-job-posting-left-pane", "main"},
	}

	// application forms, EEO text, share buttons and consent banners
	commonNoise = []string{
		"form", "#application-form", ".application-form", ".apply-button-container",
		"[data-testid='application-form']",
		".voluntary-disclosure", ".eeo-statement", ".eeo-section", ".legal-disclosure",
		".social-share", ".share-buttons",
		".cookie-consent", ".gdpr-notice",
	}

	platformNoise = map[Platform][]string{
		PlatformGreenhouse: {".application--wrapper", ".voluntary-self-id", "#usa_self_id_section"},
		PlatformLever:      {".apply-section", ".posting-apply"},
		PlatformWorkday:    {"[data-automation-id='applyButton']", ".application-section"},
		PlatformAshby:      {".ashby-application-form-container"},
	}
)

// DetectPlatform identifies the hosting platform from a URL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// SelectorsFor returns the selectors for a platform. Unknown platforms get
// generic careers-page selectors.
func SelectorsFor(p Platform) Selectors {
	content, ok := platformContent[p]
	if !ok {
		content = careersContent
	}
	return Selectors{
		Content: content,
		Noise:   append(slices.Clone(commonNoise), platformNoise[p]...),
	}
}
