// Package fetch - platform.go provides hosting-platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known portfolio hosting platform.
type Platform string

const (
	// PlatformGitHubPages is a *.github.io site
	PlatformGitHubPages Platform = "github-pages"
	// PlatformNotion is a published Notion page
	PlatformNotion Platform = "notion"
	// PlatformAboutMe is an about.me profile page
	PlatformAboutMe Platform = "aboutme"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the hosting platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.HasSuffix(host, "github.io") {
		return PlatformGitHubPages
	}

	if strings.Contains(host, "notion.site") ||
		strings.Contains(host, "notion.so") {
		return PlatformNotion
	}

	if host == "about.me" || strings.HasSuffix(host, ".about.me") {
		return PlatformAboutMe
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGitHubPages:
		return []string{
			".markdown-body", // Jekyll/GitHub Pages default themes
			".page-content",
			".post-content",
			"main",
			"article",
			".content",
		}
	case PlatformNotion:
		return []string{
			".notion-page-content",
			".notion-app-inner",
			"main",
		}
	case PlatformAboutMe:
		return []string{
			".profile",
			".bio",
			"main",
			".content",
		}
	default:
		return PortfolioSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	// Common noise on personal sites
	common := []string{
		// Contact and signup forms
		"form",
		".contact-form",
		"#contact-form",
		".newsletter",
		".subscribe",

		// Social and share widgets
		".social-share",
		".share-buttons",
		".social-links",
		".social-icons",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",

		// Generic navigation already handled in fetch.go
	}

	switch platform {
	case PlatformGitHubPages:
		return append(common,
			".site-header",
			".site-footer",
			".pagination",
		)
	case PlatformNotion:
		return append(common,
			".notion-topbar",
			".notion-overlay-container",
		)
	default:
		return common
	}
}
