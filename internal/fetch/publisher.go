package fetch

import (
	"net/url"
	"strings"
)

// Publisher identifies a news site with known page structure.
type Publisher string

const (
	PublisherAP       Publisher = "apnews"
	PublisherBBC      Publisher = "bbc"
	PublisherGuardian Publisher = "guardian"
	PublisherNYT      Publisher = "nytimes"
	PublisherReuters  Publisher = "reuters"
	PublisherUnknown  Publisher = "unknown"
)

var publisherHosts = []struct {
	suffix    string
	publisher Publisher
}{
	{"apnews.com", PublisherAP},
	{"bbc.co.uk", PublisherBBC},
	{"bbc.com", PublisherBBC},
	{"theguardian.com", PublisherGuardian},
	{"nytimes.com", PublisherNYT},
	{"reuters.com", PublisherReuters},
}

// DetectPublisher identifies the publisher from an article URL.
func DetectPublisher(urlStr string) Publisher {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PublisherUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range publisherHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.publisher
		}
	}
	return PublisherUnknown
}

// PublisherContentSelectors returns the story-body selectors for a publisher,
// falling back to ArticleSelectors.
func PublisherContentSelectors(p Publisher) []string {
	switch p {
	case PublisherAP:
		return []string{".RichTextStoryBody", ".Article", "main"}
	case PublisherBBC:
		return []string{"[data-component='text-block']", "article", "main"}
	case PublisherGuardian:
		return []string{"#maincontent", ".article-body-commercial-selector", "article"}
	case PublisherNYT:
		return []string{"section[name='articleBody']", "article", "main"}
	case PublisherReuters:
		return []string{"[data-testid='ArticleBody']", ".article-body__content", "article"}
	default:
		return ArticleSelectors()
	}
}

// PublisherNoiseSelectors returns elements to strip before extraction.
func PublisherNoiseSelectors(p Publisher) []string {
	common := []string{
		"form",
		".newsletter-signup",
		".related-articles",
		".related-stories",
		".social-share",
		".share-buttons",
		".paywall",
		".subscribe-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch p {
	case PublisherNYT:
		return append(common, "#gateway-content", ".css-mcm29f")
	case PublisherGuardian:
		return append(common, ".submeta", "#sign-in-gate")
	case PublisherReuters:
		return append(common, "[data-testid='Toolbar']", "[data-testid='promo-box']")
	default:
		return common
	}
}
