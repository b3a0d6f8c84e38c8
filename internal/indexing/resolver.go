package indexing

import (
	"net/url"
	"strings"
)

// DefaultBlogHandle is used for article URLs when the payload carries
// no nested blog handle.
const DefaultBlogHandle = "news"

// Resolver maps topics and payloads to canonical storefront URLs under
// a fixed base, and assembles the URL batches handed to submitters.
type Resolver struct {
	base string
}

// NewResolver creates a Resolver for the given site base URL. A
// trailing slash on the base is ignored.
func NewResolver(baseURL string) Resolver {
	return Resolver{base: strings.TrimRight(baseURL, "/")}
}

// Resolve derives the canonical public URL affected by an event.
// Rules, in order, first match wins:
//  1. deletion topics resolve to nothing, unconditionally — deletion
//     payloads often lack the identifying handle, so they are never
//     propagated (kept for product-level review);
//  2. products with a handle → {base}/products/{handle};
//  3. collections with a handle → {base}/collections/{handle};
//  4. articles with a handle → {base}/blogs/{blog}/{handle}, the blog
//     handle defaulting to "news";
//  5. anything else resolves to nothing.
//
// The function is pure and total; ok=false is an expected outcome.
func (r Resolver) Resolve(topic Topic, payload Payload) (string, bool) {
	if topic.IsDeletion() {
		return "", false
	}
	switch topic.Kind() {
	case "products":
		if payload.Handle == "" {
			return "", false
		}
		return r.base + "/products/" + payload.Handle, true
	case "collections":
		if payload.Handle == "" {
			return "", false
		}
		return r.base + "/collections/" + payload.Handle, true
	case "articles":
		if payload.Handle == "" {
			return "", false
		}
		blog := DefaultBlogHandle
		if payload.Blog != nil && payload.Blog.Handle != "" {
			blog = payload.Blog.Handle
		}
		return r.base + "/blogs/" + blog + "/" + payload.Handle, true
	}
	return "", false
}

// Root returns the site root URL.
func (r Resolver) Root() string {
	return r.base + "/"
}

// AllItems returns the all-products listing URL.
func (r Resolver) AllItems() string {
	return r.base + "/collections/all"
}

// Sitemap returns the sitemap URL.
func (r Resolver) Sitemap() string {
	return r.base + "/sitemap.xml"
}

// Host returns the bare hostname of the base URL, as required by the
// IndexNow request body.
func (r Resolver) Host() string {
	u, err := url.Parse(r.base)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return u.Hostname()
}

// EventBatch builds the submission batch for one event: the resolved
// URL, if any, prepended to the two anchor URLs (site root and the
// all-items listing). The result is deduplicated and its order is
// deterministic.
func (r Resolver) EventBatch(topic Topic, payload Payload) []string {
	urls := make([]string, 0, 3)
	if resolved, ok := r.Resolve(topic, payload); ok {
		urls = append(urls, resolved)
	}
	urls = append(urls, r.Root(), r.AllItems())
	return dedupe(urls)
}

// HeartbeatBatch builds the static batch submitted on each scheduled
// heartbeat firing: site root and sitemap.
func (r Resolver) HeartbeatBatch() []string {
	return []string{r.Root(), r.Sitemap()}
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
