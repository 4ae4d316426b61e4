// Package blob models image resources and keeps the ephemeral local copies
// of user-selected files.
package blob

import (
	"net/url"
	"strings"
)

// Kind identifies where an image resource lives.
type Kind string

const (
	// KindLocal is the server-held copy of the originally selected file.
	KindLocal Kind = "local"
	// KindRemote is a processed image served by the processing service.
	KindRemote Kind = "remote"
)

// LocalPrefix is the URL path under which local resources are served.
const LocalPrefix = "/local/"

// Resource references a displayable image.
type Resource struct {
	Kind    Kind   `json:"kind"`
	Locator string `json:"locator"`
}

// Remote builds a remote resource for a processed image reference served
// under <base>/uploads/.
func Remote(baseURL, reference string) Resource {
	return Resource{
		Kind:    KindRemote,
		Locator: strings.TrimRight(baseURL, "/") + "/uploads/" + url.PathEscape(reference),
	}
}

// Local builds the resource for a live local handle.
func Local(handle string) Resource {
	return Resource{Kind: KindLocal, Locator: LocalPrefix + handle}
}

// Parse classifies a locator received through navigation state.
// Empty locators yield ok=false.
func Parse(locator string) (Resource, bool) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return Resource{}, false
	}
	if strings.HasPrefix(locator, LocalPrefix) {
		return Resource{Kind: KindLocal, Locator: locator}, true
	}
	return Resource{Kind: KindRemote, Locator: locator}, true
}

// Handle returns the store handle of a local resource.
func (r Resource) Handle() (string, bool) {
	if r.Kind != KindLocal {
		return "", false
	}
	h := strings.TrimPrefix(r.Locator, LocalPrefix)
	return h, h != ""
}
