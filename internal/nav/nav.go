// Package nav maps page paths to viewer modes and carries image locators
// between pages in the destination URL.
package nav

import (
	"errors"
	"net/url"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/view"
)

// Param is the query parameter holding a locator. Compare pages repeat it.
const Param = "src"

const (
	PathHome    = "/"
	PathView    = "/view"
	PathCompare = "/compare"
)

var (
	ErrUnknownRoute = errors.New("nav: unknown route")
	ErrDisabled     = errors.New("nav: route disabled")
)

// Route describes a page. Label is the message ID of its title.
type Route struct {
	Path     string
	Mode     view.Mode
	Label    string
	Template string
}

// Routes lists every page.
var Routes = []Route{
	{Path: PathHome, Mode: view.ModeSingle, Label: "nav_home", Template: "home.html"},
	{Path: PathView, Mode: view.ModeSingle, Label: "nav_view", Template: "view.html"},
	{Path: PathCompare, Mode: view.ModeCompare, Label: "nav_compare", Template: "compare.html"},
}

// Destination is a resolved navigation.
type Destination struct {
	Route     Route
	Resources []blob.Resource
}

// Lookup returns the route registered at path.
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve reads the route and handed-off locators from u. Missing
// locators are not an error: the viewer renders empty slots.
func Resolve(u *url.URL, flags view.Flags) (Destination, error) {
	route, ok := Lookup(u.Path)
	if !ok {
		return Destination{}, ErrUnknownRoute
	}
	if route.Mode == view.ModeCompare && !flags.EnableCompare {
		return Destination{}, ErrDisabled
	}

	n, _ := route.Mode.SlotCount()
	resources := make([]blob.Resource, 0, n)
	for _, loc := range u.Query()[Param] {
		if len(resources) == n {
			break
		}
		r, ok := blob.Parse(loc)
		if !ok {
			r = blob.Resource{}
		}
		resources = append(resources, r)
	}
	return Destination{Route: route, Resources: resources}, nil
}

// Configuration builds the view configuration for d.
func (d Destination) Configuration() (*view.Configuration, error) {
	return view.NewConfiguration(d.Route.Mode, d.Resources...)
}

// Link builds a URL to path handing off resources. Unresolved resources
// keep their position as empty parameters.
func Link(path string, resources ...*blob.Resource) string {
	q := url.Values{}
	handed := false
	for _, r := range resources {
		if r == nil {
			q.Add(Param, "")
			continue
		}
		q.Add(Param, r.Locator)
		handed = true
	}
	if !handed {
		return path
	}
	return path + "?" + q.Encode()
}
