package gfx

import "github.com/Faultbox/midgard-gfx/pkg/resource"

// Loader creates a resource from data fetched in the background. The
// container calls Start once, then Continue once per frame until it
// returns something other than Pending. Cancel is called instead when the
// container is discarded first.
type Loader interface {
	Locator() resource.Locator
	Start(c *ResourceContainer) resource.Id
	Continue() resource.State
	Cancel()
}
