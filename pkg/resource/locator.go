package resource

import "fmt"

// DefaultSignature is used by NewLocator.
const DefaultSignature uint32 = 0xFFFFFFFF

// Locator is the sharing key of a resource. Two shared locators name the
// same resource when location and signature both match. The zero Locator
// is anonymous: it is never deduplicated.
type Locator struct {
	Location  string
	Signature uint32
}

// NewLocator returns a shared locator with the default signature.
func NewLocator(location string) Locator {
	return Locator{Location: location, Signature: DefaultSignature}
}

// NewLocatorSig returns a shared locator with an explicit signature, for
// resources that share a location but differ in how they were set up.
func NewLocatorSig(location string, sig uint32) Locator {
	return Locator{Location: location, Signature: sig}
}

// NonShared returns an anonymous locator.
func NonShared() Locator {
	return Locator{}
}

// IsShared reports whether the locator takes part in deduplication.
func (l Locator) IsShared() bool {
	return l.Location != ""
}

// String implements fmt.Stringer.
func (l Locator) String() string {
	if !l.IsShared() {
		return "<anonymous>"
	}
	if l.Signature == DefaultSignature {
		return l.Location
	}
	return fmt.Sprintf("%s#%d", l.Location, l.Signature)
}
