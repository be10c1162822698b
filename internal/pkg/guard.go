package pkg

import "github.com/gin-gonic/gin"

// Actions checked by a Guard.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// Guard supplies the per-route middleware of a resource and hears about its
// mutations.
type Guard interface {
	// Read returns the handlers placed before the GET handlers of resource.
	Read(resource string) []gin.HandlerFunc
	// Write returns the handlers placed before the mutating handlers of resource.
	Write(resource string) []gin.HandlerFunc
	// Changed is called after every successful mutation of resource.
	Changed(resource string)
}

// Open is a Guard without checks or caching.
type Open struct{}

func (Open) Read(string) []gin.HandlerFunc  { return nil }
func (Open) Write(string) []gin.HandlerFunc { return nil }
func (Open) Changed(string)                 {}

// Chain appends handlers to guards.
func Chain(guards []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+len(handlers))
	out = append(out, guards...)
	return append(out, handlers...)
}
