package di

import "sync/atomic"

// defaultContainer is the process-wide container for code that does not
// thread one explicitly, such as package-level wiring in main.
var defaultContainer atomic.Pointer[Container]

func init() {
	defaultContainer.Store(New())
}

// Default returns the process-wide container.
func Default() *Container {
	return defaultContainer.Load()
}

// SetDefault replaces the process-wide container and returns the previous
// one. The swap itself is atomic; use of either container still follows the
// single-flow model.
func SetDefault(c *Container) *Container {
	if c == nil {
		panic("di: nil default container")
	}
	return defaultContainer.Swap(c)
}
