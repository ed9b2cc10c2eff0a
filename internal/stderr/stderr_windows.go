//go:build windows

package stderr

// Capture does nothing on Windows, whose audio backend keeps quiet.
type Capture struct{}

// Start returns an inactive capture.
func Start(func(line string)) (*Capture, error) {
	return &Capture{}, nil
}

// Stop does nothing.
func (c *Capture) Stop() error { return nil }
