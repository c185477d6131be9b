//go:build !linux && !darwin && !windows

package autostart

// Platforms without a native scheduler integration fall back to XDG
// autostart entries.
func newRegistrar() (Registrar, error) {
	return newXDGRegistrar()
}
