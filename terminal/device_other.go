//go:build !unix && !windows

package terminal

import (
	"fmt"
	"runtime"
)

// unsupportedDevice fails Open on platforms without a console device
type unsupportedDevice struct{}

func newDefaultDevice() Device {
	return unsupportedDevice{}
}

func (unsupportedDevice) Open() error {
	return fmt.Errorf("%w: no console device on %s", ErrNotTerminal, runtime.GOOS)
}

func (unsupportedDevice) Close() error                          { return nil }
func (unsupportedDevice) Write(p []byte) (int, error)           { return len(p), nil }
func (unsupportedDevice) Read(<-chan struct{}) ([]byte, error) { return nil, nil }
func (unsupportedDevice) Size() (int, int)                      { return defaultWidth, defaultHeight }

func resetTerminalMode() {}
