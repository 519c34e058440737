package terminal

// Device is the raw byte channel under the console backend
// Implementations put the input side in raw mode on Open and restore it on Close
type Device interface {
	Open() error
	Close() error

	// Write writes raw VT bytes to the output side
	Write(p []byte) (int, error)

	// Read blocks until input is available, the stop channel is closed, or an error occurs
	// A nil slice with nil error means timeout or stop; callers re-check stop and retry
	Read(stopCh <-chan struct{}) ([]byte, error)

	Size() (width, height int)
}

// Fallback geometry when the device cannot report its size
const (
	defaultWidth  = 80
	defaultHeight = 24
)
