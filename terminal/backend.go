package terminal

// Backend abstracts platform-specific terminal operations.
// Coordinates reaching a Backend are already validated as non-negative by Session.
type Backend interface {
	// Lifecycle
	Init() error
	Fini() error

	// Name identifies the backend in logs and config
	Name() string

	// Output
	// Print writes s at the current output position, advancing it.
	Print(s string) error
	// MoveCursor sets the output position, false if the backend cannot represent it.
	MoveCursor(x, y int) bool
	// Cursor returns the current output position.
	Cursor() (x, y int)
	SetColor(c Color) error
	Refresh() error
	Clear() error

	// Capabilities
	Size() (width, height int)

	// Input
	// ReadRawKey returns the next raw platform code or RawNone, never blocks.
	ReadRawKey() int
	// DecodeKey normalizes raw, pulling follow-up codes from next when the platform uses prefixes.
	DecodeKey(raw int, next func() int) Key
}
