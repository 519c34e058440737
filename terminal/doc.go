// @focus: #sys { term }
// Package terminal provides a thin cross-platform facade over terminal and console primitives.
//
// Features:
//   - Cursor positioning, text output, screen clearing
//   - Seven-color foreground palette on a black background, last color wins
//   - Non-blocking key reads with arrow/escape decoding
//   - Two backends behind one interface: a terminal-library backend (tcell)
//     and a console backend (console-API semantics rendered as VT sequences)
//   - Clean terminal restoration on exit/panic
//
// A process holds at most one Session. Open it first, Close it last:
//
//	b, err := terminal.New(terminal.Config{Kind: terminal.KindAuto})
//	if err != nil { ... }
//	s, err := terminal.Open(b)
//	if err != nil { ... }
//	defer s.Close()
//	s.SetColor(terminal.ColorYellow)
//	s.Print(2, 3, "A")
package terminal
