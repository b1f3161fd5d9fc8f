package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

// View selects the table shape.
type View string

const (
	ViewHeaders View = "headers"
	ViewMerged  View = "merged"
	ViewTurns   View = "turns"
	ViewWide    View = "wide"
)

var ErrUnknownView = errors.New("unknown view")

// ParseView resolves a view name. An empty name yields def.
func ParseView(name string, def View) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(name))); v {
	case "":
		return def, nil
	case ViewHeaders, ViewMerged, ViewTurns, ViewWide:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// Write renders calls in the given view.
func Write(w io.Writer, view View, calls []Call) error {
	switch view {
	case ViewHeaders:
		return Headers(w, calls)
	case ViewMerged:
		return Merged(w, calls)
	case ViewTurns:
		return CallTurns(w, calls)
	case ViewWide:
		return Wide(w, calls)
	}
	return fmt.Errorf("%w: %q", ErrUnknownView, view)
}

// CallTurns writes the dialogue of several calls, each row prefixed with the
// name of the call it belongs to.
func CallTurns(w io.Writer, calls []Call) error {
	cols := append([]string{"source"}, callparse.TurnColumns...)
	return writeTable(w, cols, func(emit func([]string) error) error {
		for _, c := range calls {
			for _, t := range c.Result.Turns {
				if err := emit(append([]string{c.Name}, turnValues(t)...)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
