package session

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"wcolor/src/clipboard"
)

// StdoutTarget prints the formatted color as exactly one line.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(res Result) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, res.Text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(res Result) error {
	if err := clipboard.Write(res.Text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

// SwatchTarget shows a block of the picked color next to its value. It is
// meant for stderr so stdout keeps a single line.
type SwatchTarget struct {
	Writer io.Writer
}

func (t SwatchTarget) writer() io.Writer {
	if t.Writer == nil {
		return os.Stderr
	}
	return t.Writer
}

func (t SwatchTarget) OnSuccess(res Result) error {
	w := t.writer()
	r, g, b := res.Color.Channels()
	swatch := lipgloss.NewRenderer(w).NewStyle().
		Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))).
		Render("    ")
	_, err := fmt.Fprintf(w, "%s %s at (%d,%d)\n", swatch, res.Text, res.Point.X, res.Point.Y)
	return err
}

func (t SwatchTarget) OnFailure(err error) error {
	_, werr := fmt.Fprintf(t.writer(), "no color picked: %v\n", err)
	return werr
}
