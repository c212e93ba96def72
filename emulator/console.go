package emulator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	orinctl "github.com/NathanHowell/orinctl"
	"github.com/NathanHowell/orinctl/repl"
)

const prompt = "> "

// Console runs the interactive operator REPL over stdin/stdout. On a TTY
// it switches the terminal into raw mode so Tab completion and inline
// editing work; otherwise it falls back to a plain line loop.
type Console struct {
	session *Session
	engine  *repl.CompletionEngine
}

// NewConsole wraps a session in an interactive console.
func NewConsole(session *Session) *Console {
	return &Console{session: session, engine: repl.NewCompletionEngine()}
}

// Run reads operator input until EOF or an exit command.
func (c *Console) Run(in *os.File, out io.Writer) error {
	fmt.Fprintln(out, "Orin Controller Emulator ready. Type `help` for commands or `exit` to quit.")

	restore, err := enterRawMode(in)
	if err != nil {
		return c.runCooked(in, out)
	}
	defer restore()
	return c.runRaw(in, out)
}

// runCooked is the non-TTY loop: whole lines, no completion.
func (c *Console) runCooked(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if shouldTerminate(line) {
			fmt.Fprintln(out, "Session closed.")
			return nil
		}
		if err := c.respond(out, line); err != nil {
			return err
		}
	}
}

// runRaw is the TTY loop: byte-wise input with echo, backspace, and Tab
// completion.
func (c *Console) runRaw(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	var line []byte

	fmt.Fprint(out, prompt)
	for {
		b, err := reader.ReadByte()
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case b == '\r' || b == '\n':
			fmt.Fprintln(out)
			text := string(line)
			line = line[:0]
			if shouldTerminate(text) {
				fmt.Fprintln(out, "Session closed.")
				return nil
			}
			if err := c.respond(out, text); err != nil {
				return err
			}
			fmt.Fprint(out, prompt)

		case b == 0x03: // Ctrl-C: abandon the line
			fmt.Fprintln(out, "^C")
			line = line[:0]
			fmt.Fprint(out, prompt)

		case b == 0x04: // Ctrl-D: exit on an empty line
			if len(line) == 0 {
				fmt.Fprintln(out)
				return nil
			}

		case b == 0x7f || b == 0x08: // backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(out, "\b \b")
			}

		case b == '\t':
			line = c.completeLine(out, line)

		case b >= 0x20 && b < 0x7f:
			if len(line) < orinctl.MaxLineLen {
				line = append(line, b)
				fmt.Fprintf(out, "%c", b)
			}
		}
	}
}

// completeLine applies Tab completion to the current buffer and returns
// the (possibly replaced) buffer.
func (c *Console) completeLine(out io.Writer, line []byte) []byte {
	buffer := string(line)
	result := c.engine.Complete(buffer, len(buffer))

	if r := result.Replacement; r != nil {
		replaced := buffer[:r.Start] + r.Value
		if r.AppendSpace {
			replaced += " "
		}
		if len(replaced) > orinctl.MaxLineLen {
			return line
		}
		// Redraw the tail of the line in place.
		for range buffer[r.Start:] {
			fmt.Fprint(out, "\b \b")
		}
		fmt.Fprint(out, replaced[r.Start:])
		return []byte(replaced)
	}

	if len(result.Options) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Join(result.Options, "  "))
		fmt.Fprint(out, prompt+buffer)
	}
	return line
}

func (c *Console) respond(out io.Writer, line string) error {
	lines, err := c.session.HandleLine(line)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	return nil
}

func shouldTerminate(input string) bool {
	trimmed := strings.TrimSpace(input)
	return strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit")
}
