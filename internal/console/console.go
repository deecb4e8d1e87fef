package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/trigg3rX/mining-cli/internal/modeloop"
)

// ErrSelectionCancelled is returned when the operator leaves the menu without a choice.
var ErrSelectionCancelled = errors.New("mode selection cancelled")

// Console is the operator terminal: mode menu and pauses.
type Console struct {
	in    *bufio.Reader
	tty   *os.File
	out   io.Writer
	modes []modeloop.RunMode
}

// New wraps in and out. Raw single-key reads are used only when in is a terminal.
func New(in io.Reader, out io.Writer, modes []modeloop.RunMode) *Console {
	c := &Console{
		in:    bufio.NewReader(in),
		out:   out,
		modes: modes,
	}
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		c.tty = file
	}
	return c
}

// SelectMode shows the interactive list menu on a terminal. Piped input gets the
// numbered line menu instead.
func (c *Console) SelectMode() (modeloop.RunMode, error) {
	if c.tty != nil {
		return c.selectFromList()
	}
	return c.selectFromLines()
}

func (c *Console) selectFromList() (modeloop.RunMode, error) {
	program := tea.NewProgram(newMenuModel(c.modes), tea.WithInput(c.tty), tea.WithOutput(c.out))
	final, err := program.Run()
	if err != nil {
		return 0, fmt.Errorf("failed to run mode menu: %w", err)
	}
	menu, ok := final.(menuModel)
	if !ok || !menu.chosen {
		return 0, ErrSelectionCancelled
	}
	fmt.Fprintf(c.out, "Selected mode: %s\n", menu.choice)
	return menu.choice, nil
}

func (c *Console) selectFromLines() (modeloop.RunMode, error) {
	for {
		fmt.Fprintln(c.out, "Select mode")
		for i, mode := range c.modes {
			fmt.Fprintf(c.out, "  %d) %s: %s\n", i+1, mode, mode.Description())
		}
		fmt.Fprint(c.out, "> ")

		line, err := c.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return 0, fmt.Errorf("failed to read mode selection: %w", err)
		}

		if mode, ok := c.parseChoice(line); ok {
			return mode, nil
		}
		fmt.Fprintf(c.out, "Invalid selection %q\n", strings.TrimSpace(line))
	}
}

func (c *Console) parseChoice(line string) (modeloop.RunMode, bool) {
	choice := strings.TrimSpace(line)
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(c.modes) {
			return c.modes[n-1], true
		}
		return 0, false
	}
	mode, err := modeloop.ParseRunMode(choice)
	if err != nil {
		return 0, false
	}
	for _, allowed := range c.modes {
		if allowed == mode {
			return mode, true
		}
	}
	return 0, false
}

// Pause waits for a single key on a terminal, or a line otherwise.
func (c *Console) Pause() {
	fmt.Fprintln(c.out, "Press any key to continue...")
	if c.tty != nil {
		fd := int(c.tty.Fd())
		if oldState, err := term.MakeRaw(fd); err == nil {
			defer func() { _ = term.Restore(fd, oldState) }()
			// Read the tty directly so no buffered bytes are hidden from the menu
			key := make([]byte, 8)
			_, _ = c.tty.Read(key)
			return
		}
	}
	_, _ = c.in.ReadString('\n')
}

// Println writes a line for the operator, outside the log stream.
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}
