// Package prompt asks the user for the parts of a target that were not
// configured.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"golang.org/x/term"
)

const (
	hostLabel = "Enter the device IP: "
	portLabel = "Enter port: "
)

var (
	// ErrCancelled is returned when the user aborts the prompt
	ErrCancelled = errors.New("prompt cancelled")
	// ErrNoInput is returned when input ends before a value was read
	ErrNoInput = errors.New("no input for prompt")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DC4E4")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8")).Italic(true)
)

// Target returns current with its empty host and port filled in from in.
// A terminal gets a small form; anything else is read line by line. Values
// are taken verbatim, including empty answers.
func Target(in io.Reader, out io.Writer, current model.Target) (model.Target, error) {
	if current.Host != "" && current.Port != "" {
		return current, nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runForm(f, out, current)
	}
	return readLines(in, out, current)
}

func readLines(in io.Reader, out io.Writer, current model.Target) (model.Target, error) {
	r := bufio.NewReader(in)
	target := current

	if target.Host == "" {
		host, err := ask(r, out, hostLabel)
		if err != nil {
			return model.Target{}, err
		}
		target.Host = host
	}
	if target.Port == "" {
		port, err := ask(r, out, portLabel)
		if err != nil {
			return model.Target{}, err
		}
		target.Port = port
	}

	return target, nil
}

func ask(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)

	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %s", ErrNoInput, strings.TrimSpace(label))
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runForm(in *os.File, out io.Writer, current model.Target) (model.Target, error) {
	p := tea.NewProgram(newTargetForm(current), tea.WithInput(in), tea.WithOutput(out))
	m, err := p.Run()
	if err != nil {
		return model.Target{}, fmt.Errorf("running prompt: %w", err)
	}

	form, ok := m.(*targetForm)
	if !ok || form.cancelled {
		return model.Target{}, ErrCancelled
	}
	return form.result(), nil
}

type field struct {
	key   string
	label string
	input textinput.Model
}

// targetForm asks for each missing part of a target in turn
type targetForm struct {
	current   model.Target
	fields    []field
	focus     int
	done      bool
	cancelled bool
}

func newTargetForm(current model.Target) *targetForm {
	f := &targetForm{current: current}

	if current.Host == "" {
		f.fields = append(f.fields, newField("host", hostLabel, "192.168.1.50"))
	}
	if current.Port == "" {
		f.fields = append(f.fields, newField("port", portLabel, "80"))
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func newField(key, label, placeholder string) field {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	return field{key: key, label: label, input: input}
}

func (f *targetForm) Init() tea.Cmd {
	if len(f.fields) == 0 {
		return tea.Quit
	}
	return nil
}

func (f *targetForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			f.cancelled = true
			return f, tea.Quit
		case tea.KeyEnter:
			if f.focus >= len(f.fields)-1 {
				f.done = true
				return f, tea.Quit
			}
			f.fields[f.focus].input.Blur()
			f.focus++
			return f, f.fields[f.focus].input.Focus()
		}
	}

	if len(f.fields) == 0 {
		return f, nil
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f *targetForm) View() string {
	if f.done || f.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Thing description probe") + "\n\n")
	for i, fl := range f.fields {
		if i > f.focus {
			break
		}
		b.WriteString(labelStyle.Render(fl.label) + fl.input.View() + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("enter to confirm, esc to cancel") + "\n")
	return b.String()
}

func (f *targetForm) result() model.Target {
	target := f.current
	for _, fl := range f.fields {
		switch fl.key {
		case "host":
			target.Host = fl.input.Value()
		case "port":
			target.Port = fl.input.Value()
		}
	}
	return target
}
