// Package userinteraction renders run progress and results on the terminal.
package userinteraction

import (
	"fmt"
	"io"
	"os"

	"form-applier/internal/application/port/input"
	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/entity"

	"github.com/fatih/color"
)

type ConsolePresenter struct {
	out     io.Writer
	noColor bool
}

func NewConsolePresenter() *ConsolePresenter {
	return &ConsolePresenter{out: os.Stdout}
}

// NewErrorPresenter writes to stderr.
func NewErrorPresenter() *ConsolePresenter {
	return &ConsolePresenter{out: os.Stderr}
}

// NewPlainPresenter writes to out without escape sequences.
func NewPlainPresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out, noColor: true}
}

func (p *ConsolePresenter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.noColor {
		c.DisableColor()
	}
	return c
}

func (p *ConsolePresenter) ShowRunStart(url, agent string, records int) {
	p.paint(color.FgCyan, color.Bold).Fprintf(p.out, "Submitting %d applications to %s with agent %q\n", records, url, agent)
}

// ShowResult prints the summary line, then one line per record coloured by status.
func (p *ConsolePresenter) ShowResult(result *input.SubmitResult) {
	fmt.Fprintf(p.out, "%d applications processed! (%d confirmed, %d unconfirmed)\n",
		result.Total(), len(result.Confirmed), len(result.Unconfirmed))

	for _, d := range result.All() {
		name, email := "", ""
		if d.Info.Profile != nil {
			name, email = d.Info.Profile.FullName, d.Info.Profile.Email
		}
		p.paint(statusColor(d.Status)).Fprintf(p.out, "Application for %s (%s) - Status: %s\n", name, email, d.Status)
		if d.Err != nil {
			p.paint(color.Faint).Fprintf(p.out, "   %s\n", truncate(d.Err.Error(), 300))
		}
		if d.Evidence != "" {
			p.paint(color.Faint).Fprintf(p.out, "   screenshot: %s\n", d.Evidence)
		}
	}
}

func (p *ConsolePresenter) ShowError(err error) {
	p.paint(color.FgRed).Fprint(p.out, "Error: ")
	fmt.Fprintln(p.out, err)
}

// ShowAgents lists registered agents in registration order; the first is the default.
func (p *ConsolePresenter) ShowAgents(agents output.FormAgentRegistry) {
	for i, name := range agents.Names() {
		agent, err := agents.Get(name)
		if err != nil {
			continue
		}
		label := p.paint(color.Bold).Sprint(name)
		if i == 0 {
			label += " (default)"
		}
		fmt.Fprintln(p.out, label)
		fmt.Fprintf(p.out, "   %s\n", agent.Description())
	}
}

func statusColor(s entity.Status) color.Attribute {
	switch s {
	case entity.StatusConfirmed:
		return color.FgBlue
	case entity.StatusSubmitted:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
