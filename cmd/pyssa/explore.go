package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/irprint"
	"github.com/ir8co/pyssa/module"
	"github.com/ir8co/pyssa/translator"
)

// newExploreCmd builds the `explore` subcommand: translate a fixture and
// browse the resulting procedures interactively (spec §6.3 "explore").
// The Bubbletea scaffolding (styles, model/update/view shape) is adapted
// from the teacher's REPL, repointed from evaluating typed-in Monkey
// expressions to paging through an already-translated module's procs.
func newExploreCmd() *cobra.Command {
	var moduleName string

	cmd := &cobra.Command{
		Use:   "explore <fixture.yaml>",
		Short: "Interactively browse a translated module's procedures",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			top, err := bytecode.LoadFixture(path)
			if err != nil {
				return err
			}
			name := moduleName
			if name == "" {
				name = top.Name
			}
			if name == "" {
				name = "module"
			}
			mod, err := translator.ToModule(path, name, top)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			p := tea.NewProgram(initialExploreModel(mod))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&moduleName, "module", "m", "", "module name prefixing every qualified name (default: the code object's own name)")
	return cmd
}

var (
	exploreTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	exploreSelectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D56F4")).
		Bold(true)

	exploreDimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#767676"))

	exploreIRStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))
)

// exploreModel is the TUI's state: the translated module and which of its
// entries (the module header, or one proc) is currently selected.
type exploreModel struct {
	mod     *module.Module
	entries []string // "(module)" followed by each proc's name
	cursor  int
}

func initialExploreModel(mod *module.Module) exploreModel {
	entries := []string{"(module)"}
	for _, p := range mod.Procs {
		entries = append(entries, p.Name)
	}
	return exploreModel{mod: mod, entries: entries}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m exploreModel) View() string {
	var sb strings.Builder
	sb.WriteString(exploreTitleStyle.Render(fmt.Sprintf(" pyssa explore: %s ", m.mod.SourceLanguage)))
	sb.WriteString("\n\n")

	for i, name := range m.entries {
		if i == m.cursor {
			sb.WriteString(exploreSelectedStyle.Render("> " + name))
		} else {
			sb.WriteString(exploreDimStyle.Render("  " + name))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(exploreIRStyle.Render(m.selectedBody()))
	sb.WriteString("\n\n")
	sb.WriteString(exploreDimStyle.Render("↑/↓ select · q quit"))
	return sb.String()
}

// selectedBody renders the currently selected entry: the module header
// (globals, types, builtins) for entry 0, or one proc's body otherwise.
func (m exploreModel) selectedBody() string {
	if m.cursor == 0 {
		return moduleHeader(m.mod)
	}
	return irprint.PrintProc(m.mod.Procs[m.cursor-1])
}

func moduleHeader(mod *module.Module) string {
	var sb strings.Builder
	for _, g := range mod.Globals {
		fmt.Fprintf(&sb, "global %s: %s\n", g.Name, g.Type)
	}
	for _, t := range mod.Types {
		fmt.Fprintf(&sb, "type %s\n", t.Name)
	}
	for _, b := range mod.Builtins {
		fmt.Fprintf(&sb, "declare $builtins.%s\n", b.Name)
	}
	return sb.String()
}
