package presentation

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const usageLine = "Usage: -location repositoryURI [-list] [-add repository-list] [-remove repository-list] [-repositoryName name] [-validate] [-failOnExists] [-compressed]"

var usageOptions = [][2]string{
	{"-location", "URI of composite repository to create / modify"},
	{"-list", "Whether the list of children should be printed on the standard output"},
	{"-add", "Comma separated list of repositories URI to add to the composite"},
	{"-remove", "Comma separated list of repositories URI to remove from the composite"},
	{"-repositoryName", "The name of the composite as it should appears to client"},
	{"-validate", "Child repositories claiming to contain the same artifact are compared using the given comparator. Either 'org.eclipse.equinox.p2.repository.tools.jar.comparator' or 'org.eclipse.equinox.artifact.md5.comparator'"},
	{"-failOnExists", "Whether we should fail if the repository already exists. (Default is false)"},
	{"-compressed", "Whether the composite repository should compressed. (Default is false)"},
	{"-verbose", "Print diagnostics on the standard error. (Default is false)"},
}

// Printer writes results to Out and diagnostics to Err. Styling follows
// the terminal behind Err and disappears when it is not a TTY.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// PrintChildren writes one child location per line.
func (p Printer) PrintChildren(children []*url.URL) {
	for _, child := range children {
		fmt.Fprintln(p.Out, child.String())
	}
}

func (p Printer) PrintError(msg string) {
	style := lipgloss.NewRenderer(p.Err).NewStyle().Foreground(lipgloss.Color("#E85D75")).Bold(true)
	fmt.Fprintln(p.Err, style.Render(msg))
}

func (p Printer) PrintUsage() {
	fmt.Fprint(p.Err, p.Usage())
}

func (p Printer) Usage() string {
	r := lipgloss.NewRenderer(p.Err)
	flagStyle := r.NewStyle().Foreground(lipgloss.Color("#E8A87C")).Width(17)

	var b strings.Builder
	b.WriteString(r.NewStyle().Bold(true).Render(usageLine))
	b.WriteString("\n")
	for _, opt := range usageOptions {
		b.WriteString("  ")
		b.WriteString(flagStyle.Render(opt[0]))
		b.WriteString(opt[1])
		b.WriteString("\n")
	}
	return b.String()
}

// Warnings formats the list of options that were ignored.
func Warnings(ignored []string) []string {
	lines := make([]string, 0, len(ignored))
	for _, opt := range ignored {
		lines = append(lines, fmt.Sprintf("ignoring unknown option %s", opt))
	}
	return lines
}
