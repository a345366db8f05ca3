package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/circuitnet/pkg/overlay"
)

var searchDiagram string

var searchCmd = &cobra.Command{
	Use:   "search <components-file> [query...]",
	Short: "Search component descriptors",
	Long: `Filter component descriptors by a case-insensitive substring query over
designator, type, value and description. An empty query lists every
component.

With --diagram, the shapes whose id matches a found designator are listed
as matched and every other shape as dimmed, exactly as the viewer shows
them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchDiagram, "diagram", "d", "", "diagram to match designators against")
}

func runSearch(cmd *cobra.Command, args []string) error {
	repo, err := loadComponents(args[:1])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	out := cmd.OutOrStdout()
	if searchDiagram == "" {
		results := repo.Search(query)
		fmt.Fprintf(out, "Components: %d of %d\n", len(results), repo.Len())
		for _, c := range results {
			printDescriptor(out, c.Label(), c.Description)
		}
		return nil
	}

	d, err := loadDiagram(searchDiagram)
	if err != nil {
		return err
	}
	st := overlay.Reduce(d, overlay.State{}, overlay.Search{Query: query, Components: repo.List()})

	fmt.Fprintf(out, "Components: %d of %d\n", len(st.Results), repo.Len())
	for _, c := range st.Results {
		marker := ""
		if st.Matched[c.Designator] {
			marker = " *"
		}
		printDescriptor(out, c.Label()+marker, c.Description)
	}
	if !st.Searching() {
		return nil
	}
	fmt.Fprintf(out, "Matched shapes: %s\n", joinSet(st.Matched))
	fmt.Fprintf(out, "Dimmed shapes: %d\n", len(st.Dimmed))
	return nil
}

func printDescriptor(out io.Writer, label, description string) {
	if description != "" {
		fmt.Fprintf(out, "  %-24s %s\n", label, description)
		return
	}
	fmt.Fprintf(out, "  %s\n", label)
}

func joinSet(set map[string]bool) string {
	if len(set) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
