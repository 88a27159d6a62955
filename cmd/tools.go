package cmd

import (
	"sort"
	"strings"

	"fhirmcp/internal/config"
	"fhirmcp/internal/tools"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// requiredParams renders the required-parameter list of a tool schema.
func requiredParams(required []string) string {
	if len(required) == 0 {
		return "-"
	}
	sorted := append([]string(nil), required...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

// toolsCmd prints the tool catalog without starting a server, so operators
// can review what an agent will see before wiring the MCP client.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the FHIR tools this server exposes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := tools.NewProvider(config.GetDefaultConfig())

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"TOOL", "REQUIRED PARAMETERS", "DESCRIPTION"})
		for _, tool := range provider.Tools() {
			t.AppendRow(table.Row{tool.Name, requiredParams(tool.InputSchema.Required), tool.Description})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
