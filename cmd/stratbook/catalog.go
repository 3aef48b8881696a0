package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var listTag string

func buildListCmd(registry *strategy.Registry) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the strategy catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeCatalog(cmd.OutOrStdout(), registry, listTag)
		},
	}

	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Only strategies with this tag (e.g. trend)")
	return listCmd
}

func buildDescribeCmd(registry *strategy.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <strategy>",
		Short: "Show the tunable parameters of a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDefinition(cmd.OutOrStdout(), registry, args[0])
		},
	}
}

// writeCatalog lists the definitions, optionally restricted to one tag
func writeCatalog(w io.Writer, registry *strategy.Registry, tag string) error {
	definitions := registry.Definitions()
	if tag != "" {
		definitions = lo.Filter(definitions, func(d strategy.Definition, _ int) bool {
			return lo.Contains(d.Tags, tag)
		})
	}
	if len(definitions) == 0 {
		return fmt.Errorf("no strategy tagged %q", tag)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Timeframe", "Warmup", "Params", "Tags", "Description"})
	table.SetAutoWrapText(false)
	for _, definition := range definitions {
		str := definition.New()
		table.Append([]string{
			definition.Name,
			str.Timeframe(),
			strconv.Itoa(str.WarmupPeriod()),
			strconv.Itoa(len(str.GetParameters())),
			strings.Join(definition.Tags, ","),
			definition.Description,
		})
	}
	table.Render()
	return nil
}

// writeDefinition describes one strategy and its parameters
func writeDefinition(w io.Writer, registry *strategy.Registry, name string) error {
	definition, err := registry.Get(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %s\n", definition.Name, definition.Description)
	if len(definition.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(definition.Tags, ", "))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Parameter", "Type", "Default", "Min", "Max", "Step", "Options", "Description"})
	table.SetAutoWrapText(false)
	for _, param := range definition.Parameters() {
		table.Append([]string{
			param.Name,
			string(param.Type),
			format(param.Default),
			format(param.Min),
			format(param.Max),
			format(param.Step),
			strings.Join(lo.Map(param.Options, func(o any, _ int) string { return format(o) }), "|"),
			param.Description,
		})
	}
	table.Render()
	return nil
}

func format(value any) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprint(value)
}
