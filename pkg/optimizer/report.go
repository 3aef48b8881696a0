package optimizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/samber/lo"
)

// SaveResultsToCSV writes results, in their current order, to a CSV file.
func SaveResultsToCSV(results []*core.OptimizerResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteResultsCSV(file, results)
}

// WriteResultsCSV writes one row per result: rank, id, duration, then every
// parameter and every metric in alphabetical order.
func WriteResultsCSV(w io.Writer, results []*core.OptimizerResult) error {
	writer := csv.NewWriter(w)
	paramNames, metricNames := columns(results)

	header := append([]string{"rank", "id", "duration"}, paramNames...)
	header = append(header, metricNames...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, result := range results {
		row := []string{strconv.Itoa(i + 1), result.ID, result.Duration.String()}
		for _, name := range paramNames {
			row = append(row, formatValue(result.Parameters[name]))
		}
		for _, name := range metricNames {
			value, ok := result.Metrics[name]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(value, 'f', 4, 64))
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func columns(results []*core.OptimizerResult) (params, metrics []string) {
	for _, result := range results {
		params = append(params, lo.Keys(result.Parameters)...)
		metrics = append(metrics, lo.Keys(result.Metrics)...)
	}

	params, metrics = lo.Uniq(params), lo.Uniq(metrics)
	sort.Strings(params)
	sort.Strings(metrics)
	return params, metrics
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', 4, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PrintResults renders the first topN results as a table. Results are expected
// to be sorted already.
func PrintResults(w io.Writer, results []*core.OptimizerResult, targetMetric core.MetricName, topN int) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display")
		return
	}

	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}

	fmt.Fprintf(w, "\n=== Top %d Results (by %s) ===\n\n", len(results), targetMetric)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "ID", "Parameters", string(targetMetric), "Trades", "Drawdown", "Duration"})
	table.SetAutoWrapText(false)
	for i, result := range results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			shortID(result.ID),
			FormatParameterSet(result.Parameters),
			fmt.Sprintf("%.4f", result.Metrics[string(targetMetric)]),
			fmt.Sprintf("%.0f", result.Metrics[string(core.MetricTradeCount)]),
			fmt.Sprintf("%.2f %%", result.Metrics[string(core.MetricDrawdown)]*100),
			result.Duration.Round(time.Millisecond).String(),
		})
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatParameterSet renders a set as {a: 1, b: 2} with sorted names.
func FormatParameterSet(params core.ParameterSet) string {
	names := lo.Keys(params)
	sort.Strings(names)

	parts := lo.Map(names, func(name string, _ int) string {
		return fmt.Sprintf("%s: %v", name, params[name])
	})
	return "{" + strings.Join(parts, ", ") + "}"
}
