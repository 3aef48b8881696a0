package stratbook

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbook/pkg/metric"
	"github.com/raykavin/stratbook/pkg/order"
)

const bootstrapSamples = 10000

// Summary prints the trades per pair, the return histogram, bootstrap
// confidence intervals and, with a paper wallet, the portfolio summary.
func (b *Bot) Summary() {
	b.WriteSummary(b.output)
}

// WriteSummary writes the trade summary of every pair and the wallet results to w
func (b *Bot) WriteSummary(w io.Writer) {
	results := b.orderController.Results()
	pairs := sortedPairs(results)

	var (
		profit, volume, sqn        float64
		wins, losses               int
		payoffSum, profitFactorSum float64
		returns                    []float64
	)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Trades", "Win", "Loss", "% Win", "Payoff", "Pr Fact.", "SQN", "Profit", "Volume"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	for _, pair := range pairs {
		summary := results[pair]
		trades := summary.TradeCount()
		win, loss := len(summary.Win()), len(summary.Lose())

		table.Append([]string{
			pair,
			strconv.Itoa(trades),
			strconv.Itoa(win),
			strconv.Itoa(loss),
			fmt.Sprintf("%.1f %%", summary.WinPercentage()),
			fmt.Sprintf("%.3f", summary.Payoff()),
			fmt.Sprintf("%.3f", summary.ProfitFactor()),
			fmt.Sprintf("%.1f", summary.SQN()),
			fmt.Sprintf("%.2f", summary.Profit()),
			fmt.Sprintf("%.2f", summary.Volume),
		})

		profit += summary.Profit()
		volume += summary.Volume
		sqn += summary.SQN()
		wins += win
		losses += loss
		payoffSum += summary.Payoff() * float64(trades)
		profitFactorSum += summary.ProfitFactor() * float64(trades)
		returns = append(returns, summary.Returns()...)
	}

	total := wins + losses
	footer := []string{"TOTAL", strconv.Itoa(total), strconv.Itoa(wins), strconv.Itoa(losses), "-", "-", "-", "-",
		fmt.Sprintf("%.2f", profit), fmt.Sprintf("%.2f", volume)}
	if total > 0 {
		footer[4] = fmt.Sprintf("%.1f %%", float64(wins)/float64(total)*100)
		footer[5] = fmt.Sprintf("%.3f", payoffSum/float64(total))
		footer[6] = fmt.Sprintf("%.3f", profitFactorSum/float64(total))
		footer[7] = fmt.Sprintf("%.1f", sqn/float64(len(pairs)))
	}
	table.SetFooter(footer)
	table.Render()

	if len(returns) > 0 {
		fmt.Fprintln(w, "\n------ RETURN -------")
		percents := make([]float64, len(returns))
		for i, r := range returns {
			percents[i] = r * 100
		}
		_ = histogram.Fprint(w, histogram.Hist(15, percents), histogram.Linear(10))

		fmt.Fprintln(w, "\n------ CONFIDENCE INTERVAL (95%) -------")
		for _, pair := range pairs {
			writeIntervals(w, results[pair])
		}
	}
	fmt.Fprintln(w)

	if b.paperWallet != nil {
		b.paperWallet.WriteSummary(w)
	}
}

func writeIntervals(w io.Writer, summary *order.TradeSummary) {
	returns := summary.Returns()
	if len(returns) == 0 {
		return
	}

	ret := metric.Bootstrap(returns, metric.Mean, bootstrapSamples, 0.95)
	payoff := metric.Bootstrap(returns, metric.Payoff, bootstrapSamples, 0.95)
	profitFactor := metric.Bootstrap(returns, metric.ProfitFactor, bootstrapSamples, 0.95)

	fmt.Fprintf(w, "| %s |\n", summary.Pair)
	fmt.Fprintf(w, "RETURN:      %.2f%% (%.2f%% ~ %.2f%%)\n", ret.Mean*100, ret.Lower*100, ret.Upper*100)
	fmt.Fprintf(w, "PAYOFF:      %.2f (%.2f ~ %.2f)\n", payoff.Mean, payoff.Lower, payoff.Upper)
	fmt.Fprintf(w, "PROF.FACTOR: %.2f (%.2f ~ %.2f)\n", profitFactor.Mean, profitFactor.Lower, profitFactor.Upper)
}

// SaveReturns writes every closed trade of every pair to one CSV file.
func (b *Bot) SaveReturns(path string) error {
	results := b.orderController.Results()
	summaries := make([]*order.TradeSummary, 0, len(results))
	for _, pair := range sortedPairs(results) {
		summaries = append(summaries, results[pair])
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return order.WriteReturns(file, summaries...)
}

func sortedPairs(results map[string]*order.TradeSummary) []string {
	pairs := make([]string, 0, len(results))
	for pair := range results {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}
