package order

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TradeSummary accumulates the closed trades of one pair.
type TradeSummary struct {
	Pair   string
	Trades []TradeResult
	Volume float64
}

// Add records a closed trade
func (s *TradeSummary) Add(result TradeResult) {
	s.Trades = append(s.Trades, result)
}

func (s TradeSummary) winners() []TradeResult {
	return lo.Filter(s.Trades, func(t TradeResult, _ int) bool { return t.ProfitPercent >= 0 })
}

func (s TradeSummary) losers() []TradeResult {
	return lo.Filter(s.Trades, func(t TradeResult, _ int) bool { return t.ProfitPercent < 0 })
}

func profitValues(trades []TradeResult) []float64 {
	return lo.Map(trades, func(t TradeResult, _ int) float64 { return t.ProfitValue })
}

func profitPercents(trades []TradeResult) []float64 {
	return lo.Map(trades, func(t TradeResult, _ int) float64 { return t.ProfitPercent })
}

// Win lists the profit of every winning trade, in quote units.
func (s TradeSummary) Win() []float64 { return profitValues(s.winners()) }

// Lose lists the (negative) profit of every losing trade.
func (s TradeSummary) Lose() []float64 { return profitValues(s.losers()) }

// WinPercent returns the profit percent of every winning trade
func (s TradeSummary) WinPercent() []float64 { return profitPercents(s.winners()) }

// LosePercent returns the profit percent of every losing trade
func (s TradeSummary) LosePercent() []float64 { return profitPercents(s.losers()) }

// Returns lists the percent return of every trade in closing order.
func (s TradeSummary) Returns() []float64 { return profitPercents(s.Trades) }

// TradeCount returns the number of closed trades
func (s TradeSummary) TradeCount() int { return len(s.Trades) }

// Profit returns the sum of the trade profits in the quote asset
func (s TradeSummary) Profit() float64 {
	return floats.Sum(profitValues(s.Trades))
}

// SQN is the system quality number: sqrt(n) * mean(profit) / stddev(profit).
func (s TradeSummary) SQN() float64 {
	values := profitValues(s.Trades)
	if len(values) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return math.Sqrt(float64(len(values))) * mean / std
}

// Payoff is the average winning percent over the average losing percent.
func (s TradeSummary) Payoff() float64 {
	wins, losses := s.WinPercent(), s.LosePercent()
	if len(wins) == 0 || len(losses) == 0 {
		return 0
	}

	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return 0
	}
	return stat.Mean(wins, nil) / math.Abs(avgLoss)
}

// ProfitFactor is the sum of winning percents over the sum of losing percents.
func (s TradeSummary) ProfitFactor() float64 {
	losses := s.LosePercent()
	if len(losses) == 0 {
		return 0
	}

	grossLoss := floats.Sum(losses)
	if grossLoss == 0 {
		return 0
	}
	return floats.Sum(s.WinPercent()) / math.Abs(grossLoss)
}

// WinPercentage is the share of winning trades, from 0 to 100.
func (s TradeSummary) WinPercentage() float64 {
	if len(s.Trades) == 0 {
		return 0
	}
	return float64(len(s.winners())) / float64(len(s.Trades)) * 100
}

// String renders the summary as a table
func (s TradeSummary) String() string {
	out := &strings.Builder{}
	table := tablewriter.NewWriter(out)

	_, quote := exchange.SplitAssetQuote(s.Pair)
	table.AppendBulk([][]string{
		{"Coin", s.Pair},
		{"Trades", strconv.Itoa(len(s.Trades))},
		{"Win", strconv.Itoa(len(s.winners()))},
		{"Loss", strconv.Itoa(len(s.losers()))},
		{"% Win", fmt.Sprintf("%.1f", s.WinPercentage())},
		{"Payoff", fmt.Sprintf("%.1f", s.Payoff()*100)},
		{"Pr.Fact", fmt.Sprintf("%.1f", s.ProfitFactor()*100)},
		{"SQN", fmt.Sprintf("%.2f", s.SQN())},
		{"Profit", fmt.Sprintf("%.4f %s", s.Profit(), quote)},
		{"Volume", fmt.Sprintf("%.4f %s", s.Volume, quote)},
	})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return out.String()
}

// SaveReturns writes the trades of the summary to a CSV file, see WriteReturns.
func (s TradeSummary) SaveReturns(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteReturns(file, &s)
}

// WriteReturns writes one CSV row per trade: pair, side, close time, duration and percent return.
func WriteReturns(w io.Writer, summaries ...*TradeSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"pair", "side", "closed_at", "duration", "return"}); err != nil {
		return err
	}

	for _, summary := range summaries {
		for _, trade := range summary.Trades {
			err := writer.Write([]string{
				trade.Pair,
				string(trade.Side),
				strconv.FormatInt(trade.CreatedAt.Unix(), 10),
				trade.Duration.String(),
				strconv.FormatFloat(trade.ProfitPercent, 'f', 6, 64),
			})
			if err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
