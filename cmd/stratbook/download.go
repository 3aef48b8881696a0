package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/backtesting"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/exchange/binance"
	"github.com/spf13/cobra"
)

// Download command flags
var (
	downloadPair      string
	downloadDays      int
	downloadStart     string
	downloadEnd       string
	downloadTimeframe string
	downloadOutput    string
)

// Pairs command flags
var (
	pairsFile   string
	pairsUpdate bool
)

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical candles from Binance to CSV",
		Args:  cobra.NoArgs,
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&downloadPair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	downloadCmd.Flags().IntVarP(&downloadDays, "days", "d", 0, "Number of days to download (default 30 days)")
	downloadCmd.Flags().StringVarP(&downloadStart, "start", "s", "", "Start date (e.g. 2021-12-01 or 'Dec 1, 2021')")
	downloadCmd.Flags().StringVarP(&downloadEnd, "end", "e", "", "End date (e.g. 2021-12-31)")
	downloadCmd.Flags().StringVarP(&downloadTimeframe, "timeframe", "t", "", "Timeframe (e.g. 1h)")
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Output file path (default <pair>-<timeframe>.csv)")

	downloadCmd.MarkFlagRequired("pair")
	downloadCmd.MarkFlagRequired("timeframe")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	options, err := downloadOptions(downloadDays, downloadStart, downloadEnd)
	if err != nil {
		return err
	}

	exc, err := binance.New(cmd.Context(), stratbook.DefaultLog, binance.Config{
		APIKey:    cfg.Binance.APIKey,
		APISecret: cfg.Binance.APISecret,
		TestNet:   cfg.Binance.TestNet,
	})
	if err != nil {
		return err
	}

	output := downloadOutput
	if output == "" {
		output = defaultDataFile(downloadPair, downloadTimeframe)
	}

	return backtesting.NewDownloader(exc, stratbook.DefaultLog).Download(
		cmd.Context(),
		strings.ToUpper(downloadPair),
		downloadTimeframe,
		output,
		options...,
	)
}

// downloadOptions turns the period flags into downloader options. Start and
// end must come together and accept any layout dateparse understands.
func downloadOptions(days int, start, end string) ([]backtesting.Option, error) {
	var options []backtesting.Option

	if days > 0 {
		options = append(options, backtesting.WithDays(days))
	}

	if start != "" || end != "" {
		if start == "" || end == "" {
			return nil, fmt.Errorf("START and END dates must be provided together")
		}

		startTime, err := dateparse.ParseAny(start)
		if err != nil {
			return nil, fmt.Errorf("invalid start date: %w", err)
		}

		endTime, err := dateparse.ParseAny(end)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}

		if !endTime.After(startTime) {
			return nil, fmt.Errorf("end date %s is not after start date %s", end, start)
		}

		options = append(options, backtesting.WithInterval(startTime, endTime))
	}

	return options, nil
}

func buildPairsCmd() *cobra.Command {
	pairsCmd := &cobra.Command{
		Use:   "pairs [PAIR...]",
		Short: "Update the pair list from Binance or show how pairs split into asset and quote",
		RunE:  runPairs,
	}

	pairsCmd.Flags().StringVarP(&pairsFile, "file", "f", "pairs.json", "Pair list file")
	pairsCmd.Flags().BoolVarP(&pairsUpdate, "update", "u", false, "Fetch the pair list from Binance and save it")

	return pairsCmd
}

func runPairs(cmd *cobra.Command, args []string) error {
	if pairsUpdate {
		count, err := exchange.UpdateAndSavePairs(cmd.Context(), pairsFile)
		if err != nil {
			return err
		}
		stratbook.DefaultLog.Infof("%d pairs saved to %s", count, pairsFile)
	} else if err := exchange.DefaultPairs().Load(pairsFile); err != nil {
		stratbook.DefaultLog.Warnf("%v, falling back to known quotes", err)
	}

	if len(args) == 0 {
		return nil
	}
	return writePairs(cmd.OutOrStdout(), args)
}

// writePairs prints one pair per line
func writePairs(w io.Writer, pairs []string) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Asset", "Quote"})
	for _, pair := range pairs {
		asset, quote := exchange.SplitAssetQuote(pair)
		if asset == "" {
			return fmt.Errorf("unknown pair %s", pair)
		}
		table.Append([]string{strings.ToUpper(pair), asset, quote})
	}
	table.Render()
	return nil
}
