package main

import (
	"fmt"
	"strings"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/exchange/binance"
	"github.com/raykavin/stratbook/pkg/notification"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/spf13/cobra"
)

const defaultLiveStorage = "stratbook.db"

func buildLiveCmd(registry *strategy.Registry) *cobra.Command {
	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "Paper trade a catalog strategy on the Binance candle stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd, registry)
		},
	}

	addRunFlags(liveCmd)
	liveCmd.Flags().String("storage", "", "Order storage: sqlite:path or a buntdb file (default "+defaultLiveStorage+")")
	liveCmd.Flags().Bool("testnet", false, "Use the Binance testnet")
	liveCmd.Flags().Bool("heikin-ashi", false, "Convert candles to Heikin-Ashi")
	liveCmd.Flags().Bool("telegram", false, "Start the Telegram bot")

	return liveCmd
}

func runLive(cmd *cobra.Command, registry *strategy.Registry) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	params, err := cfg.StrategyParams(strategyParams)
	if err != nil {
		return err
	}

	str, err := registry.New(cfg.Strategy.Name, params)
	if err != nil {
		return err
	}

	spot, err := binance.New(cmd.Context(), stratbook.DefaultLog, binance.Config{
		APIKey:     cfg.Binance.APIKey,
		APISecret:  cfg.Binance.APISecret,
		TestNet:    cfg.Binance.TestNet,
		HeikinAshi: cfg.Binance.HeikinAshi,
	})
	if err != nil {
		return err
	}

	storagePath := cfg.Storage
	if storagePath == "" {
		storagePath = defaultLiveStorage
	}
	db, err := OpenStorage(storagePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	wallet := newPaperWallet(cfg, exchange.WithDataFeed(spot))

	settings := cfg.Settings()
	for i, pair := range settings.Pairs {
		settings.Pairs[i] = strings.ToUpper(pair)
	}
	if settings.Telegram.Enabled && settings.Telegram.Token == "" {
		return fmt.Errorf("telegram is enabled but STRATBOOK_TELEGRAM_TOKEN is empty")
	}

	options := []stratbook.Option{
		stratbook.WithPaperWallet(wallet),
		stratbook.WithStorage(db),
		stratbook.WithLogLevel(cfg.LogLevel),
		stratbook.WithOutput(cmd.OutOrStdout()),
	}
	if cfg.Mail.Enabled {
		options = append(options, stratbook.WithNotifier(notification.NewMail(notification.MailParams{
			SMTPServerPort:    cfg.Mail.Port,
			SMTPServerAddress: cfg.Mail.Server,
			To:                cfg.Mail.To,
			From:              cfg.Mail.From,
			Password:          cfg.Mail.Password,
		})))
	}

	bot, err := stratbook.NewBot(cmd.Context(), settings, wallet, str, options...)
	if err != nil {
		return err
	}

	stratbook.DefaultLog.Infof("paper trading %s on %s", cfg.Strategy.Name, strings.Join(settings.Pairs, ", "))
	if err := bot.Run(cmd.Context()); err != nil {
		return err
	}

	bot.Summary()
	return nil
}
