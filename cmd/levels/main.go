package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/levels"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/model"
	"StockSentinel/internal/recorder"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "levels",
		Short:        "Compute support and resistance zones",
		SilenceUsage: true,
	}
	root.PersistentFlags().Float64("threshold", levels.DefaultThresholdPercent, "clustering threshold in percent of the current price")
	root.PersistentFlags().Bool("json", false, "print the level set as JSON")
	root.AddCommand(newComputeCmd(), newSymbolCmd(), newHistoryCmd())
	return root
}

func newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute --high H --low L --close C --price P",
		Short: "Compute levels from a price window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			high, _ := f.GetFloat64("high")
			low, _ := f.GetFloat64("low")
			closePrice, _ := f.GetFloat64("close")
			price, _ := f.GetFloat64("price")
			threshold, _ := f.GetFloat64("threshold")
			asJSON, _ := f.GetBool("json")

			if !f.Changed("price") {
				price = closePrice
			}
			w := model.PriceWindow{High: high, Low: low, Close: closePrice, CurrentPrice: price}
			res := levels.Analyze(w, levels.WithThresholdPercent(threshold))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res.Levels)
			}
			renderResult(cmd.OutOrStdout(), "window", price, "USD", res)
			return nil
		},
	}
	cmd.Flags().Float64("high", 0, "window high")
	cmd.Flags().Float64("low", 0, "window low")
	cmd.Flags().Float64("close", 0, "last close")
	cmd.Flags().Float64("price", 0, "current price (defaults to --close)")
	_ = cmd.MarkFlagRequired("high")
	_ = cmd.MarkFlagRequired("low")
	_ = cmd.MarkFlagRequired("close")
	return cmd
}

func newSymbolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbol SYMBOL",
		Short: "Fetch a symbol from Yahoo Finance and compute its levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			threshold, _ := f.GetFloat64("threshold")
			sessions, _ := f.GetInt("sessions")
			historical, _ := f.GetBool("historical-ma")
			asJSON, _ := f.GetBool("json")

			fetcher := collector.NewYahooFetcher(collector.YahooOptions{
				UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
				Proxy:     os.Getenv("HTTPS_PROXY"),
			})
			col := collector.NewCollector(fetcher, sessions, threshold, historical, logger.Nop())

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			a, err := col.Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), a)
			}
			path := levels.PathOK
			if a.Fallback {
				path = levels.PathFallback
			}
			title := fmt.Sprintf("%s - %s (H %.2f / L %.2f / C %.2f)",
				a.Symbol, a.CompanyName, a.Window.High, a.Window.Low, a.Window.Close)
			renderResult(cmd.OutOrStdout(), title, a.CurrentPrice, a.Currency, levels.Result{Levels: a.Levels, Path: path})
			return nil
		},
	}
	cmd.Flags().Int("sessions", 20, "number of recent sessions in the high/low window")
	cmd.Flags().Bool("historical-ma", false, "use moving averages of the fetched closes")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show recorded level snapshots for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			dbPath, _ := f.GetString("db")
			limit, _ := f.GetInt("limit")

			r, err := recorder.NewSQLiteRecorder(dbPath, logger.Nop())
			if err != nil {
				return err
			}
			defer r.Close()

			hist, err := r.History(strings.ToUpper(args[0]), limit)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), hist)
			return nil
		},
	}
	cmd.Flags().String("db", "data/stock_sentinel.db", "sqlite database written by the bot")
	cmd.Flags().Int("limit", 10, "number of snapshots")
	return cmd
}

func renderResult(out io.Writer, title string, price float64, currency string, res levels.Result) {
	fmt.Fprintf(out, "%s  price %.2f %s\n", bold(title), price, currency)
	if res.Fallback() {
		msg := "basic levels (fallback)"
		if res.Err != nil {
			msg += ": " + res.Err.Error()
		}
		fmt.Fprintln(out, yellow(msg))
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Side", "#", "Price", "Strength", "Distance", "Sources"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, z := range res.Levels.Support {
		table.Append(zoneRow(green("support"), i, z, price-z.Price, price))
	}
	for i, z := range res.Levels.Resistance {
		table.Append(zoneRow(red("resistance"), i, z, z.Price-price, price))
	}
	table.Render()
}

func zoneRow(side string, i int, z model.Cluster, diff, price float64) []string {
	dist := 0.0
	if price != 0 {
		dist = diff / price * 100
	}
	return []string{
		side,
		fmt.Sprint(i + 1),
		fmt.Sprintf("%.2f", z.Price),
		fmt.Sprintf("%g", z.Strength),
		fmt.Sprintf("%.1f%%", dist),
		strings.Join(z.Sources, ","),
	}
}

func renderHistory(out io.Writer, hist []recorder.AnalysisRecord) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Time", "Price", "Path", "Support", "Resistance"})
	for _, h := range hist {
		path := h.Path
		if path == recorder.PathFallback {
			path = yellow(path)
		}
		table.Append([]string{
			h.Timestamp.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", h.CurrentPrice),
			path,
			green(joinPrices(h.Support)),
			red(joinPrices(h.Resistance)),
		})
	}
	table.Render()
}

func joinPrices(zones []model.Cluster) string {
	parts := make([]string, len(zones))
	for i, z := range zones {
		parts[i] = fmt.Sprintf("%.2f", z.Price)
	}
	return strings.Join(parts, " ")
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
