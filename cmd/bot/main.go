package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"riskToleranceBot/internal/allocation"
	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/config"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/questionnaire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		cfg     *config.Config
	)
	root := &cobra.Command{
		Use:           "riskbot",
		Short:         "Risk tolerance questionnaire, model portfolios and backtests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			config.SetupLogger(c)
			if err := allocation.Verify(); err != nil {
				return fmt.Errorf("allocation catalog: %w", err)
			}
			cfg = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("CONFIG_PATH"), "optional YAML config file")

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(serveCmd(cfgFn))
	root.AddCommand(questionsCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(assessCmd())
	root.AddCommand(simulateCmd(cfgFn))
	return root
}

func questionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Print the questionnaire",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, q := range questionnaire.Questions() {
				fmt.Fprintf(out, "%d. %s\n", i+1, q.Prompt)
				for j, o := range q.Options {
					fmt.Fprintf(out, "   %d) %s\n", j+1, o)
				}
			}
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the model portfolio of every tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range questionnaire.Tiers {
				m := allocation.Macro(t)
				fmt.Fprintf(out, "%s (stocks %d%%, bonds %d%%, cash %d%%)\n", t, m.Stocks, m.Bonds, m.Cash)
				for _, h := range allocation.Instruments(t) {
					fmt.Fprintf(out, "  %-5s %3d%%  %s\n", h.Symbol, h.Percent, h.Description)
				}
			}
			return nil
		},
	}
}

func assessCmd() *cobra.Command {
	var answers string
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a full set of answers and print the resulting profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := parseChoices(answers)
			if err != nil {
				return err
			}
			svc := assessment.NewService(nil)
			p, err := svc.Assess(set, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), assessment.FormatProfile(p))
			return nil
		},
	}
	cmd.Flags().StringVar(&answers, "answers", "", "comma separated option numbers (1-5), one per question")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func simulateCmd(cfg func() *config.Config) *cobra.Command {
	var (
		tier       string
		answers    string
		horizon    string
		investment float64
		pricesPath string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Backtest a tier's model portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			var src finance.PriceSource
			if pricesPath != "" {
				f, err := os.Open(pricesPath)
				if err != nil {
					return err
				}
				defer f.Close()
				s, err := finance.LoadPriceCSV(f)
				if err != nil {
					return err
				}
				src = s
			} else {
				src = finance.NewYahooSource(
					finance.WithYahooTimeout(c.Yahoo.Timeout),
					finance.WithYahooRateLimit(c.Yahoo.RatePerSecond, c.Yahoo.Burst),
				)
			}
			svc := assessment.NewService(src, assessment.WithBenchmark(c.Benchmark))

			var p *assessment.Profile
			switch {
			case answers != "":
				set, err := parseChoices(answers)
				if err != nil {
					return err
				}
				if p, err = svc.Assess(set, time.Now()); err != nil {
					return err
				}
			case tier != "":
				t, err := questionnaire.ParseTier(tier)
				if err != nil {
					return err
				}
				p = assessment.ProfileFor(t, horizon, time.Now())
			default:
				return fmt.Errorf("one of --tier or --answers is required")
			}

			r, err := svc.Simulate(cmd.Context(), p, investment)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, assessment.FormatProfile(p))
			fmt.Fprintln(out)
			fmt.Fprintln(out, assessment.FormatReport(r))
			return nil
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "risk tier, e.g. \"Moderately Aggressive\"")
	cmd.Flags().StringVar(&answers, "answers", "", "comma separated option numbers, instead of --tier")
	cmd.Flags().StringVar(&horizon, "horizon", finance.HorizonMoreThanTen, "investment horizon label used with --tier")
	cmd.Flags().Float64Var(&investment, "investment", assessment.DefaultInvestment, "initial investment in USD")
	cmd.Flags().StringVar(&pricesPath, "prices", "", "CSV of adjusted closes (date,SYM1,SYM2,...) instead of Yahoo")
	return cmd
}

// parseChoices reads "1,2,5,..." into an answer set.
func parseChoices(s string) (questionnaire.AnswerSet, error) {
	parts := strings.Split(s, ",")
	set := questionnaire.NewAnswerSet(len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: answer %d: %q is not a number", questionnaire.ErrInvalidAnswer, i+1, p)
		}
		set[i] = questionnaire.Choice(n)
	}
	return set, nil
}
