package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/rfmelo/gastos/pkg/classifier"
	"github.com/rfmelo/gastos/pkg/config"
	"github.com/rfmelo/gastos/pkg/csv"
	"github.com/rfmelo/gastos/pkg/ledger"
	"github.com/rfmelo/gastos/pkg/models"
	"github.com/rfmelo/gastos/pkg/parser"
	"github.com/rfmelo/gastos/pkg/stats"
	"github.com/rfmelo/gastos/pkg/store"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "gastos",
	Short: "Personal finance ledger with automatic categorization",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

// app bundles everything a command needs; built per invocation.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	svc    *ledger.Service
	gate   *classifier.Service
	parser *parser.Parser
}

func (a *app) close() {
	if err := a.gate.Close(); err != nil {
		a.logger.Warn("failed to close classification cache", "err", err)
	}
}

func setup(cmd *cobra.Command) (*app, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "gastos",
	})

	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	var backend classifier.Classifier
	switch cfg.Backend {
	case "rules":
		backend, err = classifier.LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
	default:
		backend = classifier.NewZeroShot(cfg)
	}

	gate, err := classifier.NewService(backend, cfg, logger)
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.LedgerPath, logger)
	return &app{
		cfg:    cfg,
		logger: logger,
		svc:    ledger.New(st, gate, logger),
		gate:   gate,
		parser: parser.New(logger),
	}, nil
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a single transaction to the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		date, err := time.Parse(models.DateLayout, addDate)
		if err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", addDate)
		}
		category := models.Unclassified
		if addCategory != "" {
			c, ok := models.ParseCategory(addCategory)
			if !ok {
				return fmt.Errorf("unknown category %q", addCategory)
			}
			category = c
		}
		if category == models.Unclassified && addClassify {
			category = a.gate.Classify(addDescription)
		}

		l, err := a.svc.Store().Load()
		if err != nil {
			return err
		}
		l, err = a.svc.Append(l, models.Transaction{
			Date:        date,
			Description: addDescription,
			Amount:      addAmount,
			Category:    category,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added, ledger now holds %d records\n", len(l))
		return nil
	},
}

var (
	addDate        string
	addDescription string
	addAmount      float64
	addCategory    string
	addClassify    bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Validate and merge CSV or XLS files into the ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		var imported models.Ledger
		switch {
		case importManifest != "":
			manifest, err := models.ManifestFromFile(importManifest)
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			for _, f := range manifest.Imports {
				records, err := f.Transactions(a.parser)
				if err != nil {
					return err
				}
				imported = append(imported, records...)
			}
		case len(args) == 1:
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			imported, err = a.parser.ProcessBytes(data, args[0])
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("provide a file argument or --manifest")
		}

		existing, err := a.svc.Store().Load()
		if err != nil {
			return err
		}
		merged, duplicates, err := a.svc.MergeImport(existing, imported)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d records (%d duplicates skipped), ledger now holds %d\n",
			len(merged)-len(existing), duplicates, len(merged))
		return nil
	},
}

var importManifest string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print ledger records, optionally filtered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		l, err := a.svc.Store().Load()
		if err != nil {
			return err
		}
		filtered, err := cliFilters.apply(l)
		if err != nil {
			return err
		}

		for i, t := range filtered {
			fmt.Printf("%4d  %s  %s  %10.2f  %-12s  %s\n",
				i, t.ID(), t.Date.Format(models.DateLayout), t.Amount, t.Category, t.Description)
		}
		fmt.Printf("%d records\n", len(filtered))
		return nil
	},
}

var setCategoryCmd = &cobra.Command{
	Use:   "set-category <index|id> <category>",
	Short: "Change the category of one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		category, ok := models.ParseCategory(args[1])
		if !ok {
			return fmt.Errorf("unknown category %q", args[1])
		}

		l, err := a.svc.Store().Load()
		if err != nil {
			return err
		}

		var updated bool
		if index, convErr := strconv.Atoi(args[0]); convErr == nil {
			_, updated, err = a.svc.UpdateCategory(l, index, category)
		} else {
			_, updated, err = a.svc.UpdateCategoryByID(l, args[0], category)
		}
		if err != nil {
			return err
		}
		if !updated {
			fmt.Printf("no record matched %q, ledger unchanged\n", args[0])
			return nil
		}
		fmt.Println("category updated")
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every unclassified record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		l, err := a.svc.Store().Load()
		if err != nil {
			return err
		}

		_, classified, err := a.svc.ClassifyPending(l, func(done, total int) {
			fmt.Printf("\rclassifying %d/%d", done, total)
		})
		if err != nil {
			return err
		}
		if classified > 0 {
			fmt.Println()
		}
		fmt.Printf("%d records classified\n", classified)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate statistics, optionally filtered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		l, err := a.svc.Store().Load()
		if err != nil {
			return err
		}
		filtered, err := cliFilters.apply(l)
		if err != nil {
			return err
		}

		printStats(filtered)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full ledger as CSV to stdout or a file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		l, err := a.svc.Store().Load()
		if err != nil {
			return err
		}

		out := csv.Create(l, nil)
		if exportPath == "" {
			fmt.Print(string(out))
			return nil
		}
		if err := os.WriteFile(exportPath, out, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("exported %d records to %s\n", len(l), exportPath)
		return nil
	},
}

var exportPath string

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.category, "category", "", "Filter by category (All disables the filter)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.from, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.to, "to", "", "End date (YYYY-MM-DD, inclusive)")

	addCmd.Flags().StringVar(&addDate, "date", time.Now().Format(models.DateLayout), "Transaction date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Free-text description")
	addCmd.Flags().Float64Var(&addAmount, "amount", 0, "Amount (negative for expense)")
	addCmd.Flags().StringVar(&addCategory, "set", "", "Category (defaults to Unclassified)")
	addCmd.Flags().BoolVar(&addClassify, "classify", false, "Classify the description immediately")

	importCmd.Flags().StringVar(&importManifest, "manifest", "", "YAML manifest listing statement files to import")

	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(setCategoryCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
}

func printStats(l models.Ledger) {
	s := stats.Compute(l)
	bold := color.New(color.Bold)

	bold.Println("Summary")
	fmt.Printf("  expenses         %10.2f\n", s.TotalExpense)
	fmt.Printf("  income           %10.2f\n", s.TotalIncome)
	fmt.Printf("  balance          %10.2f\n", s.Balance)
	fmt.Printf("  monthly average  %10.2f\n", s.MonthlyAverageExpense)
	if s.TopExpenseCategory != "" {
		color.New(color.FgRed).Printf("  top expense      %10.2f  %s\n", s.TopExpenseAmount, s.TopExpenseCategory)
	}

	shares := stats.ByCategory(l)
	if len(shares) == 0 {
		return
	}
	fmt.Println()
	bold.Println("Distribution")
	for _, share := range shares {
		fmt.Printf("  %-12s  %10.2f  %5.1f%%\n", share.Category, share.Amount, share.Fraction*100)
	}
}

func main() {
	_ = gotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
