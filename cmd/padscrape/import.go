package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/MainePadFinder/padfinder/internal/propertyimport"
	"github.com/spf13/cobra"
)

var (
	importCSV       string
	importDSN       string
	importNamespace string
	importDryRun    bool
	importLock      int64
	importLandlord  uint
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a scraper CSV into the database",
	Long: `Upserts every unit in the CSV. Units are identified by address and unit
label under --namespace, so re-importing a newer scrape updates rent and
availability in place and records rent changes in the price history.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCSV, "csv", "", "path to the scraper CSV (required)")
	importCmd.Flags().StringVar(&importDSN, "dsn", "", "Postgres DSN (default: env DATABASE_URL)")
	importCmd.Flags().StringVar(&importNamespace, "namespace", "", "UUID namespace for property keys (stable forever)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate only; no DB writes")
	importCmd.Flags().Int64Var(&importLock, "advisory-lock", 0, "Postgres advisory lock key, 0 = disabled")
	importCmd.Flags().UintVar(&importLandlord, "landlord", 0, "assign imported units to this landlord user id")
	_ = importCmd.MarkFlagRequired("csv")
}

func runImport(cmd *cobra.Command, args []string) error {
	ns := importNamespace
	if ns == "" {
		ns = os.Getenv("PADFINDER_IMPORT_NAMESPACE")
	}
	if ns == "" {
		return errors.New("--namespace not provided and PADFINDER_IMPORT_NAMESPACE not set")
	}
	dsn := importDSN
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" && !importDryRun {
		return errors.New("--dsn not provided and DATABASE_URL not set")
	}

	cfg := propertyimport.Config{
		CSVPath:      importCSV,
		DatabaseURL:  dsn,
		Namespace:    ns,
		DryRun:       importDryRun,
		AdvisoryLock: importLock,
	}
	if importLandlord != 0 {
		cfg.LandlordID = &importLandlord
	}

	res, err := propertyimport.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rows=%d units=%d inserted=%d updated=%d price_changes=%d\n",
		res.Rows, res.Units, res.Inserted, res.Updated, res.PriceChanges)
	return nil
}
