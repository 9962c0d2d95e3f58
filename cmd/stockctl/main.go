// Command stockctl runs maintenance tasks against the inventory database.
package main

import (
	"fmt"
	"os"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/export"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/pkg/database"
	applog "go-pos-inventory/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type env struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *gorm.DB
	reports service.ReportService
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dsn := c.String("dsn"); dsn != "" {
		cfg.Database.URL = dsn
	}
	if driver := c.String("driver"); driver != "" {
		cfg.Database.Driver = driver
	}
	log := applog.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN(), log)
	if err != nil {
		return nil, err
	}
	reports := service.NewReportService(
		db,
		repository.NewProductRepo(db),
		repository.NewMovementRepo(db),
		export.NewFileExporter(cfg.Server.ExportsDir),
		log,
	)
	return &env{cfg: cfg, log: log, db: db, reports: reports}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func migrateCmd(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := database.Migrate(e.db); err != nil {
		return err
	}
	e.log.Info("schema up to date")
	return nil
}

func lowStockCmd(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	rows, err := e.reports.LowStockRows(c.Context)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if path := c.String("csv"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.WriteLowStock(out, rows)
}

func reconcileCmd(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	discrepancies, err := e.reports.Reconcile(c.Context)
	if err != nil {
		return err
	}
	for _, d := range discrepancies {
		fmt.Fprintf(c.App.Writer, "%s\t%s\tstock=%d\tledger=%d\n",
			d.Product.Barcode, d.Product.Name, d.Product.StockQty, d.LedgerSum)
	}
	if len(discrepancies) > 0 {
		return cli.Exit(fmt.Sprintf("%d product(s) out of balance", len(discrepancies)), 1)
	}
	fmt.Fprintln(c.App.Writer, "ledger balanced")
	return nil
}

func main() {
	app := &cli.App{
		Name:  "stockctl",
		Usage: "inventory maintenance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "driver", Usage: "database driver (postgres, sqlite)", EnvVars: []string{"DB_DRIVER"}},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN, overrides DATABASE_URL"},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or update the schema",
				Action: migrateCmd,
			},
			{
				Name:  "low-stock",
				Usage: "print the low-stock report as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "csv", Usage: "write to `FILE` instead of stdout"},
				},
				Action: lowStockCmd,
			},
			{
				Name:   "reconcile",
				Usage:  "compare stock_qty with the movement ledger",
				Action: reconcileCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("stockctl failed")
	}
}
