package commands

import (
	"context"
	"log/slog"
	"os"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/db"
	"resultsync-backend/internal/pipeline"
	"resultsync-backend/internal/scrapers/erp"
	"resultsync-backend/internal/store"
	"resultsync-backend/lib/restyutil"
	"resultsync-backend/lib/serviceutil"
	"resultsync-backend/pkg/migrations"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// openStore opens the configured database, creating the tables if needed.
func openStore(ctx context.Context, tel telemetry.API) (store.Store, *sqlx.DB) {
	driver, dsn := cfg.Database.Source()
	slog.Info("opening database", "driver", driver)

	database, err := migrations.OpenAndApply(ctx, driver, dsn, db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	return store.NewStore(db.New(database), db.NewMakeTx(database), db.NewMakeSnapshotTx(database), tel), database
}

// newPipeline wires the portal and the store into a pipeline, dumpDir may be
// empty to not dump portal traffic.
func newPipeline(sink pipeline.Sink, reg prometheus.Registerer, dumpDir string, tel telemetry.API) pipeline.Pipeline {
	clientOpts := cfg.Portal.ClientOptions()
	if dumpDir != "" {
		out, err := restyutil.NewDirOutput(dumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create http dump directory", err)
		}
		clientOpts.Dump = out
	}

	return pipeline.NewPipeline(
		erp.NewAuthenticator(cfg.Portal.BrowserOptions(), tel),
		erp.NewClient(clientOpts, tel),
		sink,
		pipeline.NewMetrics(reg),
		tel,
	)
}

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
