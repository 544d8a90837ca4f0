package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/cmd/bootstrap"
	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/config"
	"garaadka-laundry/internal/infra/database/admin"
	"garaadka-laundry/internal/infra/database/migrations"
)

type options struct {
	Start             bool
	Stop              bool
	Seed              bool
	Update            bool
	DBCheck           bool
	DBDelete          bool
	DBBackup          bool
	BackupDestination string
	AuditCleanup      bool
	RetentionDays     int
}

func Execute() error {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}

	if !opts.anyOperation() {
		fmt.Println("No operation given. Use --help to list the available options.")
		return nil
	}

	if opts.Stop {
		return stopServer()
	}

	cfg, log, err := bootstrap.Environment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.requiresDatabase() {
		db, err := bootstrap.OpenDatabase(cfg.Databases, log)
		if err != nil {
			return err
		}
		err = runMaintenance(ctx, db, cfg, log, opts)
		bootstrap.CloseDatabase(db)
		if err != nil {
			return err
		}
	}

	if opts.Start {
		if err := startServer(ctx, cfg, log); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	return nil
}

func runMaintenance(ctx context.Context, db *gorm.DB, cfg config.Config, log *zap.Logger, opts options) error {
	if opts.Seed || opts.Update || opts.AuditCleanup {
		if err := bootstrap.Migrate(db); err != nil {
			return err
		}
	}

	manager := migrations.NewManager(db, log)

	if opts.Seed {
		if cfg.Databases.Driver != "postgres" {
			log.Warn("seed migrations hold postgres constraints; skipped", zap.String("driver", cfg.Databases.Driver))
		} else {
			applied, err := manager.ApplySeed(ctx)
			if err != nil {
				return fmt.Errorf("apply seed migrations: %w", err)
			}
			log.Info("seed migrations applied", zap.Strings("files", applied))
		}
	}

	if opts.Update {
		applied, err := manager.ApplyUpdate(ctx)
		if err != nil {
			return fmt.Errorf("apply update migrations: %w", err)
		}
		log.Info("update migrations applied", zap.Strings("files", applied))
	}

	if opts.DBCheck {
		status, err := admin.Check(ctx, db)
		if err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}
		log.Info("database reachable", zap.String("driver", status.Driver), zap.Strings("tables", status.Tables))
	}

	if opts.DBBackup {
		dest, err := admin.Backup(ctx, db, cfg.Databases, admin.BackupOptions{Destination: opts.BackupDestination})
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		log.Info("backup written", zap.String("destination", dest))
	}

	if opts.AuditCleanup {
		days := opts.RetentionDays
		if days == 0 {
			days = cfg.Audit.RetentionDays
		}
		svc := audit.NewService(db, audit.NewRepository(db), log, audit.Options{Topic: cfg.Outbox.Topic})
		deleted, err := svc.Cleanup(ctx, audit.Actor{EmpID: "system"}, days)
		if err != nil {
			return fmt.Errorf("audit cleanup failed: %w", err)
		}
		log.Info("audit cleanup finished", zap.Int64("deleted", deleted), zap.Int("retention_days", days))
	}

	if opts.DBDelete {
		if err := admin.DeleteAll(ctx, db); err != nil {
			return fmt.Errorf("drop tables failed: %w", err)
		}
		log.Info("all tables dropped")
	}
	return nil
}

func parseOptions(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("garaadka-laundry", pflag.ContinueOnError)
	fs.BoolVar(&opts.Start, "start", false, "Start the HTTP server")
	fs.BoolVar(&opts.Stop, "stop", false, "Stop a running server")
	fs.BoolVar(&opts.Seed, "migration-seed", false, "Apply seed migrations")
	fs.BoolVar(&opts.Update, "migration-update", false, "Apply update migrations")
	fs.BoolVar(&opts.DBCheck, "db-check", false, "Check database connectivity and list tables")
	fs.BoolVar(&opts.DBDelete, "db-delete", false, "Drop every table in the database")
	fs.BoolVar(&opts.DBBackup, "db-backup", false, "Back up the database")
	fs.StringVar(&opts.BackupDestination, "local", "", "Backup destination file")
	fs.BoolVar(&opts.AuditCleanup, "audit-cleanup", false, "Delete audit rows older than the retention window")
	fs.IntVar(&opts.RetentionDays, "retention-days", 0, "Retention window for --audit-cleanup (defaults to audit.retention_days)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.DBBackup && opts.BackupDestination == "" {
		return options{}, fmt.Errorf("--db-backup requires --local=<path>")
	}
	if opts.RetentionDays < 0 {
		return options{}, fmt.Errorf("--retention-days must be positive")
	}
	return opts, nil
}

func (o options) anyOperation() bool {
	return o.Start || o.Stop || o.requiresDatabase()
}

func (o options) requiresDatabase() bool {
	return o.Seed || o.Update || o.DBCheck || o.DBDelete || o.DBBackup || o.AuditCleanup
}
