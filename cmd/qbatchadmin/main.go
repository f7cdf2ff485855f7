// Command qbatchadmin is an operator CLI for inspecting persisted job sets
// and managing the qbatch database.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/qbatch/qbatch/config"
	"github.com/qbatch/qbatch/internal/bootstrap"
	"github.com/qbatch/qbatch/internal/data"
	"github.com/qbatch/qbatch/internal/domain/model"
	apperrors "github.com/qbatch/qbatch/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must signal command failure to shell scripts
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Apply database migrations",
			run:         runMigrate,
		},
		"list": {
			name:        "list",
			description: "List persisted job sets, newest first",
			run:         runList,
		},
		"show": {
			name:        "show",
			description: "Show one job set with its per-job detail",
			run:         runShow,
		},
		"delete": {
			name:        "delete",
			description: "Delete a persisted job set by ID",
			run:         runDelete,
		},
		"health": {
			name:        "health",
			description: "Check database and Redis connectivity",
			run:         runHealth,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stderr, "usage: qbatchadmin <command> [flags]\n\ncommands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		if err := writef(w, "  %s\t%s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func connect(ctx *commandContext) (*sql.DB, error) {
	return bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
}

func closeDB(ctx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		ctx.Logger.Warn("close database", "error", err)
	}
}

func runMigrate(ctx *commandContext, _ []string) error {
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	migrateCtx, cancel := context.WithTimeout(ctx.Ctx, defaultMigrationTimeout)
	defer cancel()

	return bootstrap.RunMigrations(migrateCtx, db, ctx.Logger)
}

func runList(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum job sets to list")
	offset := fs.Int("offset", 0, "number of job sets to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	repo := data.NewPGJobSetRepo(db, data.JobSetRepoConfig{Logger: ctx.Logger})
	recs, err := repo.List(ctx.Ctx, *limit, *offset)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tNAME\tBACKEND\tJOBS\tFAILED\tCREATED\n"); err != nil {
		return err
	}
	for _, rec := range recs {
		failed := 0
		for i := range rec.Jobs {
			if rec.Jobs[i].SubmitError != "" {
				failed++
			}
		}
		if err := writef(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			rec.ID, rec.Name, rec.BackendName, len(rec.Jobs), failed,
			rec.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runShow(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	byName := fs.Bool("by-name", false, "treat the argument as a job set name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("show requires exactly one job set ID or name")
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	repo := data.NewPGJobSetRepo(db, data.JobSetRepoConfig{Logger: ctx.Logger})

	var rec *model.JobSetRecord
	if *byName {
		rec, err = repo.GetByName(ctx.Ctx, fs.Arg(0))
	} else {
		rec, err = repo.GetByID(ctx.Ctx, fs.Arg(0))
	}
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fmt.Errorf("job set %q not found", fs.Arg(0))
		}
		return err
	}

	if err := writef(os.Stdout, "ID:      %s\nName:    %s\nBackend: %s\nTags:    %s\nCreated: %s\n\n",
		rec.ID, rec.Name, rec.BackendName, strings.Join(rec.Tags, ", "),
		rec.CreatedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "POS\tJOB ID\tNAME\tEXPERIMENTS\tSUBMIT ERROR\n"); err != nil {
		return err
	}
	for i := range rec.Jobs {
		j := &rec.Jobs[i]
		jobID := j.JobID
		if jobID == "" {
			jobID = "-"
		}
		if err := writef(w, "%d\t%s\t%s\t%d-%d\t%s\n",
			j.Position, jobID, j.Name,
			j.StartIndex, j.StartIndex+j.ExperimentCount-1, j.SubmitError); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runDelete(ctx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("delete requires exactly one job set ID")
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	repo := data.NewPGJobSetRepo(db, data.JobSetRepoConfig{Logger: ctx.Logger})
	deleted, err := repo.Delete(ctx.Ctx, args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("job set %q not found", args[0])
	}

	return writef(os.Stdout, "deleted job set %s\n", args[0])
}

func runHealth(ctx *commandContext, _ []string) error {
	db, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeDB(ctx, db)

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			ctx.Logger.Warn("close redis client", "error", cerr)
		}
	}()

	if err := data.NewRedisCacheRepo(client).Health(ctx.Ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	return writef(os.Stdout, "database: ok\nredis: ok\n")
}
