package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"sweep_radar/migrations"
)

const usage = `Commands:
  up          Migrate to the latest version
  up-one      Migrate one version up
  down        Roll back one version
  status      Show migration status
  version     Show current version
  reset       Roll back all migrations`

type options struct {
	DatabasePath string `long:"db" env:"DB_PATH" default:"data.db" description:"SQLite database path"`
	Args         struct {
		Command string `positional-arg-name:"command" description:"up, up-one, down, status, version or reset"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[--db path] <command>\n\n" + usage
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	if err := run(context.Background(), opts.DatabasePath, opts.Args.Command); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opts.Args.Command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath, cmd string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	p, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		results, err := p.Up(ctx)
		printResults(results)
		return err
	case "up-one":
		res, err := p.UpByOne(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			fmt.Println("no migrations to apply")
			return nil
		}
		printResults([]*goose.MigrationResult{res})
		return err
	case "down":
		res, err := p.Down(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			fmt.Println("no migrations to roll back")
			return nil
		}
		printResults([]*goose.MigrationResult{res})
		return err
	case "reset":
		results, err := p.DownTo(ctx, 0)
		printResults(results)
		return err
	case "status":
		statuses, err := p.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%05d  %-8s  %-19s  %s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return nil
	case "version":
		v, err := p.GetDBVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	default:
		return fmt.Errorf("unknown command\n\n%s", usage)
	}
}

func printResults(results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fmt.Printf("%-4s %05d  %s  (%s)\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration)
	}
}
