package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written and where the embedded set is read from.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Commands lists the goose commands exposed through cmd/migrate. "version"
// prints the current version, or migrates to one when a target is given.
var Commands = []string{"up", "up-by-one", "down", "redo", "reset", "status", "version"}

// IsCommand reports whether command is one of Commands.
func IsCommand(command string) bool {
	return slices.Contains(Commands, command)
}

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source resolves dir to a filesystem. The default directory maps to the
// embedded copy so binaries do not depend on their working directory.
func Source(dir string) fs.FS {
	if dir == "" || dir == DefaultDir {
		return Embedded()
	}
	return os.DirFS(dir)
}

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migration source is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes command and returns one human readable line per migration it
// touched (or per migration known, for status).
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, command string) ([]string, error) {
	if !IsCommand(command) {
		return nil, fmt.Errorf("unsupported goose command %q", command)
	}
	provider, err := newProvider(db, fsys)
	if err != nil {
		return nil, err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		return describe(results), wrap(command, err)
	case "up-by-one":
		result, err := provider.UpByOne(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			return nil, nil
		}
		return describe([]*goose.MigrationResult{result}), wrap(command, err)
	case "down":
		result, err := provider.Down(ctx)
		return describe([]*goose.MigrationResult{result}), wrap(command, err)
	case "redo":
		down, err := provider.Down(ctx)
		if err != nil {
			return describe([]*goose.MigrationResult{down}), wrap(command, err)
		}
		up, err := provider.UpByOne(ctx)
		return describe([]*goose.MigrationResult{down, up}), wrap(command, err)
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		return describe(results), wrap(command, err)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return nil, wrap(command, err)
		}
		lines := make([]string, 0, len(statuses))
		for _, st := range statuses {
			applied := "-"
			if !st.AppliedAt.IsZero() {
				applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			lines = append(lines, fmt.Sprintf("%-8s %-19s %s", st.State, applied, st.Source.Path))
		}
		return lines, nil
	default:
		current, err := provider.GetDBVersion(ctx)
		if err != nil {
			return nil, wrap(command, err)
		}
		return []string{fmt.Sprintf("version %d", current)}, nil
	}
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, targetVersion string) ([]string, error) {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil || target < 0 {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", targetVersion)
	}
	provider, err := newProvider(db, fsys)
	if err != nil {
		return nil, err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	return describe(results), wrap(fmt.Sprintf("migrate to %d", target), err)
}

func describe(results []*goose.MigrationResult) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-4s %s (%s)", r.Direction, r.Source.Path, r.Duration.Round(time.Millisecond)))
	}
	return lines
}

func wrap(command string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("goose %s: %w", command, err)
}
