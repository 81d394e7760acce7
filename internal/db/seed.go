package db

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedConn is the slice of pgx.Tx the seed touches, kept narrow so the
// count guard can be exercised without a live database.
type seedConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ParseCountries reads a pipe-delimited reference file and returns the
// country names (field 2 of each record). Blank and malformed lines are
// skipped.
func ParseCountries(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		names = append(names, fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// SeedCountries populates the countries reference table from path. The whole
// seed runs in one transaction and is skipped when rows already exist, so
// repeated startups never duplicate data and an interrupted seed leaves the
// table empty rather than half-filled.
func SeedCountries(ctx context.Context, pool *pgxpool.Pool, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open countries file: %w", err)
	}
	defer f.Close()

	names, err := ParseCountries(f)
	if err != nil {
		return fmt.Errorf("parse countries file: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("countries file %s contains no records", path)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := seedInto(ctx, tx, names); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// seedInto inserts the reference rows unless the table already holds any,
// so re-running the seed leaves the row set untouched.
func seedInto(ctx context.Context, conn seedConn, names []string) error {
	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM countries`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, name := range names {
		if _, err := conn.Exec(ctx, `INSERT INTO countries(name) VALUES($1)`, name); err != nil {
			return err
		}
	}
	return nil
}
