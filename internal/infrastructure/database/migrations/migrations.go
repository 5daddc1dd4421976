// Package migrations carries the ledger schema and applies it in file-name order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Apply runs every embedded migration. The scripts are idempotent, so re-running is safe.
func Apply(ctx context.Context, db postgresql.Client) ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err = db.Exec(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return names, nil
}
