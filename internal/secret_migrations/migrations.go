// Package secret_migrations rewrites entity files from one field cipher to
// another. It exists so a cipher upgrade never strands data encrypted under
// the old scheme: run it once, then switch the configured scheme.
package secret_migrations

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alialsharqawi/bank-backoffice/internal/secret"
	"github.com/alialsharqawi/bank-backoffice/internal/store"
)

// secretField is the zero-based index of the encrypted field in both
// Admins.text and Clients.txt lines.
const secretField = 5

// MigrateFile re-encrypts the secret field of every record in path from
// the old cipher to the new one, rewriting the file in place. Returns the
// number of records rewritten. A missing file is a no-op.
func MigrateFile(ctx context.Context, path string, from, to secret.Cipher) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open %s: %w", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := store.SplitFields(line, store.FieldSep)
		if len(fields) <= secretField {
			file.Close()
			return 0, fmt.Errorf("%s line %d: too few fields", path, len(lines)+1)
		}

		plain, err := from.Decrypt(fields[secretField])
		if err != nil {
			file.Close()
			return 0, fmt.Errorf("%s line %d: %w", path, len(lines)+1, err)
		}
		fields[secretField] = to.Encrypt(plain)

		lines = append(lines, store.JoinFields(fields, store.FieldSep))
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	file.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("rewrite %s: %w", path, err)
	}
	w := bufio.NewWriter(out)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			out.Close()
			return 0, fmt.Errorf("rewrite %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return 0, fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("rewrite %s: %w", path, err)
	}

	return len(lines), nil
}

// Migrate runs MigrateFile over every entity file that carries a secret.
// Returns per-path record counts.
func Migrate(ctx context.Context, paths []string, from, to secret.Cipher) (map[string]int, error) {
	counts := make(map[string]int, len(paths))
	for _, path := range paths {
		n, err := MigrateFile(ctx, path, from, to)
		if err != nil {
			return counts, err
		}
		counts[path] = n
	}
	return counts, nil
}
