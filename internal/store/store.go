// Package store maps an in-memory record list to a single flat file and
// back, one record per line, one entity type per file. Updates and deletes
// rewrite the whole file; brand-new records are appended. Deleted records
// are tombstoned in memory and dropped on the next rewrite.
package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStorageUnavailable wraps any file error other than a missing file
	// on read. The original system swallowed these silently; here they are
	// logged and surfaced.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Record is the capability set a stored entity must provide.
type Record interface {
	Key() string
	Deleted() bool
	SetDeleted(bool)
}

// Codec converts a record to and from its one-line file form. Unmarshal
// runs field decryption; Marshal runs field encryption.
type Codec[T Record] struct {
	Marshal   func(T) (string, error)
	Unmarshal func(string) (T, error)
}

// File owns one data file. All access is serialized by an internal mutex:
// SaveAll truncates and rewrites, so the single-writer-per-file contract is
// load-bearing.
type File[T Record] struct {
	mu     sync.Mutex
	path   string
	codec  Codec[T]
	logger *slog.Logger
}

func NewFile[T Record](path string, codec Codec[T], logger *slog.Logger) *File[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &File[T]{
		path:   path,
		codec:  codec,
		logger: logger.With("file", filepath.Base(path)),
	}
}

func (f *File[T]) Path() string { return f.path }

// LoadAll reads every record in file order. A missing file means an empty
// store, not an error.
func (f *File[T]) LoadAll(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadAllLocked(ctx)
}

func (f *File[T]) loadAllLocked(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		f.logger.Error("open for read failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	defer file.Close()

	var records []T
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		record, err := f.codec.Unmarshal(line)
		if err != nil {
			return nil, fmt.Errorf("decode line %d of %s: %w", len(records)+1, f.path, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		f.logger.Error("read failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return records, nil
}

// SaveAll rewrites the file from scratch, skipping tombstoned records. This
// is the only place a delete becomes durable.
func (f *File[T]) SaveAll(ctx context.Context, records []T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveAllLocked(ctx, records)
}

func (f *File[T]) saveAllLocked(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		f.logger.Error("open for rewrite failed", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	w := bufio.NewWriter(file)
	for _, record := range records {
		if record.Deleted() {
			continue
		}
		line, err := f.codec.Marshal(record)
		if err != nil {
			file.Close()
			return fmt.Errorf("encode record %q: %w", record.Key(), err)
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// AppendOne writes exactly one record in append mode. Callers use it for
// brand-new records only, so the common add path avoids a full rewrite.
func (f *File[T]) AppendOne(ctx context.Context, record T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := f.codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", record.Key(), err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		f.logger.Error("open for append failed", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// Find scans records in file order and returns the first match. The second
// return value reports whether a match was found; a miss is not an error.
func (f *File[T]) Find(ctx context.Context, match func(T) bool) (T, bool, error) {
	var zero T

	records, err := f.LoadAll(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, record := range records {
		if match(record) {
			return record, true, nil
		}
	}
	return zero, false, nil
}

// Update replaces the stored record with the same key wholesale and
// rewrites the file. Returns ErrNotFound if no record carries the key.
func (f *File[T]) Update(ctx context.Context, record T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.loadAllLocked(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].Key() == record.Key() {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("update %q: %w", record.Key(), ErrNotFound)
	}
	return f.saveAllLocked(ctx, records)
}

// Delete tombstones the record with the given key and rewrites the file,
// which drops it. Returns ErrNotFound if no record carries the key.
func (f *File[T]) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.loadAllLocked(ctx)
	if err != nil {
		return err
	}

	marked := false
	for i := range records {
		if records[i].Key() == key {
			records[i].SetDeleted(true)
			marked = true
			break
		}
	}
	if !marked {
		return fmt.Errorf("delete %q: %w", key, ErrNotFound)
	}
	return f.saveAllLocked(ctx, records)
}
