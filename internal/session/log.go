// Package session records login/logout events per principal type and
// derives session durations from paired events. One log file per principal
// type, append-only.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alialsharqawi/bank-backoffice/internal/clock"
	"github.com/alialsharqawi/bank-backoffice/internal/store"
)

type Action string

const (
	ActionLogin  Action = "LOGIN"
	ActionLogout Action = "LOGOUT"
)

// NoDuration is written on every record that is not a paired LOGOUT.
const NoDuration = "-"

// Principal identifies who logged in or out. Permissions is the snapshot
// written to admin logs; client logs have no permissions column.
type Principal struct {
	ID          string
	DisplayName string
	Permissions int
}

// Entry is one raw log record. Permissions is empty in client logs.
type Entry struct {
	Date        string
	Time        string
	Action      Action
	PrincipalID string
	FullName    string
	Permissions string
	Duration    string
}

// Log owns one session-log file.
type Log struct {
	mu              sync.Mutex
	path            string
	clk             clock.Clock
	withPermissions bool
	logger          *slog.Logger
}

// NewAdminLog opens the admin session log; its records carry a permissions
// snapshot.
func NewAdminLog(path string, clk clock.Clock, logger *slog.Logger) *Log {
	return newLog(path, clk, true, logger)
}

// NewClientLog opens the client session log.
func NewClientLog(path string, clk clock.Clock, logger *slog.Logger) *Log {
	return newLog(path, clk, false, logger)
}

func newLog(path string, clk clock.Clock, withPermissions bool, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		path:            path,
		clk:             clk,
		withPermissions: withPermissions,
		logger:          logger.With("file", filepath.Base(path)),
	}
}

// Register appends one record. A LOGOUT first locates the principal's most
// recent LOGIN and writes the computed duration; everything else gets the
// placeholder.
func (l *Log) Register(ctx context.Context, p Principal, action Action) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.clk.Now()
	date := clock.FormatDate(now)
	tod := clock.FormatTime(now)

	duration := NoDuration
	if action == ActionLogout {
		lastLogin, err := l.lastLoginLocked(p.ID)
		if err != nil {
			return err
		}
		if lastLogin != "" {
			duration = Duration(lastLogin, date+" "+tod)
		}
	}

	fields := []string{date, tod, string(action), p.ID, p.DisplayName}
	if l.withPermissions {
		fields = append(fields, fmt.Sprintf("%d", p.Permissions))
	}
	fields = append(fields, duration)

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		l.logger.Error("open for append failed", "error", err)
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	defer file.Close()

	if _, err := file.WriteString(store.JoinFields(fields, store.LogSep) + "\n"); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return nil
}

// lastLoginLocked scans the log in file order and returns the "date time"
// of the principal's most recent LOGIN, or "" when there is none.
func (l *Log) lastLoginLocked(principalID string) (string, error) {
	entries, err := l.readLocked()
	if err != nil {
		return "", err
	}
	last := ""
	for _, e := range entries {
		if e.PrincipalID == principalID && e.Action == ActionLogin {
			last = e.Date + " " + e.Time
		}
	}
	return last, nil
}

// Entries returns every record in file order.
func (l *Log) Entries(ctx context.Context) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.readLocked()
}

// EntriesFor returns the records of one principal in file order.
func (l *Log) EntriesFor(ctx context.Context, principalID string) ([]Entry, error) {
	all, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.PrincipalID == principalID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *Log) readLocked() ([]Entry, error) {
	minFields := 6
	if l.withPermissions {
		minFields = 7
	}

	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		l.logger.Error("open for read failed", "error", err)
		return nil, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := store.SplitFields(scanner.Text(), store.LogSep)
		if len(fields) < minFields {
			continue
		}
		entry := Entry{
			Date:        fields[0],
			Time:        fields[1],
			Action:      Action(fields[2]),
			PrincipalID: fields[3],
			FullName:    fields[4],
		}
		if l.withPermissions {
			entry.Permissions = fields[5]
			entry.Duration = fields[6]
		} else {
			entry.Duration = fields[5]
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return entries, nil
}
