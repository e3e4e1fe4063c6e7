package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/conorfennell/knolcard/internal/domain"
)

// VersionedTable describes a live table and its append-only version twin.
// The version table has the same Columns plus versionId and timestamp.
type VersionedTable struct {
	Live    string
	Version string
	Key     string
	Columns []string
}

// Assignment sets one column in an update.
type Assignment struct {
	Column string
	Value  any
}

var (
	ContentTable = VersionedTable{
		Live:    "content",
		Version: "content_ver",
		Key:     "cardId",
		Columns: []string{"cardId", "textFront", "textBack"},
	}
	ScheduleTable = VersionedTable{
		Live:    "schedule",
		Version: "schedule_ver",
		Key:     "cardId",
		Columns: []string{"cardId", "updatedAt", "delay", "randomFactor", "nextAccessInMillis", "nextAccessAt"},
	}
)

// Update snapshots the row identified by key into the version table, stamped
// with ts, and then applies the assignments to the live row. It must run
// inside a transaction; any error leaves that transaction to be rolled back.
// Callers are responsible for skipping updates that change nothing.
func (t VersionedTable) Update(ctx context.Context, q DBTX, ts int64, key any, set ...Assignment) error {
	if len(set) == 0 {
		return fmt.Errorf("update of %s %v has no assignments", t.Live, key)
	}
	if err := t.capture(ctx, q, ts, key); err != nil {
		return err
	}

	clauses := make([]string, len(set))
	args := make([]any, 0, len(set)+1)
	for i, a := range set {
		clauses[i] = a.Column + " = ?"
		args = append(args, a.Value)
	}
	args = append(args, key)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.Live, strings.Join(clauses, ", "), t.Key)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %v: %w", t.Live, key, err)
	}
	if err := checkOneRow(res, "update of "+t.Live); err != nil {
		return fmt.Errorf("%w: %v", domain.VersioningIntegrity(t.Live, key, affected(res)), err)
	}
	return nil
}

// Delete snapshots the row identified by key into the version table and then
// removes it from the live table.
func (t VersionedTable) Delete(ctx context.Context, q DBTX, ts int64, key any) error {
	if err := t.capture(ctx, q, ts, key); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.Live, t.Key), key)
	if err != nil {
		return fmt.Errorf("failed to delete %s %v: %w", t.Live, key, err)
	}
	if err := checkOneRow(res, "delete of "+t.Live); err != nil {
		return fmt.Errorf("%w: %v", domain.VersioningIntegrity(t.Live, key, affected(res)), err)
	}
	return nil
}

// capture reads the current row and appends it to the version table.
// Exactly one row must be read and exactly one version row written.
func (t VersionedTable) capture(ctx context.Context, q DBTX, ts int64, key any) error {
	cols := strings.Join(t.Columns, ", ")
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", cols, t.Live, t.Key), key)
	if err != nil {
		return fmt.Errorf("failed to read %s %v: %w", t.Live, key, err)
	}
	defer rows.Close()

	var snapshots [][]any
	for rows.Next() {
		values := make([]any, len(t.Columns))
		ptrs := make([]any, len(t.Columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", t.Live, err)
		}
		snapshots = append(snapshots, values)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read %s %v: %w", t.Live, key, err)
	}
	rows.Close()

	if len(snapshots) != 1 {
		return domain.VersioningIntegrity(t.Version, key, int64(len(snapshots)))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)+1), ", ")
	query := fmt.Sprintf("INSERT INTO %s (timestamp, %s) VALUES (%s)", t.Version, cols, placeholders)
	args := append([]any{ts}, snapshots[0]...)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to version %s %v: %w", t.Live, key, err)
	}
	if err := checkOneRow(res, "insert into "+t.Version); err != nil {
		return fmt.Errorf("%w: %v", domain.VersioningIntegrity(t.Version, key, affected(res)), err)
	}
	return nil
}

func affected(res interface{ RowsAffected() (int64, error) }) int64 {
	n, _ := res.RowsAffected()
	return n
}
