package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/taskhub-be/internal/database"
	"github.com/isdelr/taskhub-be/internal/models"
)

// Entity is implemented by pointers to record kinds that embed models.Record.
type Entity[T any] interface {
	*T
	Meta() *models.Record
}

// Filter is an equality filter keyed by JSON field name.
type Filter map[string]any

// Patch mutates a loaded record during Update.
type Patch[T any] func(rec *T) error

// Schema binds a record kind to its table.
type Schema[T any] struct {
	Table string
	// Columns lists the data columns stored after id, created_at and updated_at.
	Columns []string
	// Fields maps filterable JSON field names to columns.
	Fields map[string]string
	// Values returns the column values of rec in Columns order.
	Values func(rec *T) []any
	// Targets returns scan destinations in Columns order.
	Targets func(rec *T) []any
	// Prepare applies defaults and validation before a write.
	Prepare func(rec *T, isNew bool) error
	// Conflict is the client message for a unique constraint violation.
	Conflict string
}

// RecordServiceProvider defines the interface for a store of one record kind.
type RecordServiceProvider[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
	Read(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, patch Patch[T]) (T, error)
	Delete(ctx context.Context, id string) (T, error)
	GetAll(ctx context.Context, filter Filter) ([]T, error)
	FindOne(ctx context.Context, query Filter) (*T, error)
}

// RecordService provides CRUD operations for one record kind.
type RecordService[T any, P Entity[T]] struct {
	db     *database.DB
	schema Schema[T]
	now    func() time.Time
}

// NewRecordService creates a RecordService bound to schema.
func NewRecordService[T any, P Entity[T]](db *database.DB, schema Schema[T]) *RecordService[T, P] {
	return &RecordService[T, P]{
		db:     db,
		schema: schema,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *RecordService[T, P]) selectSQL() string {
	cols := append([]string{"id", "created_at", "updated_at"}, s.schema.Columns...)
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), s.schema.Table)
}

func (s *RecordService[T, P]) scan(row interface{ Scan(...any) error }) (T, error) {
	var rec T
	meta := P(&rec).Meta()
	targets := append([]any{&meta.ID, &meta.CreatedAt, &meta.UpdatedAt}, s.schema.Targets(&rec)...)
	if err := row.Scan(targets...); err != nil {
		return rec, err
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	meta.UpdatedAt = meta.UpdatedAt.UTC()
	return rec, nil
}

// writeError maps unique violations onto a ValidationError.
func (s *RecordService[T, P]) writeError(err error) error {
	if s.db.Dialect.IsUniqueViolation(err) {
		msg := s.schema.Conflict
		if msg == "" {
			msg = "record already exists"
		}
		return invalid(msg)
	}
	return err
}

// Create assigns identity fields, validates, and inserts rec.
func (s *RecordService[T, P]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	meta := P(&rec).Meta()
	now := s.now()
	meta.ID = uuid.NewString()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if s.schema.Prepare != nil {
		if err := s.schema.Prepare(&rec, true); err != nil {
			return zero, err
		}
	}

	cols := append([]string{"id", "created_at", "updated_at"}, s.schema.Columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.schema.Table, strings.Join(cols, ", "), placeholders)
	args := append([]any{meta.ID, meta.CreatedAt, meta.UpdatedAt}, s.schema.Values(&rec)...)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return zero, s.writeError(err)
	}
	return rec, nil
}

// Read retrieves a record by id. Ids that are not UUIDs cannot exist and yield ErrNotFound.
func (s *RecordService[T, P]) Read(ctx context.Context, id string) (T, error) {
	return s.get(ctx, s.db, id, false)
}

// get loads one record. With lock set it holds the row until q's transaction ends.
func (s *RecordService[T, P]) get(ctx context.Context, q database.Querier, id string, lock bool) (T, error) {
	var zero T
	if !isRecordID(id) {
		return zero, ErrNotFound
	}

	query := s.selectSQL() + " WHERE id = ?"
	if lock {
		query += s.db.Dialect.LockClause()
	}
	rec, err := s.scan(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return rec, nil
}

// Update loads the record, applies patch, re-validates and writes it back in one transaction.
func (s *RecordService[T, P]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	var zero T
	if !isRecordID(id) {
		return zero, ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	rec, err := s.get(ctx, tx, id, true)
	if err != nil {
		return zero, err
	}
	orig := *P(&rec).Meta()

	if err := patch(&rec); err != nil {
		return zero, err
	}

	meta := P(&rec).Meta()
	meta.ID = orig.ID
	meta.CreatedAt = orig.CreatedAt
	meta.UpdatedAt = s.now()

	if s.schema.Prepare != nil {
		if err := s.schema.Prepare(&rec, false); err != nil {
			return zero, err
		}
	}

	sets := make([]string, 0, len(s.schema.Columns)+1)
	for _, col := range s.schema.Columns {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "updated_at = ?")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.schema.Table, strings.Join(sets, ", "))
	args := append(s.schema.Values(&rec), meta.UpdatedAt, meta.ID)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return zero, s.writeError(err)
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return rec, nil
}

// Delete removes the record and returns it as it was.
func (s *RecordService[T, P]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	if !isRecordID(id) {
		return zero, ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	rec, err := s.get(ctx, tx, id, true)
	if err != nil {
		return zero, err
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.schema.Table), id)
	if err != nil {
		return zero, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return rec, nil
}

// GetAll returns every record matching filter, oldest first. It never returns a nil slice.
func (s *RecordService[T, P]) GetAll(ctx context.Context, filter Filter) ([]T, error) {
	where, args, err := s.where(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.selectSQL()+where+" ORDER BY created_at, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindOne returns the first record matching query, or nil when none does.
func (s *RecordService[T, P]) FindOne(ctx context.Context, query Filter) (*T, error) {
	where, args, err := s.where(query)
	if err != nil {
		return nil, err
	}

	rec, err := s.scan(s.db.QueryRowContext(ctx, s.selectSQL()+where+" ORDER BY created_at, id LIMIT 1", args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *RecordService[T, P]) where(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		col, ok := s.schema.Fields[k]
		if !ok {
			return "", nil, fmt.Errorf("cannot filter %s by %q", s.schema.Table, k)
		}
		conds = append(conds, col+" = ?")
		args = append(args, filter[k])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func isRecordID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
