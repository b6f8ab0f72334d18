package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/schema"
)

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// Postgres stores records as rows of a table whose columns are the fields.
// The table's catalog entry doubles as the live schema.
type Postgres struct {
	pool     *pgxpool.Pool
	table    string
	keyField string
	idColumn string
}

// NewPostgres creates a store over table, keyed by keyField. When the table
// has an "id" column with no default, Create fills it with a UUIDv7.
func NewPostgres(pool *pgxpool.Pool, table, keyField string) *Postgres {
	return &Postgres{pool: pool, table: table, keyField: keyField, idColumn: "id"}
}

type pgColumn struct {
	Name       string
	DataType   string
	NotNull    bool
	HasDefault bool
}

// FindOne implements reconcile.Store.
func (p *Postgres) FindOne(ctx context.Context, key string) (domain.Record, error) {
	q := fmt.Sprintf(`SELECT to_jsonb(t) FROM %s AS t WHERE %s = $1`, pgIdent(p.table), pgIdent(p.keyField))

	var rec map[string]any
	err := p.pool.QueryRow(ctx, q, key).Scan(&rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", p.keyField, key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", p.table, err)
	}
	return domain.Record(rec), nil
}

// Create implements reconcile.Store. Keys without a matching column are
// dropped, like fields outside a strict document schema.
func (p *Postgres) Create(ctx context.Context, rec domain.Record) error {
	cols, err := p.columns(ctx)
	if err != nil {
		return err
	}

	row := onlyColumns(rec, cols)
	for _, c := range cols {
		if c.Name == p.idColumn && !c.HasDefault && generatedIDTypes[c.DataType] && row.IsBlank(c.Name) {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate id: %w", err)
			}
			row[c.Name] = id.String()
		}
	}

	names := row.Keys()
	idents := make([]string, len(names))
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		idents[i] = pgIdent(n)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[n]
	}

	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		pgIdent(p.table), strings.Join(idents, ", "), strings.Join(placeholders, ", "))
	if _, err := p.pool.Exec(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert %s: %w", p.table, err)
	}
	return nil
}

// Save implements reconcile.Store. All changes go out in one UPDATE.
func (p *Postgres) Save(ctx context.Context, key string, changes domain.Record) error {
	cols, err := p.columns(ctx)
	if err != nil {
		return err
	}
	changes = onlyColumns(changes, cols)
	if len(changes) == 0 {
		return nil
	}
	names := changes.Keys()
	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, n := range names {
		sets[i] = fmt.Sprintf("%s = $%d", pgIdent(n), i+1)
		args = append(args, changes[n])
	}
	args = append(args, key)

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d`,
		pgIdent(p.table), strings.Join(sets, ", "), pgIdent(p.keyField), len(args))
	tag, err := p.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", p.table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", p.keyField, key, apperrors.ErrNotFound)
	}
	return nil
}

// generatedIDTypes are the id column types a UUIDv7 string can fill.
var generatedIDTypes = map[string]bool{
	"uuid":              true,
	"text":              true,
	"character varying": true,
}

func onlyColumns(rec domain.Record, cols []pgColumn) domain.Record {
	out := make(domain.Record, len(rec))
	for _, c := range cols {
		if v, ok := rec[c.Name]; ok {
			out[c.Name] = v
		}
	}
	return out
}

// Describe implements schema.Provider from the table's catalog entry.
// NOT NULL columns without a default carry the static required flag; CHECK
// constraints that reject empty or null values add a required validator.
func (p *Postgres) Describe(ctx context.Context) (schema.Description, error) {
	cols, err := p.columns(ctx)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found: %w", p.table, apperrors.ErrNoSchema)
	}

	checked, err := p.requiredChecks(ctx)
	if err != nil {
		return nil, err
	}

	paths := make(schema.Static, 0, len(cols))
	for _, c := range cols {
		path := schema.Path{
			Name:     c.Name,
			Type:     c.DataType,
			Required: c.NotNull && !c.HasDefault,
		}
		if _, ok := checked[c.Name]; ok {
			path.Validators = []schema.Validator{{Kind: schema.ValidatorRequired, Message: "check constraint"}}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (p *Postgres) columns(ctx context.Context) ([]pgColumn, error) {
	rows, err := p.pool.Query(ctx, `
SELECT column_name, data_type, is_nullable = 'NO', column_default IS NOT NULL
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`, p.table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", p.table, err)
	}
	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (pgColumn, error) {
		var c pgColumn
		err := row.Scan(&c.Name, &c.DataType, &c.NotNull, &c.HasDefault)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", p.table, err)
	}
	return cols, nil
}

func (p *Postgres) requiredChecks(ctx context.Context) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx, `
SELECT pg_get_constraintdef(c.oid)
FROM pg_constraint c
WHERE c.conrelid = to_regclass($1) AND c.contype = 'c'`, pgIdent(p.table))
	if err != nil {
		return nil, fmt.Errorf("read check constraints of %s: %w", p.table, err)
	}
	defs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read check constraints of %s: %w", p.table, err)
	}

	out := make(map[string]struct{})
	for _, def := range defs {
		if col, ok := requiredColumnFromCheck(def); ok {
			out[col] = struct{}{}
		}
	}
	return out, nil
}

// Shapes of pg_get_constraintdef output that amount to "value required".
var requiredCheckPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^CHECK \(+"?(\w+)"?\)?(?:::[\w ]+)? <> ''(?:::[\w ]+)?\)+$`),
	regexp.MustCompile(`^CHECK \(+"?(\w+)"?\)? IS NOT NULL\)+$`),
	regexp.MustCompile(`^CHECK \(+(?:char_)?length\(\(?"?(\w+)"?\)?(?:::[\w ]+)?\) > 0\)+$`),
}

func requiredColumnFromCheck(def string) (string, bool) {
	for _, re := range requiredCheckPatterns {
		if m := re.FindStringSubmatch(def); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func pgIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
