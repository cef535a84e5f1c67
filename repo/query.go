package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/htol/locallibrary/logger"
	"github.com/htol/locallibrary/validator"
)

var (
	authorColumns   = []string{"id", "first_name", "family_name", "date_of_birth", "date_of_death"}
	bookColumns     = []string{"id", "title", "summary", "isbn", "author_id"}
	genreColumns    = []string{"id", "name"}
	instanceColumns = []string{"id", "book_id", "imprint", "status", "due_back"}
)

func debugQuery(c Collection, query string, args []any) {
	logger.Debug("Store query", "collection", c, "sql", query, "args", len(args))
}

// projection keeps the requested columns that exist, always leading with id.
func projection(columns, fields []string) []string {
	if len(fields) == 0 {
		return columns
	}
	out := []string{"id"}
	for _, c := range columns {
		if c != "id" && slices.Contains(fields, c) {
			out = append(out, c)
		}
	}
	return out
}

func find[T any](ctx context.Context, r *Repo, c Collection, columns []string, q Query) ([]T, error) {
	sb := r.sb.Select(projection(columns, q.Fields)...).From(string(c))
	if q.Filter != nil {
		sb = sb.Where(q.Filter)
	}
	if len(q.Sort) > 0 {
		sb = sb.OrderBy(q.Sort...)
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", c, err)
	}

	debugQuery(c, query, args)
	out := make([]T, 0)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", c, err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, r *Repo, c Collection, columns []string, id string) (*T, error) {
	if err := validator.ValidateID(id); err != nil {
		return nil, err
	}

	query, args, err := r.sb.Select(columns...).From(string(c)).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", c, err)
	}

	debugQuery(c, query, args)
	var out T
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s %s: %w", c, id, err)
	}
	return &out, nil
}

func (r *Repo) Count(ctx context.Context, c Collection, filter Filter) (int, error) {
	sb := r.sb.Select("COUNT(*)").From(string(c))
	if filter != nil {
		sb = sb.Where(filter)
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s count: %w", c, err)
	}

	debugQuery(c, query, args)
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", c, err)
	}
	return n, nil
}

func insert(ctx context.Context, r *Repo, ext sqlx.ExtContext, c Collection, values map[string]any) error {
	query, args, err := r.sb.Insert(string(c)).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", c, err)
	}
	debugQuery(c, query, args)
	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", c, err)
	}
	return nil
}

// replace overwrites every column of the record with the given id.
func replace(ctx context.Context, r *Repo, ext sqlx.ExtContext, c Collection, id string, values map[string]any) error {
	if err := validator.ValidateID(id); err != nil {
		return err
	}

	query, args, err := r.sb.Update(string(c)).SetMap(values).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build %s update: %w", c, err)
	}
	debugQuery(c, query, args)
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", c, id, err)
	}
	return expectAffected(res, c, id)
}

func remove(ctx context.Context, r *Repo, ext sqlx.ExtContext, c Collection, id string) error {
	if err := validator.ValidateID(id); err != nil {
		return err
	}

	query, args, err := r.sb.Delete(string(c)).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build %s delete: %w", c, err)
	}
	debugQuery(c, query, args)
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c, id, err)
	}
	return expectAffected(res, c, id)
}

func expectAffected(res sql.Result, c Collection, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected on %s %s: %w", c, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *Repo) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
