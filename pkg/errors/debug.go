package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// maxChainDepth bounds the walk over joined errors.
const maxChainDepth = 16

// ErrorDump is the log-friendly view of an error chain.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Retryable  bool
	Chain      []string
	Postgres   *PostgresDetail
}

// PostgresDetail is filled when a receipt write failed inside postgres.
type PostgresDetail struct {
	Code       string
	Message    string
	Detail     string
	Table      string
	Column     string
	Constraint string
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}
	d.Chain = walkChain(err, nil, 0)
	d.Postgres = postgresDetail(err)
	return d
}

// Fields flattens the dump into log fields, omitting empty postgres values.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
		fields["error_retryable"] = d.Retryable
	}
	if pg := d.Postgres; pg != nil {
		for key, val := range map[string]string{
			"pg_code":       pg.Code,
			"pg_message":    pg.Message,
			"pg_detail":     pg.Detail,
			"pg_table":      pg.Table,
			"pg_column":     pg.Column,
			"pg_constraint": pg.Constraint,
		} {
			if val != "" {
				fields[key] = val
			}
		}
	}
	return fields
}

// walkChain records every error reachable through Unwrap, including the
// branches of errors.Join and multierr values.
func walkChain(err error, out []string, depth int) []string {
	for err != nil && depth < maxChainDepth {
		out = append(out, fmt.Sprintf("%T: %v", err, err))
		depth++
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, branch := range multi.Unwrap() {
				out = walkChain(branch, out, depth)
			}
			return out
		}
		err = errors.Unwrap(err)
	}
	return out
}

func postgresDetail(err error) *PostgresDetail {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PostgresDetail{
			Code:       pgxErr.Code,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PostgresDetail{
			Code:       string(pqErr.Code),
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}
	return nil
}
