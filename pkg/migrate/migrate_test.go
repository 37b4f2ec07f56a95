package migrate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestUpEmbeddedCreatesReceipts(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, UpEmbedded(context.Background(), db, DialectSQLite))
	require.True(t, tableExists(t, db, "settlement_receipts"))

	// re-running is a no-op
	require.NoError(t, UpEmbedded(context.Background(), db, DialectSQLite))
}

func TestRunUpAndDownFromDisk(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, DialectSQLite, "migrations", "up"))
	require.True(t, tableExists(t, db, "settlement_receipts"))

	require.NoError(t, Run(ctx, db, DialectSQLite, "migrations", "down"))
	require.False(t, tableExists(t, db, "settlement_receipts"))
}

func TestRunRejectsUnknownDialect(t *testing.T) {
	db := openSQLite(t)
	require.Error(t, Run(context.Background(), db, "mysql", "migrations", "up"))
	require.Error(t, UpEmbedded(context.Background(), nil, DialectSQLite))
}

func TestReceiptsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_settlement_receipts.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS settlement_receipts",
		"CHECK (kind IN ('purchase', 'sale'))",
		"CHECK (units_settled >= 0)",
		"DROP TABLE IF EXISTS settlement_receipts",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDir(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Receipt Notes!", now)
	require.NoError(t, err)
	require.Equal(t, "20260302100000_add_receipt_notes.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))

	second, err := CreateSQLMigration(dir, "index receipts by session", now)
	require.NoError(t, err)
	require.Equal(t, "20260302100001_index_receipts_by_session.sql", filepath.Base(second))

	_, err = CreateSQLMigration(dir, "add receipt notes", now.Add(time.Hour))
	require.Error(t, err, "slug already taken")

	_, err = CreateSQLMigration(dir, "!!!", now)
	require.Error(t, err)
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\nCREATE TABLE notes (id BIGSERIAL, meta JSONB);\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_notes.sql"), []byte(body), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)
	require.Contains(t, err.Error(), "JSONB")
	require.Contains(t, err.Error(), "SERIAL")
	require.Contains(t, err.Error(), "+goose Down")
}

func TestValidateDirIgnoresKeywordsInComments(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- no JSONB here\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_comment.sql"), []byte(body), 0o644))
	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_broken.sql"), []byte(body), 0o644))
	require.Error(t, ValidateDir(dir))
}
