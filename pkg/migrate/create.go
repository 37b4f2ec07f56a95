package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9]+`)
	fileNameRe    = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: keep to SQL that both sqlite3 and postgres accept
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- undo %[1]s
-- +goose StatementEnd
`

// slugify lowercases name and collapses anything outside [a-z0-9] to '_'.
func slugify(name string) string {
	return strings.Trim(slugInvalidRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// parseFileName splits <YYYYMMDDHHMMSS>_<slug>.sql.
func parseFileName(name string) (version, slug string, ok bool) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// CreateSQLMigration writes an empty goose migration stamped with now. The
// version is bumped a second at a time until it is free, and a slug that
// already exists in dir is refused.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir %q: %w", dir, err)
	}
	versions := map[string]bool{}
	for _, e := range entries {
		version, existing, ok := parseFileName(e.Name())
		if !ok {
			continue
		}
		if existing == slug {
			return "", fmt.Errorf("migration %q already exists as %s", slug, e.Name())
		}
		versions[version] = true
	}

	stamp := now.UTC()
	for versions[stamp.Format(versionLayout)] {
		stamp = stamp.Add(time.Second)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", stamp.Format(versionLayout), slug))
	if err := os.WriteFile(path, []byte(fmt.Sprintf(migrationTemplate, slug)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}
