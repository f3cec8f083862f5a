package cookiedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).

	"github.com/bnema/sso-harvest/internal/adapters/profiles"
	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

var (
	_ ports.CookieStoreReader = (*Reader)(nil)

	ErrNoDatabase = errors.New("cookie database not found")
)

// Reader scans a profile's cookie database without decrypting anything.
// The live database is locked while the browser runs, so a snapshot copy is
// queried instead.
type Reader struct {
	UserDataDir string
}

func NewReader(userDataDir string) *Reader {
	return &Reader{UserDataDir: userDataDir}
}

func (r *Reader) ReadCookies(ctx context.Context, profile domain.ProfileID, domains []string, name string) ([]domain.StoredCookie, error) {
	dbPath, ok := profiles.CookieDB(r.UserDataDir, profile)
	if !ok {
		return nil, fmt.Errorf("%w for profile %q", ErrNoDatabase, profile)
	}

	snapshot, cleanup, err := openSnapshot(dbPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", dbPath, err)
	}
	defer cleanup()

	db, err := openDB(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	cookies, err := queryCookies(ctx, db, domains, name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", dbPath, err)
	}
	for i := range cookies {
		cookies[i].Profile = profile
	}
	return cookies, nil
}

func openSnapshot(dbPath string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "ssoh-cookies-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	target := filepath.Join(dir, "Cookies")
	if err := copyFile(dbPath, target); err != nil {
		cleanup()
		return "", nil, err
	}
	// Recent writes may still sit in the WAL sidecars.
	_ = copyFileIfExists(dbPath+"-wal", target+"-wal")
	_ = copyFileIfExists(dbPath+"-shm", target+"-shm")

	return target, cleanup, nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func queryCookies(ctx context.Context, db *sql.DB, domains []string, name string) ([]domain.StoredCookie, error) {
	where, args := hostWhereClause(domains)
	if name != "" {
		where = "(" + where + ") AND name = ?"
		args = append(args, name)
	}

	query := `SELECT host_key, name, path, value, encrypted_value FROM cookies WHERE ` + where + ` ORDER BY host_key, name`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.StoredCookie
	for rows.Next() {
		var (
			c         domain.StoredCookie
			value     sql.NullString
			encrypted []byte
		)
		if err := rows.Scan(&c.Host, &c.Name, &c.Path, &value, &encrypted); err != nil {
			return nil, err
		}
		if value.Valid {
			c.Value = value.String
		}
		if c.Value == "" {
			c.EncryptedLen = len(encrypted)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func hostWhereClause(domains []string) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d == "" {
			continue
		}
		clauses = append(clauses, "host_key = ?", "host_key = ?", "host_key LIKE ?")
		args = append(args, d, "."+d, "%."+d)
	}
	if len(clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(clauses, " OR "), args
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyFileIfExists(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return copyFile(src, dst)
}
