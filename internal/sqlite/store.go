package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // driver: sqlite3

	"surveygraph/internal/schema"
)

// Store: встроенное хранилище. Каждая схема экспорта подключается через
// ATTACH как отдельная база: <dir>/<schema>.db или :memory:, если dir пуст.
//
// ATTACH действует на одно соединение, поэтому пул ограничен одним
// соединением, которое живёт всё время работы процесса.
type Store struct {
	DB  *sql.DB
	dir string

	mu       sync.Mutex
	attached map[string]struct{}
}

// Open открывает хранилище и подключает все <dir>/*.db.
func Open(ctx context.Context, dir string) (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{DB: db, dir: dir, attached: make(map[string]struct{})}
	if dir == "" {
		return s, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.db"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sort.Strings(files)
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if err := s.Attach(ctx, name); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Attach подключает схему, если она ещё не подключена. В файловом режиме
// отсутствующий файл будет создан.
func (s *Store) Attach(ctx context.Context, schemaName string) error {
	if !schema.ValidIdentifier(schemaName) {
		return fmt.Errorf("schema name %q is not a valid identifier", schemaName)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attached[schemaName]; ok {
		return nil
	}

	path := ":memory:"
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return err
		}
		path = filepath.Join(s.dir, schemaName+".db")
	}
	if _, err := s.DB.ExecContext(ctx, `ATTACH DATABASE ? AS `+pq.QuoteIdentifier(schemaName), path); err != nil {
		return fmt.Errorf("attach %s: %w", schemaName, err)
	}
	s.attached[schemaName] = struct{}{}
	return nil
}

// Schemas: подключённые схемы по имени.
func (s *Store) Schemas() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.attached))
	for name := range s.attached {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TableExists: неподключённая схема означает, что таблицы нет.
func (s *Store) TableExists(ctx context.Context, schemaName, table string) (bool, error) {
	s.mu.Lock()
	_, ok := s.attached[schemaName]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM `+pq.QuoteIdentifier(schemaName)+`.sqlite_master WHERE type = 'table' AND name = ?`,
		table).Scan(&n)
	return n > 0, err
}

func (s *Store) Close() error { return s.DB.Close() }
