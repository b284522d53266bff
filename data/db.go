package data

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/boxker/boxk"
)

// ErrNotConnected is returned by a DB that was closed or never opened
var ErrNotConnected = errors.New("database not connected")

// DB runs test data queries against mysql
type DB struct {
	mu sync.Mutex
	db *sqlx.DB
}

// DSN for cfg
func DSN(cfg *boxk.DatabaseConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.Name
	return c.FormatDSN()
}

// OpenDB connects to the database in cfg
func OpenDB(ctx context.Context, cfg *boxk.DatabaseConfig) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", DSN(cfg))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	}
	log.Debug().Str("host", cfg.Host).Str("db", cfg.Name).Msg("database connected")
	return NewDB(db), nil
}

// NewDB wraps an existing connection
func NewDB(db *sqlx.DB) *DB {
	return &DB{db: db}
}

func (d *DB) conn() (*sqlx.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db, nil
}

// Execute a statement, returning the number of rows affected
func (d *DB) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	db, err := d.conn()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to execute")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// FetchAll rows of query, byte slices are returned as strings
func (d *DB) FetchAll(ctx context.Context, query string, args ...interface{}) ([][]interface{}, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query")
	}
	defer rows.Close()

	all := make([][]interface{}, 0)
	for rows.Next() {
		cols, err := rows.SliceScan()
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		for i, col := range cols {
			if b, ok := col.([]byte); ok {
				cols[i] = string(b)
			}
		}
		all = append(all, cols)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed reading rows")
	}
	return all, nil
}

// Close the connection, later calls return ErrNotConnected
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return ErrNotConnected
	}
	err := d.db.Close()
	d.db = nil
	return err
}
