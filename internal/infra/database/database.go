package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sifan077/CharacterVault/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

const sqliteParams = "_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"

// DB owns the gorm handle and whatever connection resources sit underneath it.
type DB struct {
	Gorm   *gorm.DB
	Pool   *pgxpool.Pool
	Driver string

	sqlDB *sql.DB
}

// Open connects to the configured store. SQLite is the default; Postgres goes
// through a pgx pool shared with gorm. gorm warnings are written to logger.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "", config.StorageSQLite:
		return openSQLite(cfg.Path, logger)
	case config.StoragePostgres:
		return openPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
}

func openSQLite(path string, logger *zap.Logger) (*DB, error) {
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := EnsureDataDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?"+sqliteParams), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("database: open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: retrieve sqlite handle: %w", err)
	}

	// A single writer keeps id assignment and created stamps in commit order.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &DB{Gorm: db, Driver: config.StorageSQLite, sqlDB: sqlDB}, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*DB, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(logger))
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("database: open postgres: %w", err)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return &DB{Gorm: db, Pool: pool, Driver: config.StoragePostgres, sqlDB: sqlDB}, nil
}

func gormConfig(logger *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(gormWriter(logger), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// gormWriter routes gorm's printf-style output into zap at warn level.
func gormWriter(logger *zap.Logger) gormlogger.Writer {
	named := logger.Named("gorm")
	std, err := zap.NewStdLogAt(named, zapcore.WarnLevel)
	if err != nil {
		return zap.NewStdLog(named)
	}
	return std
}

// Ping verifies the store is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.sqlDB == nil {
		return errors.New("database: not open")
	}
	return d.sqlDB.PingContext(ctx)
}

// Close releases the gorm handle and, for Postgres, the pgx pool.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.sqlDB != nil {
		err = d.sqlDB.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	return err
}

// EnsureDataDir creates the directory holding the SQLite file.
func EnsureDataDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("database: create data dir %q: %w", dir, err)
	}
	return nil
}

// AutoMigrate creates or updates the tables for the provided models.
func AutoMigrate(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	if db == nil || len(models) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("database: auto migrate: %w", err)
	}
	return nil
}
