package datasource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	glogger "gorm.io/gorm/logger"

	"enricher/internal/common"
	"enricher/internal/errs"
	"enricher/internal/logs"
)

// MySQLConfig configures a MySQL connection.
type MySQLConfig struct {
	// DSN takes precedence over the discrete fields.
	DSN           string        `mapstructure:"dsn"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Database      string        `mapstructure:"database"`
	MaxOpen       int           `mapstructure:"max_open"`
	MaxIdle       int           `mapstructure:"max_idle"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

func (c MySQLConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}

	// username:password@protocol(address)/dbname?charset=utf8&parseTime=True&loc=Local
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// OpenMySQL opens a gorm connection pool and pings the server.
func OpenMySQL(cfg MySQLConfig, logger *zap.Logger) (*gorm.DB, error) {
	logger = logs.OrDefault(logger)

	db, err := gorm.Open(mysql.Open(cfg.dsn()), &gorm.Config{
		Logger: newGormLogger(logger, glogger.Warn, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}

	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}

	logger.Info("open mysql success",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return db, nil
}

// TableDef describes a table container.
type TableDef struct {
	Namespace string   `mapstructure:"namespace"`
	Table     string   `mapstructure:"table"`
	KeyColumn string   `mapstructure:"key_column"`
	Columns   []string `mapstructure:"columns"`
}

// Table serves the rows of a SQL table by key column.
type Table struct {
	db     *gorm.DB
	def    TableDef
	logger *zap.Logger
}

// NewTable creates a Table container. KeyColumn defaults to "id".
func NewTable(db *gorm.DB, def TableDef, logger *zap.Logger) (*Table, error) {
	switch {
	case db == nil:
		return nil, errs.ErrConfiguration.WithMsg("table %q: nil database", def.Namespace)
	case def.Namespace == "":
		return nil, errs.ErrConfiguration.WithMsg("table %q: empty namespace", def.Table)
	case def.Table == "":
		return nil, errs.ErrConfiguration.WithMsg("table container %q: empty table name", def.Namespace)
	}

	if def.KeyColumn == "" {
		def.KeyColumn = "id"
	}

	if len(def.Columns) > 0 && !slices.Contains(def.Columns, def.KeyColumn) {
		def.Columns = append(slices.Clone(def.Columns), def.KeyColumn)
	}

	return &Table{
		db:     db,
		def:    def,
		logger: logs.OrDefault(logger).Named("table").With(zap.String("namespace", def.Namespace)),
	}, nil
}

func (t *Table) Namespace() string { return t.def.Namespace }

func (t *Table) Get(ctx context.Context, keys []any) (map[any]any, error) {
	keys = common.UniqueComparable(keys)
	if len(keys) == 0 {
		return map[any]any{}, nil
	}

	var rows []map[string]any
	if err := t.query(ctx, keys).Find(&rows).Error; err != nil {
		return nil, errs.ErrDispatch.WithMsg("query %s", t.def.Table).WithCause(err)
	}

	idx := newKeyIndex(keys)
	out := make(map[any]any, len(rows))

	for _, row := range rows {
		k, ok := idx.lookup(row[t.def.KeyColumn])
		if !ok {
			t.logger.Debug("row key not requested", zap.Any("key", row[t.def.KeyColumn]))
			continue
		}

		out[k] = row
	}

	return out, nil
}

func (t *Table) query(ctx context.Context, keys []any) *gorm.DB {
	q := t.db.WithContext(ctx).Table(t.def.Table)
	if len(t.def.Columns) > 0 {
		q = q.Select(t.def.Columns)
	}

	return q.Where(clause.IN{Column: clause.Column{Name: t.def.KeyColumn}, Values: keys})
}

// gormLogger routes gorm logs to zap.
type gormLogger struct {
	logger        *zap.Logger
	level         glogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(logger *zap.Logger, level glogger.LogLevel, slowThreshold time.Duration) glogger.Interface {
	return &gormLogger{
		logger:        logger.Named("gorm"),
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (l *gormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	cp := *l
	cp.level = level

	return &cp
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= glogger.Info {
		l.logger.Info(msg, zap.Any("data", data))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= glogger.Warn {
		l.logger.Warn(msg, zap.Any("data", data))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= glogger.Error {
		l.logger.Error(msg, zap.Any("data", data))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= glogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}

	switch {
	case err != nil && !errors.Is(err, glogger.ErrRecordNotFound):
		l.logger.Error("query failed", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.logger.Warn("slow query", fields...)
	case l.level >= glogger.Info:
		l.logger.Debug("query", fields...)
	}
}
