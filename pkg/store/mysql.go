package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/verdict"
)

// DefaultMySQLDSNEnv names the environment variable read for the DSN when
// the config doesn't name one.
const DefaultMySQLDSNEnv = "CG_MYSQL_DSN"

// verdictRecord is a stored verdict row. The full verdict travels as a JSON
// payload; label and timestamp are lifted into indexed columns for queries.
type verdictRecord struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Prediction string    `gorm:"size:8;not null;index"`
	Confidence string    `gorm:"size:64;not null"`
	Payload    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index;not null"`
}

// MySQLStore implements VerdictStore on MySQL through GORM.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore opens the database named by the configured DSN environment
// variable and migrates the verdict table.
func NewMySQLStore(cfg config.MySQLStoreConfig) (*MySQLStore, error) {
	dsnEnv := cfg.DSNEnv
	if dsnEnv == "" {
		dsnEnv = DefaultMySQLDSNEnv
	}
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		return nil, fmt.Errorf("mysql store requires a DSN in %s", dsnEnv)
	}

	dsn = ensureDSNParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureDSNParam(dsn, "charset", "utf8mb4")
		dsn = ensureDSNParam(dsn, "collation", "utf8mb4_unicode_ci")
	}

	gormLogger := gormlogger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: cfg.TablePrefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	if err := db.AutoMigrate(&verdictRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate verdict table: %w", err)
	}

	logging.Infof("mysql store: connected (table_prefix=%q)", cfg.TablePrefix)

	return &MySQLStore{db: db}, nil
}

// ensureDSNParam appends key=val to the DSN unless the key is already set.
func ensureDSNParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

func (s *MySQLStore) IsEnabled() bool { return true }

func (s *MySQLStore) CheckConnection(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("mysql connection unavailable: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logging.Infof("mysql store: closing connection")
	return sqlDB.Close()
}

func (s *MySQLStore) Record(ctx context.Context, v *verdict.Verdict) error {
	if v == nil || v.ID == "" {
		return ErrInvalidInput
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize verdict: %w", err)
	}

	row := verdictRecord{
		ID:         v.ID,
		Prediction: v.Prediction,
		Confidence: v.Confidence,
		Payload:    string(payload),
		CreatedAt:  v.CreatedAt,
	}
	err = s.db.WithContext(ctx).Create(&row).Error
	metrics.RecordStoreOperation(BackendMySQL, "record", err)
	if err != nil {
		return fmt.Errorf("failed to store verdict in mysql: %w", err)
	}
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, id string) (*verdict.Verdict, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	var row verdictRecord
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordStoreOperation(BackendMySQL, "get", ErrNotFound)
			return nil, ErrNotFound
		}
		metrics.RecordStoreOperation(BackendMySQL, "get", err)
		return nil, fmt.Errorf("failed to get verdict from mysql: %w", err)
	}

	metrics.RecordStoreOperation(BackendMySQL, "get", nil)
	return decodeVerdictRow(row)
}

func (s *MySQLStore) List(ctx context.Context, opts ListOptions) ([]*verdict.Verdict, error) {
	limit := clampLimit(opts.Limit)
	offset := clampOffset(opts.Offset)

	var rows []verdictRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	metrics.RecordStoreOperation(BackendMySQL, "list", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list verdicts from mysql: %w", err)
	}

	out := make([]*verdict.Verdict, 0, len(rows))
	for _, row := range rows {
		v, err := decodeVerdictRow(row)
		if err != nil {
			logging.Warnf("mysql store: failed to parse verdict %s: %v", row.ID, err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *MySQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&verdictRecord{}).Count(&n).Error; err != nil {
		metrics.RecordStoreOperation(BackendMySQL, "count", err)
		return 0, fmt.Errorf("failed to count verdicts in mysql: %w", err)
	}
	return n, nil
}

// PurgeOlderThan removes verdicts created before the cutoff.
func (s *MySQLStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&verdictRecord{})
	metrics.RecordStoreOperation(BackendMySQL, "purge", res.Error)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge verdicts from mysql: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func decodeVerdictRow(row verdictRecord) (*verdict.Verdict, error) {
	var v verdict.Verdict
	if err := json.Unmarshal([]byte(row.Payload), &v); err != nil {
		return nil, fmt.Errorf("failed to deserialize verdict %s: %w", row.ID, err)
	}
	return &v, nil
}
