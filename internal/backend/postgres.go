package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// PathEntry is one record of the hierarchical key space.
type PathEntry struct {
	Path      string `gorm:"primaryKey;column:path"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time
}

func (PathEntry) TableName() string {
	return "path_entries"
}

// BlobEntry is one stored payload.
type BlobEntry struct {
	Path      string `gorm:"primaryKey;column:path"`
	Data      []byte `gorm:"column:data;type:bytea;not null"`
	UpdatedAt time.Time
}

func (BlobEntry) TableName() string {
	return "blob_entries"
}

// PostgresStore keeps the key space in two tables, one for records and
// one for blobs. Writes are upserts so full-record overwrite semantics
// hold.
type PostgresStore struct {
	db *gorm.DB
}

// PostgresDSN builds the connection string from the usual parts.
func PostgresDSN(host, port, user, password, dbname, sslmode string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
}

// ConnectPostgres opens the database and migrates the two tables.
func ConnectPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&PathEntry{}, &BlobEntry{}); err != nil {
		return nil, fmt.Errorf("migrate path store: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, path string) (string, error) {
	var entry PathEntry
	err := p.db.WithContext(ctx).First(&entry, "path = ?", path).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("postgres get %s: %w", path, err)
	}
	return entry.Value, nil
}

func (p *PostgresStore) Set(ctx context.Context, path string, value string) error {
	entry := PathEntry{Path: path, Value: value, UpdatedAt: time.Now().UTC()}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", path, err)
	}
	return nil
}

func (p *PostgresStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	var entries []PathEntry
	err := p.db.WithContext(ctx).
		Where("path LIKE ?", prefix+"/%").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("postgres list %s: %w", prefix, err)
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		out[childKey(prefix, entry.Path)] = entry.Value
	}
	return out, nil
}

func (p *PostgresStore) Put(ctx context.Context, path string, data []byte) error {
	entry := BlobEntry{Path: path, Data: data, UpdatedAt: time.Now().UTC()}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("postgres blob put %s: %w", path, err)
	}
	return nil
}

func (p *PostgresStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	var entry BlobEntry
	err := p.db.WithContext(ctx).First(&entry, "path = ?", path).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres blob fetch %s: %w", path, err)
	}
	return entry.Data, nil
}
