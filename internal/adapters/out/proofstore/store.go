// Package proofstore is the courier agent's durable list of pending proof
// submissions, kept in a local SQLite file.
package proofstore

import (
	"context"
	"fmt"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/pkg/errs"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store implements ports.ProofStore. Save replaces the list inside one
// transaction, so a crash leaves either the old or the new list.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errs.NewValueIsRequiredError("path")
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=FULL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open proof store %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return New(db)
}

// New uses an already opened database and creates the table if needed.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&SubmissionDTO{}); err != nil {
		return nil, fmt.Errorf("migrate proof store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load returns every row in enqueue order. Damaged rows are returned as
// entries that fail CheckIntegrity instead of failing the whole load.
func (s *Store) Load(ctx context.Context) ([]*proof.Submission, error) {
	var dtos []SubmissionDTO
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	entries := make([]*proof.Submission, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toDomain(dto)
		if err != nil {
			return nil, fmt.Errorf("proof store row %d: %w", dto.Seq, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) Save(ctx context.Context, entries []*proof.Submission) error {
	dtos := make([]SubmissionDTO, 0, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(entry))
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SubmissionDTO{}).Error; err != nil {
			return err
		}
		if len(dtos) == 0 {
			return nil
		}
		return tx.Create(&dtos).Error
	})
}

func (s *Store) Append(ctx context.Context, entry *proof.Submission) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	dto := fromDomain(entry)
	return s.db.WithContext(ctx).Create(&dto).Error
}

func (s *Store) Remove(ctx context.Context, id kernel.UUID) error {
	return s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&SubmissionDTO{}).Error
}
