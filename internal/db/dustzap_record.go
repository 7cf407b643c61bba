// Package db persists an audit ledger of completed dust-zap batches.
// Adapted from the teacher's internal/db/transaction_recorder.go
// (MySQLRecorder over AssetSnapshotRecord) — same GORM+MySQL shape,
// fields renamed from strategy-snapshot metrics to dust-zap batch
// metrics.
package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zappilot/dustzap/internal/stream"
)

// DustZapRecord is the database model for one completed batch.
type DustZapRecord struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp           time.Time `gorm:"index;not null"`
	IntentID            string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	UserAddress         string    `gorm:"type:varchar(42);index;not null"`
	ChainID             int64     `gorm:"not null"`
	TotalTokens         int       `gorm:"not null"`
	ProcessedTokens     int       `gorm:"not null"`
	TotalValueUSD       float64   `gorm:"not null"`
	TotalFeeUSD         float64   `gorm:"not null"`
	ReferrerFeeUSD      float64
	TreasuryFeeUSD      float64   `gorm:"not null"`
	FeeTransactionCount int       `gorm:"not null"`
	TotalGas            string    `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
}

func (DustZapRecord) TableName() string {
	return "dust_zap_records"
}

// MySQLRecorder implements stream.Recorder using GORM and MySQL, the
// same constructor pair the teacher exposes for its snapshot recorder.
type MySQLRecorder struct {
	db *gorm.DB
}

// NewMySQLRecorder connects to dsn and auto-migrates the schema. dsn
// format: "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local".
func NewMySQLRecorder(dsn string) (*MySQLRecorder, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return NewMySQLRecorderWithDB(db)
}

// NewMySQLRecorderWithDB wraps an existing GORM DB instance, useful for
// tests against sqlmock or an in-memory driver.
func NewMySQLRecorderWithDB(db *gorm.DB) (*MySQLRecorder, error) {
	if err := db.AutoMigrate(&DustZapRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &MySQLRecorder{db: db}, nil
}

// RecordCompletion implements stream.Recorder.
func (r *MySQLRecorder) RecordCompletion(summary stream.CompletionSummary) error {
	record := DustZapRecord{
		Timestamp:           time.Now(),
		IntentID:            summary.IntentID,
		UserAddress:         summary.UserAddress,
		ChainID:             summary.ChainID,
		TotalTokens:         summary.TotalTokens,
		ProcessedTokens:     summary.ProcessedTokens,
		TotalValueUSD:       summary.TotalValueUSD,
		TotalFeeUSD:         summary.FeeInfo.TotalFeeUSD,
		ReferrerFeeUSD:      summary.FeeInfo.ReferrerFeeUSD,
		TreasuryFeeUSD:      summary.FeeInfo.TreasuryFeeUSD,
		FeeTransactionCount: summary.FeeInfo.FeeTransactionCount,
		TotalGas:            summary.TotalGas,
	}
	result := r.db.Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to record dust zap completion: %w", result.Error)
	}
	return nil
}

// GetDB returns the underlying GORM DB instance for advanced queries.
func (r *MySQLRecorder) GetDB() *gorm.DB {
	return r.db
}

// Close closes the database connection.
func (r *MySQLRecorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}

// CountRecords returns the total number of recorded batches.
func (r *MySQLRecorder) CountRecords() (int64, error) {
	var count int64
	result := r.db.Model(&DustZapRecord{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count dust zap records: %w", result.Error)
	}
	return count, nil
}
