package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/zappilot/dustzap/internal/stream"
	"github.com/zappilot/dustzap/pkg/types"
)

func newMockRecorder(t *testing.T) (*MySQLRecorder, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return &MySQLRecorder{db: gormDB}, mock
}

func TestMySQLRecorder_RecordCompletion(t *testing.T) {
	recorder, mock := newMockRecorder(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `dust_zap_records`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	summary := stream.CompletionSummary{
		IntentID:        "dustZap_1_abcdef_0000000000000000",
		UserAddress:     "0xuser",
		ChainID:         1,
		TotalTokens:     3,
		ProcessedTokens: 2,
		TotalValueUSD:   12.5,
		FeeInfo: types.FeeInfo{
			TotalFeeUSD:         0.01,
			TreasuryFeeUSD:      0.01,
			FeeTransactionCount: 1,
		},
		TotalGas: "210000",
	}

	err := recorder.RecordCompletion(summary)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRecorder_CountRecords(t *testing.T) {
	recorder, mock := newMockRecorder(t)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(4)
	mock.ExpectQuery("SELECT count").WillReturnRows(rows)

	count, err := recorder.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestDustZapRecord_TableName(t *testing.T) {
	assert.Equal(t, "dust_zap_records", DustZapRecord{}.TableName())
}

func TestDustZapRecord_FieldsRoundTrip(t *testing.T) {
	r := DustZapRecord{
		Timestamp:           time.Now(),
		IntentID:            "dustZap_1_abcdef_0000000000000000",
		UserAddress:         "0xuser",
		ChainID:             1,
		TotalTokens:         2,
		ProcessedTokens:     2,
		TotalValueUSD:       10,
		TotalFeeUSD:         0.1,
		TreasuryFeeUSD:      0.1,
		FeeTransactionCount: 1,
		TotalGas:            "100000",
	}
	assert.Equal(t, "dustZap_1_abcdef_0000000000000000", r.IntentID)
}
