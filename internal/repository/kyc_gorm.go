package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// kycRow is the table layout; missing fields are stored comma separated.
type kycRow struct {
	ID                 string `gorm:"primaryKey;size:36"`
	WalletAddress      string `gorm:"uniqueIndex;size:42;not null"`
	CCCDNumber         string `gorm:"uniqueIndex;size:12;not null"`
	FullName           string
	DateOfBirth        string `gorm:"size:10"`
	Gender             string `gorm:"size:8"`
	Nationality        string
	PlaceOfOrigin      string
	PlaceOfResidence   string
	IssueDate          string `gorm:"size:10"`
	IssuingAuthority   string
	VerificationStatus string `gorm:"size:16;index"`
	ConfidenceScore    float64
	MissingFields      string
	FormatValid        bool
	VerifiedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (kycRow) TableName() string { return "kyc_records" }

// GormKYCRepository stores records in postgres or sqlite.
type GormKYCRepository struct {
	db *gorm.DB
}

// OpenGormKYCRepository connects with the named driver and migrates the table.
func OpenGormKYCRepository(driver, dsn string) (*GormKYCRepository, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if err := db.AutoMigrate(&kycRow{}); err != nil {
		return nil, fmt.Errorf("migrate kyc_records: %w", err)
	}
	return &GormKYCRepository{db: db}, nil
}

func (r *GormKYCRepository) FindByWallet(ctx context.Context, wallet string) (*models.KYCRecord, error) {
	return r.first(ctx, "wallet_address = ?", wallet)
}

func (r *GormKYCRepository) FindByCCCD(ctx context.Context, number string) (*models.KYCRecord, error) {
	return r.first(ctx, "cccd_number = ?", number)
}

func (r *GormKYCRepository) first(ctx context.Context, query string, arg string) (*models.KYCRecord, error) {
	var row kycRow
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKYCNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.record(), nil
}

func (r *GormKYCRepository) Upsert(ctx context.Context, record *models.KYCRecord) error {
	row := newKYCRow(record)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing kycRow
		err := tx.Where("wallet_address = ?", row.WalletAddress).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&row).Error
		case err != nil:
			return err
		}
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCCCD
	}
	return err
}

func (r *GormKYCRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newKYCRow(rec *models.KYCRecord) kycRow {
	missing := make([]string, len(rec.MissingFields))
	for i, name := range rec.MissingFields {
		missing[i] = string(name)
	}
	return kycRow{
		ID:                 rec.ID,
		WalletAddress:      rec.WalletAddress,
		CCCDNumber:         rec.CCCDNumber,
		FullName:           rec.FullName,
		DateOfBirth:        rec.DateOfBirth,
		Gender:             rec.Gender,
		Nationality:        rec.Nationality,
		PlaceOfOrigin:      rec.PlaceOfOrigin,
		PlaceOfResidence:   rec.PlaceOfResidence,
		IssueDate:          rec.IssueDate,
		IssuingAuthority:   rec.IssuingAuthority,
		VerificationStatus: string(rec.VerificationStatus),
		ConfidenceScore:    rec.ConfidenceScore,
		MissingFields:      strings.Join(missing, ","),
		FormatValid:        rec.FormatValid,
		VerifiedAt:         rec.VerifiedAt,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func (row kycRow) record() *models.KYCRecord {
	missing := []models.FieldName{}
	if row.MissingFields != "" {
		for _, name := range strings.Split(row.MissingFields, ",") {
			missing = append(missing, models.FieldName(name))
		}
	}
	return &models.KYCRecord{
		Fields: models.Fields{
			CCCDNumber:       row.CCCDNumber,
			FullName:         row.FullName,
			DateOfBirth:      row.DateOfBirth,
			Gender:           row.Gender,
			Nationality:      row.Nationality,
			PlaceOfOrigin:    row.PlaceOfOrigin,
			PlaceOfResidence: row.PlaceOfResidence,
			IssueDate:        row.IssueDate,
			IssuingAuthority: row.IssuingAuthority,
		},
		ID:                 row.ID,
		WalletAddress:      row.WalletAddress,
		VerificationStatus: models.VerificationStatus(row.VerificationStatus),
		ConfidenceScore:    row.ConfidenceScore,
		MissingFields:      missing,
		FormatValid:        row.FormatValid,
		VerifiedAt:         row.VerifiedAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
