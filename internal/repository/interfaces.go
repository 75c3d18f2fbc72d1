package repository

import (
	"context"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// ImageRepository resolves image references to raw bytes.
type ImageRepository interface {
	// Fetch retrieves the bytes behind an http(s) or azblob reference
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// ValidateReference checks a reference without fetching it
	ValidateReference(ref string) error
}

// KYCRepository persists verification records keyed by lowercase wallet address.
type KYCRepository interface {
	// FindByWallet returns ErrKYCNotFound when the wallet has no record
	FindByWallet(ctx context.Context, wallet string) (*models.KYCRecord, error)

	// FindByCCCD returns ErrKYCNotFound when no wallet holds the number
	FindByCCCD(ctx context.Context, number string) (*models.KYCRecord, error)

	// Upsert creates or replaces the record for record.WalletAddress
	Upsert(ctx context.Context, record *models.KYCRecord) error

	Close() error
}
