package repository

import (
	"context"
	"sync"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// MemoryKYCRepository keeps records in process; used by default and in tests.
type MemoryKYCRepository struct {
	mu       sync.RWMutex
	byWallet map[string]models.KYCRecord
	byCCCD   map[string]string
}

func NewMemoryKYCRepository() *MemoryKYCRepository {
	return &MemoryKYCRepository{
		byWallet: make(map[string]models.KYCRecord),
		byCCCD:   make(map[string]string),
	}
}

func (r *MemoryKYCRepository) FindByWallet(ctx context.Context, wallet string) (*models.KYCRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byWallet[wallet]
	if !ok {
		return nil, ErrKYCNotFound
	}
	return cloneRecord(rec), nil
}

func (r *MemoryKYCRepository) FindByCCCD(ctx context.Context, number string) (*models.KYCRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.byCCCD[number]
	if !ok {
		return nil, ErrKYCNotFound
	}
	return cloneRecord(r.byWallet[wallet]), nil
}

func (r *MemoryKYCRepository) Upsert(ctx context.Context, record *models.KYCRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if number := record.CCCDNumber; number != "" {
		if owner, ok := r.byCCCD[number]; ok && owner != record.WalletAddress {
			return ErrDuplicateCCCD
		}
	}
	if prev, ok := r.byWallet[record.WalletAddress]; ok && prev.CCCDNumber != record.CCCDNumber {
		delete(r.byCCCD, prev.CCCDNumber)
	}
	r.byWallet[record.WalletAddress] = *cloneRecord(*record)
	if record.CCCDNumber != "" {
		r.byCCCD[record.CCCDNumber] = record.WalletAddress
	}
	return nil
}

func (r *MemoryKYCRepository) Close() error { return nil }

func cloneRecord(rec models.KYCRecord) *models.KYCRecord {
	out := rec
	out.MissingFields = append([]models.FieldName(nil), rec.MissingFields...)
	if rec.VerifiedAt != nil {
		at := *rec.VerifiedAt
		out.VerifiedAt = &at
	}
	return &out
}
