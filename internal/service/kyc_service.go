package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/internal/observer"
	"github.com/anime-shed/cccd-inspector-go/internal/postprocess"
	"github.com/anime-shed/cccd-inspector-go/internal/repository"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
	"github.com/anime-shed/cccd-inspector-go/pkg/validation"
)

// DefaultVerifyThreshold is the confidence a record must exceed to be verified outright.
const DefaultVerifyThreshold = 0.7

// KYCService derives verification status from pipeline results and persists it per wallet.
type KYCService interface {
	Verify(ctx context.Context, req models.KYCVerifyRequest) (*models.KYCDecision, error)
	Status(ctx context.Context, wallet string) (*models.KYCStatus, error)
}

type kycService struct {
	repo      repository.KYCRepository
	threshold float64
	events    observer.Publisher
	now       func() time.Time
	log       *logrus.Entry
}

func NewKYCService(repo repository.KYCRepository, threshold float64, events observer.Publisher) KYCService {
	if events == nil {
		events = observer.Nop{}
	}
	return &kycService{
		repo:      repo,
		threshold: threshold,
		events:    events,
		now:       time.Now,
		log:       logger.Component("kyc_service"),
	}
}

func (s *kycService) Verify(ctx context.Context, req models.KYCVerifyRequest) (*models.KYCDecision, error) {
	if req.WalletAddress == "" || req.OCRData == nil {
		return nil, apperrors.NewValidationError("Missing wallet address or OCR data", nil)
	}
	wallet, err := validation.NormalizeWallet(req.WalletAddress)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByWallet(ctx, wallet)
	switch {
	case errors.Is(err, repository.ErrKYCNotFound):
		existing = nil
	case err != nil:
		return nil, apperrors.NewInternalError("failed to load KYC record", err)
	case existing.VerificationStatus == models.StatusVerified:
		return nil, apperrors.NewConflictError("Wallet already verified", nil)
	}

	ocr := req.OCRData
	if !ocr.FormatValid {
		return nil, apperrors.NewValidationError("Invalid CCCD format or missing fields", nil).
			WithDetails(joinFieldNames(ocr.MissingFields))
	}
	// Submitted OCR data is client input; the number must still check out.
	if _, bad := postprocess.Validate(ocr.ExtractedData).Rejected[string(models.FieldCCCDNumber)]; bad || ocr.ExtractedData.CCCDNumber == "" {
		return nil, apperrors.NewValidationError("Invalid CCCD format or missing fields", nil)
	}

	owner, err := s.repo.FindByCCCD(ctx, ocr.ExtractedData.CCCDNumber)
	switch {
	case errors.Is(err, repository.ErrKYCNotFound):
	case err != nil:
		return nil, apperrors.NewInternalError("failed to look up CCCD number", err)
	case owner.WalletAddress != wallet:
		return nil, apperrors.NewConflictError("CCCD number already registered to another wallet", nil)
	}

	now := s.now().UTC()
	record := &models.KYCRecord{
		Fields:             ocr.ExtractedData,
		ID:                 uuid.NewString(),
		WalletAddress:      wallet,
		VerificationStatus: models.StatusPending,
		ConfidenceScore:    ocr.ConfidenceScore,
		MissingFields:      append([]models.FieldName{}, ocr.MissingFields...),
		FormatValid:        ocr.FormatValid,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	if ocr.ConfidenceScore > s.threshold {
		record.VerificationStatus = models.StatusVerified
		record.VerifiedAt = &now
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateCCCD) {
			return nil, apperrors.NewConflictError("CCCD number already registered to another wallet", err)
		}
		return nil, apperrors.NewInternalError("failed to save KYC record", err)
	}

	s.log.WithFields(logrus.Fields{
		"wallet_address": wallet,
		"status":         record.VerificationStatus,
		"confidence":     record.ConfidenceScore,
	}).Info("KYC decision recorded")
	s.events.Publish(ctx, observer.Event{
		Type:      observer.KYCDecided,
		RequestID: observer.RequestIDFrom(ctx),
		Success:   true,
		Metadata: map[string]interface{}{
			observer.MetaStatus:     string(record.VerificationStatus),
			observer.MetaConfidence: record.ConfidenceScore,
		},
	})

	return &models.KYCDecision{
		VerificationStatus: record.VerificationStatus,
		ConfidenceScore:    record.ConfidenceScore,
		FullName:           record.FullName,
		CCCDNumber:         record.CCCDNumber,
		MissingFields:      record.MissingFields,
	}, nil
}

func (s *kycService) Status(ctx context.Context, wallet string) (*models.KYCStatus, error) {
	normalized, err := validation.NormalizeWallet(wallet)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.FindByWallet(ctx, normalized)
	if errors.Is(err, repository.ErrKYCNotFound) {
		return &models.KYCStatus{Verified: false, Message: "No KYC record found"}, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load KYC record", err)
	}
	return &models.KYCStatus{
		Verified:        rec.VerificationStatus == models.StatusVerified,
		Status:          rec.VerificationStatus,
		ConfidenceScore: rec.ConfidenceScore,
		FullName:        rec.FullName,
		CCCDNumber:      rec.CCCDNumber,
		VerifiedAt:      rec.VerifiedAt,
	}, nil
}

func joinFieldNames(names []models.FieldName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}
