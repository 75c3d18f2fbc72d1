package models

import "time"

// VerificationStatus is derived by the KYC collaborator from a pipeline result.
type VerificationStatus string

const (
	StatusVerified VerificationStatus = "verified"
	StatusPending  VerificationStatus = "pending"
	StatusRejected VerificationStatus = "rejected"
)

// KYCRecord is a persisted identity verification keyed by wallet address.
type KYCRecord struct {
	Fields

	ID                 string             `json:"id"`
	WalletAddress      string             `json:"wallet_address"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	ConfidenceScore    float64            `json:"confidence_score"`
	MissingFields      []FieldName        `json:"missing_fields"`
	FormatValid        bool               `json:"format_valid"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// KYCVerifyRequest submits a pipeline result for a wallet.
type KYCVerifyRequest struct {
	WalletAddress string          `json:"wallet_address"`
	OCRData       *PipelineResult `json:"ocr_data"`
}

// KYCDecision is returned after a verification attempt.
type KYCDecision struct {
	VerificationStatus VerificationStatus `json:"verification_status"`
	ConfidenceScore    float64            `json:"confidence_score"`
	FullName           string             `json:"full_name,omitempty"`
	CCCDNumber         string             `json:"cccd_number,omitempty"`
	MissingFields      []FieldName        `json:"missing_fields"`
}

// KYCStatus answers a status lookup for a wallet.
type KYCStatus struct {
	Verified        bool               `json:"verified"`
	Status          VerificationStatus `json:"status,omitempty"`
	ConfidenceScore float64            `json:"confidence_score,omitempty"`
	FullName        string             `json:"full_name,omitempty"`
	CCCDNumber      string             `json:"cccd_number,omitempty"`
	VerifiedAt      *time.Time         `json:"verified_at,omitempty"`
	Message         string             `json:"message,omitempty"`
}
