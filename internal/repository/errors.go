package repository

import "errors"

var (
	// ErrUnsupportedSource indicates no fetcher is registered for the reference scheme
	ErrUnsupportedSource = errors.New("unsupported image source")

	// ErrKYCNotFound indicates no KYC record exists for the lookup key
	ErrKYCNotFound = errors.New("kyc record not found")

	// ErrDuplicateCCCD indicates the CCCD number is already bound to another wallet
	ErrDuplicateCCCD = errors.New("cccd number already registered")

	// ErrRepositoryUnavailable indicates the backing store cannot be reached
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
