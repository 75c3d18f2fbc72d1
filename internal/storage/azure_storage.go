package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobScheme prefixes references served from Azure Blob Storage.
const BlobScheme = "azblob"

// BlobRef names one blob.
type BlobRef struct {
	Container string
	Blob      string
}

// ParseBlobRef reads azblob://container/path/to/blob.
func ParseBlobRef(ref string) (BlobRef, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return BlobRef{}, fmt.Errorf("invalid blob reference: %w", err)
	}
	if u.Scheme != BlobScheme {
		return BlobRef{}, fmt.Errorf("invalid blob reference: scheme must be %s", BlobScheme)
	}
	blob := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || blob == "" {
		return BlobRef{}, fmt.Errorf("invalid blob reference: expected %s://container/blob", BlobScheme)
	}
	return BlobRef{Container: u.Host, Blob: blob}, nil
}

// AzureBlobFetcher downloads images from one storage account.
type AzureBlobFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

func NewAzureBlobFetcher(accountName, accountKey string) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &AzureBlobFetcher{client: client, maxBytes: defaultMaxBytes}, nil
}

func (s *AzureBlobFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	blob, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.DownloadStream(ctx, blob.Container, blob.Blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", s.maxBytes)
	}
	return data, nil
}
