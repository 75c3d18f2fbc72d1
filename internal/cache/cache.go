// Package cache stores pipeline results keyed by the exact image bytes and scan mode.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const keyPrefix = "cccd:v1"

// Cache is a result cache. A miss is (nil, false, nil); errors are reported separately
// so callers can treat a broken backend as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*models.PipelineResult, bool, error)
	Set(ctx context.Context, key string, res *models.PipelineResult, ttl time.Duration) error
	Close() error
}

// Key builds cccd:v1:<mode>:<sha256 front>:<sha256 back>. An absent back side is "-".
func Key(mode string, front, back []byte) string {
	parts := []string{keyPrefix, mode, digest(front), "-"}
	if len(back) > 0 {
		parts[3] = digest(back)
	}
	return strings.Join(parts, ":")
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.PipelineResult, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, *models.PipelineResult, time.Duration) error { return nil }

func (Nop) Close() error { return nil }
