package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

func sampleResult() *models.PipelineResult {
	return &models.PipelineResult{
		ExtractedData:   models.Fields{CCCDNumber: "012345678901", FullName: "NGUYEN VAN A"},
		ConfidenceScore: 0.5,
		MissingFields:   []models.FieldName{models.FieldDateOfBirth, models.FieldGender},
		Source:          models.SourceRegex,
		Diagnostics:     &models.Diagnostics{RequestID: "req", FrontText: "Số 012345678901"},
	}
}

func TestKey(t *testing.T) {
	front := []byte("front")
	back := []byte("back")

	k := Key("full", front, back)
	parts := strings.Split(k, ":")
	if len(parts) != 5 || parts[0] != "cccd" || parts[1] != "v1" || parts[2] != "full" {
		t.Fatalf("Unexpected key layout %q", k)
	}
	if len(parts[3]) != 64 || len(parts[4]) != 64 {
		t.Errorf("Expected sha256 hex digests, got %q", k)
	}

	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"deterministic", Key("full", front, back), Key("full", front, back), true},
		{"mode matters", Key("full", front, back), Key("number_only", front, back), false},
		{"back matters", Key("full", front, back), Key("full", front, nil), false},
		{"sides are ordered", Key("full", front, back), Key("full", back, front), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.a == tt.b) != tt.same {
				t.Errorf("Expected same=%v for %q and %q", tt.same, tt.a, tt.b)
			}
		})
	}
	if !strings.HasSuffix(Key("full", front, nil), ":-") {
		t.Error("Expected absent back side to be -")
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := sampleResult()
	if err := c.Set(ctx, "k", in, time.Hour); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	in.ExtractedData.FullName = "CHANGED"

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ExtractedData.FullName != "NGUYEN VAN A" {
		t.Errorf("Expected stored copy to be isolated, got %q", got.ExtractedData.FullName)
	}
	if got.Diagnostics.FrontText != "" {
		t.Error("Expected recognized text not to be cached")
	}
	if got.Diagnostics.RequestID != "req" || got.Source != models.SourceRegex {
		t.Errorf("Unexpected cached result %+v", got)
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "short", sampleResult(), time.Minute)
	c.Set(ctx, "forever", sampleResult(), 0)

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("Expected entry without ttl to survive")
	}
	if c.Len() != 1 {
		t.Errorf("Expected expired entry to be evicted, got %d entries", c.Len())
	}

	c.Close()
	if c.Len() != 0 {
		t.Errorf("Expected close to clear entries, got %d", c.Len())
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	if err := c.Set(ctx, "k", sampleResult(), time.Hour); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Expected Nop to never hit")
	}
}

func TestRedis_UnreachableIsAnError(t *testing.T) {
	r := NewRedis(RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, ok, err := r.Get(ctx, "k"); ok || err == nil {
		t.Errorf("Expected an error from an unreachable server, got ok=%v err=%v", ok, err)
	}
	if err := r.Set(ctx, "k", sampleResult(), time.Minute); err == nil {
		t.Error("Expected set to fail against an unreachable server")
	}
}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
	_ Cache = Nop{}
)
