package attendance

import (
	"errors"
	"testing"
	"time"
)

func TestLatenessPolicy_UsesConfiguredLocation(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*60*60)
	p := DefaultLatenessPolicy(jakarta)

	// 02:20 UTC は WIB の 09:20
	at := time.Date(2025, 3, 3, 2, 20, 0, 0, time.UTC)
	status, late := p.Evaluate(at, at)
	if status != StatusLate || late != 20 {
		t.Fatalf("expected LATE/20 in local time, got %s/%d", status, late)
	}
}

func TestLatenessPolicy_TruncatesSeconds(t *testing.T) {
	t.Parallel()

	p := DefaultLatenessPolicy(time.UTC)
	at := time.Date(2025, 3, 3, 9, 15, 59, 0, time.UTC)
	if status, late := p.Evaluate(at, at); status != StatusOnTime || late != 0 {
		t.Fatalf("expected 09:15:59 to be on time, got %s/%d", status, late)
	}

	at = time.Date(2025, 3, 3, 9, 16, 0, 1, time.UTC)
	if status, late := p.Evaluate(at, at); status != StatusLate || late != 16 {
		t.Fatalf("expected LATE/16, got %s/%d", status, late)
	}
}

func TestParseLatenessPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseLatenessPolicy("08:30", 5*time.Minute, time.UTC)
	if err != nil {
		t.Fatalf("ParseLatenessPolicy returned error: %v", err)
	}
	at := time.Date(2025, 3, 3, 8, 36, 0, 0, time.UTC)
	if status, late := p.Evaluate(at, at); status != StatusLate || late != 6 {
		t.Fatalf("expected LATE/6, got %s/%d", status, late)
	}

	if _, err := ParseLatenessPolicy("9am", time.Minute, time.UTC); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
	if _, err := ParseLatenessPolicy("09:00", -time.Minute, time.UTC); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy for negative grace, got %v", err)
	}
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.locks) != 0 {
		t.Fatalf("expected lock entries to be released, got %d", len(k.locks))
	}
}
