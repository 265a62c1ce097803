package id

import (
	"regexp"
	"testing"
	"time"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestRecordKey_DeterministicAndHex32(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := RecordKey("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "req-1", 75000, at)
	b := RecordKey("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "req-1", 75000, at)
	if a != b {
		t.Fatalf("same inputs produced different keys: %s vs %s", a, b)
	}
	if !reHex32.MatchString(a) {
		t.Fatalf("key is not 32-char lowercase hex: %q", a)
	}
}

func TestRecordKey_SensitiveToEveryInput(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	base := RecordKey("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ext", 100, at)

	variants := []string{
		RecordKey("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "ext", 100, at),
		RecordKey("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ext2", 100, at),
		RecordKey("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ext", 101, at),
		RecordKey("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ext", 100, at.Add(time.Nanosecond)),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with base key", i)
		}
	}
}

func TestRecordKey_TimezoneInsensitive(t *testing.T) {
	utc := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	jakarta := utc.In(time.FixedZone("WIB", 7*3600))
	if RecordKey("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ext", 1, utc) !=
		RecordKey("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ext", 1, jakarta) {
		t.Fatalf("same instant in different zones produced different keys")
	}
}

func TestNewID32_LengthAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		v := NewID32()
		if !reHex32.MatchString(v) {
			t.Fatalf("bad id: %q", v)
		}
		if seen[v] {
			t.Fatalf("duplicate id after %d draws", i)
		}
		seen[v] = true
	}
}
