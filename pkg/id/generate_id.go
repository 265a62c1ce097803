package id

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// RecordKey derives a content-addressed record key: exactly 32 hex
// characters, deterministic for identical inputs. Callers must supply a
// fresh externalID (or a timestamp-derived nonce) per record; a key
// collision surfaces on insert as an already-exists error, never as a
// silent overwrite.
func RecordKey(ownerID, externalID string, amount int64, at time.Time) string {
	h := sha256.New()
	h.Write([]byte(ownerID))
	h.Write([]byte{0})
	h.Write([]byte(externalID))
	h.Write([]byte{0})

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(amount))
	binary.BigEndian.PutUint64(buf[8:], uint64(at.UTC().UnixNano()))
	h.Write(buf[:])

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
