package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainLog   = "sortstep/log/v1"
	DomainInput = "sortstep/input/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// LogHash computes the identity of an event log. Two runs of a deterministic
// algorithm over the same input have equal log hashes.
func LogHash(log []Event) (string, error) {
	canonical, err := MarshalCanonical(log)
	if err != nil {
		return "", fmt.Errorf("LogHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLog, canonical), nil
}

// InputHash computes the identity of an input array.
func InputHash(values []int) string {
	canonical, _ := MarshalCanonical(values)
	return hashWithDomain(DomainInput, canonical)
}

// MustLogHash is like LogHash but panics on error.
// Use only in tests or when the log is known to be valid.
func MustLogHash(log []Event) string {
	h, err := LogHash(log)
	if err != nil {
		panic(err)
	}
	return h
}
