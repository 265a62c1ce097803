package http

import (
	"strings"
	"testing"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		ActorID string `validate:"hex32"`
	}
	cv := NewValidator()

	ok := P{ActorID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	for _, s := range []string{
		"",                      // empty
		strings.Repeat("A", 32), // uppercase
		"deadbeef",              // too short
		strings.Repeat("g", 32), // non-hex char
		strings.Repeat("a", 31), // 31 chars
		strings.Repeat("a", 33), // 33 chars
	} {
		err := cv.Validate(P{ActorID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "ActorID", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestHex64Validation(t *testing.T) {
	type P struct {
		ContentHash string `validate:"hex64"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{ContentHash: strings.Repeat("ab", 32)}); err != nil {
		t.Fatalf("expected valid hex64, got err: %v", err)
	}
	for _, s := range []string{
		"",
		strings.Repeat("a", 32), // record-key length, not a hash
		strings.Repeat("A", 64), // uppercase
		strings.Repeat("z", 64), // non-hex
	} {
		err := cv.Validate(P{ContentHash: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "ContentHash", "64-char lowercase hex") {
			t.Fatalf("expected hex64 message for %q, got: %+v", s, fe)
		}
	}
}

func TestBpsValidation(t *testing.T) {
	type P struct {
		RateBps int64 `validate:"bps"`
	}
	cv := NewValidator()

	for _, v := range []int64{0, 1, 900, 10000} {
		if err := cv.Validate(P{RateBps: v}); err != nil {
			t.Fatalf("expected bps OK for %d, got %v", v, err)
		}
	}
	for _, v := range []int64{-1, 10001, 123456} {
		err := cv.Validate(P{RateBps: v})
		if err == nil {
			t.Fatalf("expected bps error for %d", v)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "RateBps", "basis points") {
			t.Fatalf("expected bps message for %d, got %+v", v, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name string `validate:"required"`
		Min  int    `validate:"gte=10"`
		Max  int    `validate:"lte=5"`
		Amt  int64  `validate:"gt=0"`
	}
	cv := NewValidator()

	err := cv.Validate(P{
		Name: "",
		Min:  9,
		Max:  6,
		Amt:  0,
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	if !containsFieldMsg(fe, "Min", "greater than or equal to 10") {
		t.Fatalf("missing gte message for Min: %+v", fe)
	}
	if !containsFieldMsg(fe, "Max", "less than or equal to 5") {
		t.Fatalf("missing lte message for Max: %+v", fe)
	}
	if !containsFieldMsg(fe, "Amt", "greater than 0") {
		t.Fatalf("missing gt message for Amt: %+v", fe)
	}
}
