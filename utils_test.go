package snaps

import "testing"

func TestIsValidAddress(t *testing.T) {
	valid := "GDQP2KPQGKIHYJGXNUIYOMHARUARCA7DJT5FO2FFOOUJ3DTJE4QRK764"

	if !IsValidAddress(valid) {
		t.Fatalf("expected %s to be valid", valid)
	}
	if IsValidAddress("short") {
		t.Fatalf("expected short address to be invalid")
	}
	if IsValidAddress("SDQP2KPQGKIHYJGXNUIYOMHARUARCA7DJT5FO2FFOOUJ3DTJE4QRK764") {
		t.Fatalf("expected non-G address to be invalid")
	}
	if IsValidAddress("") {
		t.Fatalf("expected empty address to be invalid")
	}
}

func TestIsValidAssetCode(t *testing.T) {
	cases := map[string]bool{
		"XLM":                         true,
		"USDC":                        true,
		"a1B2c3D4e5F6":                true,
		"":                            false,
		"ThisIsTooLongForAnAssetCode": false,
		"US-DC":                       false,
	}
	for code, want := range cases {
		if got := IsValidAssetCode(code); got != want {
			t.Errorf("IsValidAssetCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestIsValidAmountBoundaries(t *testing.T) {
	cases := map[string]bool{
		"0":         false,
		"0.0000001": true,
		"abc":       false,
		"-1":        false,
		"10.5":      true,
		"":          false,
		"Inf":       false,
		"NaN":       false,
	}
	for amount, want := range cases {
		if got := IsValidAmount(amount); got != want {
			t.Errorf("IsValidAmount(%q) = %v, want %v", amount, got, want)
		}
	}
}

func TestGenerateSnapID(t *testing.T) {
	id := GenerateSnapID(8)
	if len(id) != 8 {
		t.Fatalf("expected length 8, got %d", len(id))
	}
	if !IsValidSnapID(id) {
		t.Fatalf("generated id %q is not valid", id)
	}

	other := GenerateSnapID(8)
	if id == other {
		t.Fatalf("expected two generated ids to differ")
	}

	if len(GenerateSnapID(0)) != 8 {
		t.Fatalf("expected default length 8")
	}
}

func TestIsValidSnapID(t *testing.T) {
	if IsValidSnapID("abc") {
		t.Fatalf("expected too-short id to be invalid")
	}
	if IsValidSnapID("has spaces") {
		t.Fatalf("expected id with spaces to be invalid")
	}
	if !IsValidSnapID("nk1VNcxo") {
		t.Fatalf("expected nanoid-style id to be valid")
	}
}

func TestExtractSnapID(t *testing.T) {
	if got := ExtractSnapID("https://stellarsnaps.net/s/nk1VNcxo"); got != "nk1VNcxo" {
		t.Fatalf("expected nk1VNcxo, got %q", got)
	}
	if got := ExtractSnapID("https://example.com/pay/abc123"); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}
	if got := ExtractSnapID("https://example.com/other/abc123"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
	if got := ExtractSnapID("://bad"); got != "" {
		t.Fatalf("expected no match for invalid url, got %q", got)
	}
}

func TestNormalizeDomain(t *testing.T) {
	if got := NormalizeDomain("WWW.Example.COM"); got != "example.com" {
		t.Fatalf("expected example.com, got %q", got)
	}
	if got := NormalizeDomain("sub.www.example.com"); got != "sub.www.example.com" {
		t.Fatalf("expected inner www to be kept, got %q", got)
	}
}
