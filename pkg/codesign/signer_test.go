package codesign

import "testing"

func TestParseSignersEmptyBlobIsAdHoc(t *testing.T) {
	signers, err := ParseSigners(nil)
	if err != nil {
		t.Fatalf("ParseSigners(nil): %v", err)
	}
	if signers != nil {
		t.Errorf("ParseSigners(nil) = %v, want nil (ad-hoc signature)", signers)
	}
}

func TestParseSignersMalformedBlob(t *testing.T) {
	if _, err := ParseSigners([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Errorf("expected an error for a non-DER CMS blob")
	}
}
