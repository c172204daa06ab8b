package domain

import "testing"

func TestClassifyReferencePINRange(t *testing.T) {
	for _, ref := range []string{"1234", "abc123", "A1B2C3D4"} {
		if got := ClassifyReference(ref, KindPayment); got != FormPIN {
			t.Fatalf("%q should classify as pin, got %s", ref, got)
		}
	}
	if got := ClassifyReference("7766", KindLoyalty); got != FormPIN {
		t.Fatalf("loyalty short code should classify as pin, got %s", got)
	}
}

func TestClassifyReferenceQRFallback(t *testing.T) {
	// too short, too long, and non-alphanumeric all fall through to QR
	for _, ref := range []string{"123", "123456789", "ab-12", "order:555:tok"} {
		if got := ClassifyReference(ref, KindPayment); got != FormQR {
			t.Fatalf("%q should classify as qr, got %s", ref, got)
		}
	}
}

func TestClassifyReferencePOSAlwaysReceipt(t *testing.T) {
	for _, ref := range []string{"1234", "R-2024-000812"} {
		if got := ClassifyReference(ref, KindPOS); got != FormReceipt {
			t.Fatalf("pos reference %q should classify as receipt, got %s", ref, got)
		}
	}
}

func TestValidKind(t *testing.T) {
	if !ValidKind(KindPayment) || !ValidKind(KindLoyalty) || !ValidKind(KindPOS) {
		t.Fatalf("known kinds should be valid")
	}
	if ValidKind(ReferenceKind("giftcard")) {
		t.Fatalf("unknown kind accepted")
	}
}
