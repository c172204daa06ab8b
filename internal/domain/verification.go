package domain

import "time"

// ReferenceKind tells the ledger which lookup a reference belongs to.
type ReferenceKind string

const (
	KindPayment ReferenceKind = "payment"
	KindLoyalty ReferenceKind = "loyalty"
	KindPOS     ReferenceKind = "pos"
)

// ValidKind reports whether k is one of the known reference kinds.
func ValidKind(k ReferenceKind) bool {
	switch k {
	case KindPayment, KindLoyalty, KindPOS:
		return true
	default:
		return false
	}
}

// ReferenceForm is how a reference string is interpreted by the ledger.
type ReferenceForm string

const (
	FormPIN     ReferenceForm = "pin"
	FormQR      ReferenceForm = "qr"
	FormReceipt ReferenceForm = "receipt"
)

// ClassifyReference applies the manual-entry rule: for payment and loyalty
// references a 4-8 character alphanumeric string is a PIN and anything else
// (including longer strings) is a QR payload; pos references are always
// receipt-number lookups. Staff re-type references by hand, so this rule must
// stay exact.
func ClassifyReference(reference string, kind ReferenceKind) ReferenceForm {
	if kind == KindPOS {
		return FormReceipt
	}
	if isPIN(reference) {
		return FormPIN
	}
	return FormQR
}

func isPIN(s string) bool {
	if len(s) < 4 || len(s) > 8 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

// VerifyOutcome is the ledger's answer to a verification attempt.
// AlreadyRedeemed is success-shaped: the reference is real but its single
// redemption right was consumed earlier. Both it and Invalid are terminal for
// that reference.
type VerifyOutcome string

const (
	OutcomeOK              VerifyOutcome = "ok"
	OutcomeAlreadyRedeemed VerifyOutcome = "already_redeemed"
	OutcomeInvalid         VerifyOutcome = "invalid"
)

// VerificationRecord is one verification attempt kept in the recent-history
// list. Records are append-only and never mutated after creation.
type VerificationRecord struct {
	Reference  string        `json:"reference"`
	Kind       ReferenceKind `json:"kind"`
	Form       ReferenceForm `json:"form"`
	Outcome    VerifyOutcome `json:"outcome"`
	OrderID    string        `json:"order_id,omitempty"`
	PaymentPIN string        `json:"payment_pin,omitempty"`
	At         time.Time     `json:"at"`
}
