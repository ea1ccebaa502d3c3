package core

// confidential.go defines the confidential UTXO note (spec.md §3) and its
// ledger-side store. New to this domain — the teacher has no RingCT-style
// output — but modelled on the teacher's `UTXO` struct shape and
// `Ledger.UTXO map[string]UTXO` storage idiom (core/common_structs.go,
// core/ledger.go).
import "encoding/hex"

// ConfidentialOutput is a confidential-payment note: the amount is never
// stored in clear, only a Pedersen commitment to it (spec.md §3).
type ConfidentialOutput struct {
	Commitment     []byte
	StealthAddress []byte
	EphemeralPub   []byte
	RangeProof     []byte
	ViewTag        byte
	TxID           Hash
	Spent          bool
}

// StealthHex is the map key the ledger stores confidential outputs under
// (spec.md §4.3.1 step 5: "keyed by stealth_address.hex()").
func StealthHex(stealthAddr []byte) string {
	return hex.EncodeToString(stealthAddr)
}

func (c *ConfidentialOutput) Clone() *ConfidentialOutput {
	cp := *c
	cp.Commitment = append([]byte(nil), c.Commitment...)
	cp.StealthAddress = append([]byte(nil), c.StealthAddress...)
	cp.EphemeralPub = append([]byte(nil), c.EphemeralPub...)
	cp.RangeProof = append([]byte(nil), c.RangeProof...)
	return &cp
}
