package core

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Address identifies an account by its textual form. The network models
// addresses as opaque base58/bech32-style strings rather than raw bytes so
// that issuer/holder comparisons stay cheap map-key lookups.
type Address string

// String returns the address unchanged; present for symmetry with Hash.
func (a Address) String() string { return string(a) }

// Empty reports whether the address carries no value.
func (a Address) Empty() bool { return a == "" }

// Hash is a 32-byte cryptographic digest.
type Hash [32]byte

// Hex returns the lowercase hex encoding of the hash.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

// Short returns a shortened hex view, e.g. for log lines.
func (h Hash) Short() string {
	s := h.Hex()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + ".." + s[len(s)-4:]
}

func (h Hash) IsZero() bool { return h == Hash{} }

// HashFromHex parses a hex string into a Hash, zero-padding on short input.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decode hash hex: %w", err)
	}
	var h Hash
	copy(h[32-len(b):], b)
	return h, nil
}

// microUnit is the fixed-point scale used for every monetary quantity: six
// decimal places, matching the data model's "fixed-point scalar, 6-decimal
// precision" requirement (spec.md §3, §9 "floating point -> fixed point").
// All arithmetic operates on integers in this unit; f64 only ever appears at
// the wire-serialization boundary (§6.3/§6.4), where it is documented as a
// lossy human view of the canonical integer value.
const MicroUnitScale = 1_000_000

// Micro is a signed fixed-point monetary quantity expressed in micro-units
// (1 Micro == 1/1,000,000 of a native/IOU unit). Backed by big.Int so there
// is no overflow ceiling on IOU or native balances.
type Micro struct {
	v *big.Int
}

func NewMicro(whole, micros int64) Micro {
	total := big.NewInt(whole)
	total.Mul(total, big.NewInt(MicroUnitScale))
	total.Add(total, big.NewInt(micros))
	return Micro{v: total}
}

// MicroFromInt wraps a raw micro-unit integer (no scaling applied).
func MicroFromInt(raw int64) Micro { return Micro{v: big.NewInt(raw)} }

func MicroFromBig(raw *big.Int) Micro { return Micro{v: new(big.Int).Set(raw)} }

func MicroZero() Micro { return Micro{v: big.NewInt(0)} }

func (m Micro) Big() *big.Int {
	if m.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(m.v)
}

func (m Micro) Add(o Micro) Micro { return Micro{v: new(big.Int).Add(m.Big(), o.Big())} }
func (m Micro) Sub(o Micro) Micro { return Micro{v: new(big.Int).Sub(m.Big(), o.Big())} }
func (m Micro) Neg() Micro        { return Micro{v: new(big.Int).Neg(m.Big())} }

// MulRat multiplies by a rational number num/den, truncating (rounding
// toward zero) the result down to the nearest micro-unit. Used for
// transfer-rate / quality multipliers (spec.md §4.3.1 step 6).
func (m Micro) MulRat(num, den int64) Micro {
	if den == 0 {
		return MicroZero()
	}
	out := new(big.Int).Mul(m.Big(), big.NewInt(num))
	out.Quo(out, big.NewInt(den))
	return Micro{v: out}
}

func (m Micro) Cmp(o Micro) int { return m.Big().Cmp(o.Big()) }
func (m Micro) IsZero() bool    { return m.Big().Sign() == 0 }
func (m Micro) Sign() int       { return m.Big().Sign() }
func (m Micro) LessThan(o Micro) bool { return m.Cmp(o) < 0 }
func (m Micro) GreaterThan(o Micro) bool { return m.Cmp(o) > 0 }

// MicroMin returns the smaller of two Micro values.
func MicroMin(a, b Micro) Micro {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// String renders the value as "<whole>.<6dp>" for logs/diagnostics.
func (m Micro) String() string {
	v := m.Big()
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(abs, big.NewInt(MicroUnitScale), frac)
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%06d", sign, whole.String(), frac.Int64())
}

// Float64 returns a lossy human view per §9 ("the on-wire f64 is a lossy
// human view and the canonical value is the integer").
func (m Micro) Float64() float64 {
	f := new(big.Float).SetInt(m.Big())
	f.Quo(f, big.NewFloat(MicroUnitScale))
	out, _ := f.Float64()
	return out
}

// CurrencyCode is a 3-character (or longer hashed) ISO-ish IOU currency
// code, matching the wire layout's 3-byte, NUL-padded currency field
// (spec.md §6.3 item 4).
type CurrencyCode string

// NativeCurrency marks an Amount as the chain's native asset rather than an
// IOU. It is the zero value so native Amounts need no special construction.
const NativeCurrency CurrencyCode = ""

// Amount is either a native balance (Currency == NativeCurrency, Issuer
// empty) or an IOU amount denominated in (Currency, Issuer).
type Amount struct {
	Value    Micro
	Currency CurrencyCode
	Issuer   Address
}

func NativeAmount(v Micro) Amount { return Amount{Value: v} }

func IOUAmount(v Micro, currency CurrencyCode, issuer Address) Amount {
	return Amount{Value: v, Currency: currency, Issuer: issuer}
}

func (a Amount) IsNative() bool { return a.Currency == NativeCurrency && a.Issuer == "" }

// ResultCode is the transaction-application result taxonomy (spec.md
// §4.3.6): 0 for success, 101-140 for deterministic failure bands.
type ResultCode int

const (
	ResultSuccess ResultCode = 0

	ResultUnfunded ResultCode = 100 + iota
	ResultNoLine
	ResultInsufFee
	ResultBadSeq
	ResultBadSig
	ResultKeyImageSpent
	ResultStakeLocked
	ResultDuplicate
	ResultNoPermission
	ResultEscrowBadCondition
	ResultEscrowNotReady
	ResultPaychanExpired
	ResultCheckExpired
	ResultNoRipple
	ResultFrozen
	ResultNoEntry
	ResultAmendmentBlocked
	ResultNFTokenExists
	ResultAMMBalance
	ResultClawbackDisabled
	ResultHooksRejected
	ResultXChainNoQuorum
	ResultMPTMaxSupply
	ResultCredentialExists
	ResultOracleLimit
	ResultDIDExists
	ResultInvariantFailed
	ResultPartialPayment
	ResultRequireAuth
	ResultDstTagNeeded
	ResultGlobalFreeze
	ResultOwnerReserve
	ResultSeqTooLow
)

var resultNames = map[ResultCode]string{
	ResultSuccess:            "tesSUCCESS",
	ResultUnfunded:           "tecUNFUNDED",
	ResultNoLine:             "tecNO_LINE",
	ResultInsufFee:           "tecINSUF_FEE",
	ResultBadSeq:             "tecBAD_SEQ",
	ResultBadSig:             "tecBAD_SIG",
	ResultKeyImageSpent:      "tecKEY_IMAGE_SPENT",
	ResultStakeLocked:        "tecSTAKE_LOCKED",
	ResultDuplicate:          "tecDUPLICATE",
	ResultNoPermission:       "tecNO_PERMISSION",
	ResultEscrowBadCondition: "tecESCROW_BAD_CONDITION",
	ResultEscrowNotReady:     "tecESCROW_NOT_READY",
	ResultPaychanExpired:     "tecPAYCHAN_EXPIRED",
	ResultCheckExpired:       "tecCHECK_EXPIRED",
	ResultNoRipple:           "tecNO_RIPPLE",
	ResultFrozen:             "tecFROZEN",
	ResultNoEntry:            "tecNO_ENTRY",
	ResultAmendmentBlocked:   "tecAMENDMENT_BLOCKED",
	ResultNFTokenExists:      "tecNFTOKEN_EXISTS",
	ResultAMMBalance:         "tecAMM_BALANCE",
	ResultClawbackDisabled:   "tecCLAWBACK_DISABLED",
	ResultHooksRejected:      "tecHOOKS_REJECTED",
	ResultXChainNoQuorum:     "tecXCHAIN_NO_QUORUM",
	ResultMPTMaxSupply:       "tecMPT_MAX_SUPPLY",
	ResultCredentialExists:   "tecCREDENTIAL_EXISTS",
	ResultOracleLimit:        "tecORACLE_LIMIT",
	ResultDIDExists:          "tecDID_EXISTS",
	ResultInvariantFailed:    "tecINVARIANT_FAILED",
	ResultPartialPayment:     "tecPARTIAL_PAYMENT",
	ResultRequireAuth:        "tecREQUIRE_AUTH",
	ResultDstTagNeeded:       "tecDST_TAG_NEEDED",
	ResultGlobalFreeze:       "tecGLOBAL_FREEZE",
	ResultOwnerReserve:       "tecOWNER_RESERVE",
	ResultSeqTooLow:          "tecSEQ_TOO_LOW",
}

func (r ResultCode) String() string {
	if n, ok := resultNames[r]; ok {
		return n
	}
	return fmt.Sprintf("tecUNKNOWN(%d)", int(r))
}

func (r ResultCode) Success() bool { return r == ResultSuccess }
