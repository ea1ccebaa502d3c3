package core

// transaction.go implements the Transaction data model and its signing
// preimage (spec.md §6.3), replacing the source's dynamic flags dictionary
// with a tagged variant per §9's redesign note: `TransactionBody` has one
// concrete type per tx_type carrying only that type's extra fields: the
// fields common to (almost) every handler — destination, amount, fee,
// sequence, timestamp, the optional amounts/integers, memo, and the
// privacy fields — live directly on Transaction because they are exactly
// what the wire preimage in §6.3 enumerates.
//
// Grounded on core/common_structs.go's Transaction struct and
// core/tx_types.go's enum style (teacher: orbas1-Synnergy); the preimage
// layout itself is new, defined by spec.md §6.3.
import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
)

// TxType enumerates every transaction family the state machine dispatches
// on (spec.md §4.3.4). Payment is type 0 per spec.md §4.3.1.
type TxType int32

const (
	TxPayment TxType = iota
	TxTrustSet
	TxOfferCreate
	TxOfferCancel
	TxEscrowCreate
	TxEscrowFinish
	TxEscrowCancel
	TxPayChanCreate
	TxPayChanFund
	TxPayChanClaim
	TxCheckCreate
	TxCheckCash
	TxCheckCancel
	TxStake
	TxUnstake
	TxClawback
	TxAMMCreate
	TxAMMDeposit
	TxAMMWithdraw
	TxAMMVote
	TxAMMBid
	TxAMMDelete
	TxNFTMint
	TxNFTBurn
	TxNFTOfferCreate
	TxNFTOfferAccept
	TxNFTOfferCancel
	TxOracleSet
	TxDIDSet
	TxMPTIssue
	TxCredentialCreate
	TxXChainClaim
	TxHooksSet
	TxAccountDelete
)

// TransactionBody is the sealed sum type holding tx-type-specific fields
// not already covered by Transaction's common envelope. Each handler type
// -asserts to the variant it expects.
type TransactionBody interface {
	isTransactionBody()
}

type bodyMarker struct{}

func (bodyMarker) isTransactionBody() {}

type PaymentBody struct{ bodyMarker }

type TrustSetBody struct {
	bodyMarker
	SetAuth       bool
	ClearAuth     bool
	SetNoRipple   bool
	ClearNoRipple bool
	SetFreeze     bool
	ClearFreeze   bool
	QualityIn     *int64
	QualityOut    *int64
}

type OfferCreateBody struct {
	bodyMarker
	ImmediateOrCancel bool
	FillOrKill        bool
}

type OfferCancelBody struct {
	bodyMarker
	OfferID uint64
}

type EscrowCreateBody struct {
	bodyMarker
	Condition   []byte
	FinishAfter int64
	CancelAfter int64
}

type EscrowFinishBody struct {
	bodyMarker
	EscrowID    string
	Fulfillment []byte
}

type EscrowCancelBody struct {
	bodyMarker
	EscrowID string
}

type PayChanCreateBody struct {
	bodyMarker
	SettleDelay int64
	PublicKey   []byte
	CancelAfter int64
}

type PayChanFundBody struct {
	bodyMarker
	ChannelID  string
	Expiration int64
}

type PayChanClaimBody struct {
	bodyMarker
	ChannelID string
	Balance   Amount
	Signature []byte
	Close     bool
}

type CheckCreateBody struct {
	bodyMarker
	SendMax    Amount
	Expiration int64
}

type CheckCashBody struct {
	bodyMarker
	CheckID    string
	Amount     *Amount
	DeliverMin *Amount
}

type CheckCancelBody struct {
	bodyMarker
	CheckID string
}

type StakeBody struct {
	bodyMarker
	Tier string
}

type UnstakeBody struct {
	bodyMarker
	StakeID string
}

type ClawbackBody struct {
	bodyMarker
	Holder Address
}

type AMMCreateBody struct {
	bodyMarker
	Amount2    Amount
	TradingFee int64
}

type AMMDepositBody struct {
	bodyMarker
	Amount2    *Amount
	LPTokenOut *Amount
}

type AMMWithdrawBody struct {
	bodyMarker
	Amount2   Amount
	LPTokenIn Amount
}

type AMMVoteBody struct {
	bodyMarker
	Amount2    Amount
	TradingFee int64
}

type AMMBidBody struct {
	bodyMarker
	Amount2 Amount
	BidMin  *Amount
	BidMax  *Amount
}

type AMMDeleteBody struct {
	bodyMarker
	Amount2 Amount
}

type NFTMintBody struct {
	bodyMarker
	URI         string
	TransferFee int64
	Taxon       uint32
}

type NFTBurnBody struct {
	bodyMarker
	TokenID string
}

type NFTOfferCreateBody struct {
	bodyMarker
	TokenID string
	Owner   Address
	Sell    bool
}

type NFTOfferAcceptBody struct {
	bodyMarker
	OfferID string
}

type NFTOfferCancelBody struct {
	bodyMarker
	OfferID string
}

type OracleSetBody struct {
	bodyMarker
	Symbol string
	Price  Micro
}

type DIDSetBody struct {
	bodyMarker
	Document string
}

type MPTIssueBody struct {
	bodyMarker
	MaximumAmount uint64
}

type CredentialCreateBody struct {
	bodyMarker
	Subject  Address
	CredType string
}

type XChainClaimBody struct {
	bodyMarker
	AttestationID string
}

type HooksSetBody struct {
	bodyMarker
	CodeHash Hash
}

type AccountDeleteBody struct{ bodyMarker }

// Transaction is the top-level envelope (spec.md §9's "Transaction {
// header, body, signature }"); the fields below double as the "header"
// since every one of them (aside from Body/TxID/Signature/RingSignature) participates
// in the §6.3 signing preimage.
type Transaction struct {
	TxType      TxType
	Account     Address
	Destination Address
	Amount      Amount
	Fee         Amount
	Sequence    int64
	Timestamp   int64

	LimitAmount *Amount
	TakerPays   *Amount
	TakerGets   *Amount

	OfferSequence  int64
	DestinationTag int64
	SourceTag      int64

	Memo string

	// Privacy fields (confidential branch, spec.md §4.3.1).
	Commitment     []byte
	StealthAddress []byte
	RangeProof     []byte
	KeyImage       []byte
	RingSignature  []byte // excluded from its own preimage, per §6.3 item 11

	Flags map[string]bool

	Body TransactionBody

	TxID      Hash
	Signature []byte
}

// IsConfidential reports whether this is a confidential payment (branches
// on key_image presence per spec.md §4.3.1).
func (t *Transaction) IsConfidential() bool {
	return len(t.KeyImage) > 0
}

func putAmount(buf *bytes.Buffer, a Amount) {
	var f [8]byte
	binary.BigEndian.PutUint64(f[:], math.Float64bits(a.Value.Float64()))
	buf.Write(f[:])

	var cur [3]byte
	copy(cur[:], []byte(a.Currency))
	buf.Write(cur[:])

	var iss [40]byte
	copy(iss[:], []byte(a.Issuer))
	buf.Write(iss[:])
}

func putI64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

// SerializeForSigning builds the exact byte preimage spec.md §6.3 defines.
// Deterministic: two logically-equal transactions always produce
// byte-identical output (spec.md §8 "round-trip / idempotence").
func (t *Transaction) SerializeForSigning() []byte {
	var buf bytes.Buffer

	var typeBuf [4]byte
	binary.BigEndian.PutUint32(typeBuf[:], uint32(t.TxType))
	buf.Write(typeBuf[:])

	buf.WriteString(string(t.Account))
	buf.WriteString(string(t.Destination))

	putAmount(&buf, t.Amount)
	putAmount(&buf, t.Fee)

	putI64(&buf, t.Sequence)
	putI64(&buf, t.Timestamp)

	if t.LimitAmount != nil {
		putAmount(&buf, *t.LimitAmount)
	}
	if t.TakerPays != nil {
		putAmount(&buf, *t.TakerPays)
	}
	if t.TakerGets != nil {
		putAmount(&buf, *t.TakerGets)
	}

	if t.OfferSequence != 0 {
		putI64(&buf, t.OfferSequence)
	}
	if t.DestinationTag != 0 {
		putI64(&buf, t.DestinationTag)
	}
	if t.SourceTag != 0 {
		putI64(&buf, t.SourceTag)
	}

	buf.WriteString(t.Memo)

	buf.Write(t.Commitment)
	buf.Write(t.StealthAddress)
	buf.Write(t.RangeProof)
	buf.Write(t.KeyImage)

	if len(t.Flags) > 0 {
		keys := make([]string, 0, len(t.Flags))
		for k := range t.Flags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]bool, len(t.Flags))
		for _, k := range keys {
			ordered[k] = t.Flags[k]
		}
		enc, _ := json.Marshal(ordered)
		buf.Write(enc)
	}

	return buf.Bytes()
}

// ComputeTxID derives the transaction id: hash256(preimage) for
// transparent transactions, hash256(preimage || ring_signature) for
// confidential ones (spec.md §6.3).
func ComputeTxID(crypto CryptoProvider, t *Transaction) Hash {
	preimage := t.SerializeForSigning()
	if t.IsConfidential() {
		preimage = append(preimage, t.RingSignature...)
	}
	return crypto.Hash256(preimage)
}

// SigningDigest is hash256 of the preimage alone — what Signature is
// computed and verified against (spec.md §6.3 "signing digest").
func SigningDigest(crypto CryptoProvider, t *Transaction) Hash {
	return crypto.Hash256(t.SerializeForSigning())
}
