package core

// account.go implements the Account and TrustLine data model (spec.md §3)
// and the owner-reserve formula (§4.3.5).
//
// Grounded on core/common_structs.go's struct-field grouping and
// core/account_and_balance_operations.go's accessor style (teacher:
// orbas1-Synnergy), adapted from the teacher's single native-balance
// account to one carrying trust lines, offers, and the XRPL-style flag
// set this domain needs.
import "sort"

// AccountFlags is the {require_dest, disable_master, default_ripple,
// global_freeze, deposit_auth, allow_clawback, require_auth} flag set
// (spec.md §3).
type AccountFlags struct {
	RequireDest    bool
	DisableMaster  bool
	DefaultRipple  bool
	GlobalFreeze   bool
	DepositAuth    bool
	AllowClawback  bool
	RequireAuth    bool
}

// TrustLineKey identifies a trust line by its three-part composite key.
type TrustLineKey struct {
	Holder   Address
	Currency CurrencyCode
	Issuer   Address
}

// TrustLine is a directed IOU credit relation (holder, currency, issuer)
// (spec.md §3).
type TrustLine struct {
	Key         TrustLineKey
	Balance     Micro // positive: issuer owes holder; holder's asset
	Limit       Micro
	PeerLimit   Micro
	NoRipple    bool
	Frozen      bool
	Authorized  bool
	QualityIn   int64 // parts-per-billion multiplier, 1_000_000_000 == 1.0
	QualityOut  int64
}

const qualityUnit = 1_000_000_000

func defaultQuality() int64 { return qualityUnit }

// Empty reports whether the line is eligible for removal: zero balance,
// zero limit and zero peer limit (spec.md §3 "destroyed when balance=0
// and limit=0").
func (t *TrustLine) Empty() bool {
	return t.Balance.IsZero() && t.Limit.IsZero() && t.PeerLimit.IsZero()
}

// Offer is an open order book entry owned by an account (spec.md §4.3.3).
type Offer struct {
	OfferID   uint64
	Account   Address
	TakerPays Amount
	TakerGets Amount
	Sequence  int64
}

// Account is identified by its address (spec.md §3).
type Account struct {
	Address        Address
	Balance        Micro
	NextSequence   int64
	OwnerCount     int64
	TrustLines     map[TrustLineKey]*TrustLine
	OpenOffers     []uint64
	TransferRate   int64 // parts-per-billion, 1_000_000_000 == 1.0, range [1.0,2.0]
	Flags          AccountFlags
	RegularKey     Address
	Domain         string
	Preauthorized  map[Address]bool
	Tickets        []int64
	KeyType        string
}

// NewAccount creates a fresh account with zero balance, sequence 1 (the
// first valid sequence number), and a no-fee transfer rate.
func NewAccount(addr Address) *Account {
	return &Account{
		Address:       addr,
		Balance:       MicroZero(),
		NextSequence:  1,
		TrustLines:    make(map[TrustLineKey]*TrustLine),
		Preauthorized: make(map[Address]bool),
		TransferRate:  qualityUnit,
	}
}

func (a *Account) TrustLine(cur CurrencyCode, issuer Address) (*TrustLine, bool) {
	tl, ok := a.TrustLines[TrustLineKey{Holder: a.Address, Currency: cur, Issuer: issuer}]
	return tl, ok
}

func (a *Account) SetTrustLine(tl *TrustLine) {
	a.TrustLines[tl.Key] = tl
}

func (a *Account) RemoveTrustLine(key TrustLineKey) {
	delete(a.TrustLines, key)
}

// SortedTrustLineKeys returns trust-line keys in deterministic order, used
// by invariant checking and snapshotting so iteration never depends on Go's
// randomised map order.
func (a *Account) SortedTrustLineKeys() []TrustLineKey {
	keys := make([]TrustLineKey, 0, len(a.TrustLines))
	for k := range a.TrustLines {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Holder != keys[j].Holder {
			return keys[i].Holder < keys[j].Holder
		}
		if keys[i].Currency != keys[j].Currency {
			return keys[i].Currency < keys[j].Currency
		}
		return keys[i].Issuer < keys[j].Issuer
	})
	return keys
}

// Clone returns a deep copy of the account, used for invariant-rollback
// snapshots (spec.md §4.3 step 2, §9 "value-copy with deterministic
// iteration").
func (a *Account) Clone() *Account {
	cp := *a
	cp.TrustLines = make(map[TrustLineKey]*TrustLine, len(a.TrustLines))
	for k, v := range a.TrustLines {
		tlCopy := *v
		cp.TrustLines[k] = &tlCopy
	}
	cp.OpenOffers = append([]uint64(nil), a.OpenOffers...)
	cp.Preauthorized = make(map[Address]bool, len(a.Preauthorized))
	for k, v := range a.Preauthorized {
		cp.Preauthorized[k] = v
	}
	cp.Tickets = append([]int64(nil), a.Tickets...)
	return &cp
}

// Reserve parameters (spec.md §4.3.5 defaults).
const (
	DefaultBaseReserve = 10_000_000   // 10.0 native units in micro-units
	DefaultOwnerInc    = 2_000_000    // 2.0 native units in micro-units
)

// ReserveParams carries the configurable base reserve / owner-reserve
// increment (spec.md §6.5 "reserve parameters").
type ReserveParams struct {
	BaseReserve Micro
	OwnerInc    Micro
}

func DefaultReserveParams() ReserveParams {
	return ReserveParams{
		BaseReserve: MicroFromInt(DefaultBaseReserve),
		OwnerInc:    MicroFromInt(DefaultOwnerInc),
	}
}

// OwnerReserve computes owner_reserve(account) = BASE_RESERVE + OWNER_INC *
// max(0, owner_count) (spec.md §4.3.5).
func (p ReserveParams) OwnerReserve(ownerCount int64) Micro {
	oc := ownerCount
	if oc < 0 {
		oc = 0
	}
	return p.BaseReserve.Add(p.OwnerInc.MulRat(oc, 1))
}

// MeetsReserve reports whether balance satisfies the reserve requirement
// for the given owner_count.
func (p ReserveParams) MeetsReserve(balance Micro, ownerCount int64) bool {
	return !balance.LessThan(p.OwnerReserve(ownerCount))
}
