package core

// ledger.go implements the open ledger state (spec.md §3 "Ledger state
// (open)") and the read-only query surface collaborators consume (§6.1).
//
// Grounded on core/ledger.go's `Ledger` struct/method style — RWMutex
// -guarded maps, `logrus` info logs on mutation, config-struct
// construction (teacher: orbas1-Synnergy) — generalised from the
// teacher's block/UTXO/contract ledger to this domain's account/trust
// -line/confidential-output ledger.
import (
	"encoding/hex"
	"sync"

	"github.com/sirupsen/logrus"
)

// LedgerHeader is immutable after close (spec.md §3).
type LedgerHeader struct {
	Sequence    int64
	ParentHash  Hash
	TxHash      Hash
	StateHash   Hash
	CloseTime   int64
	TxCount     int64
	TotalNative Micro
	Hash        Hash
}

// AccountDelta captures an account's state before and after a transaction,
// for metadata (spec.md §4.3 step 6).
type AccountDelta struct {
	Address Address
	Before  *Account
	After   *Account
}

// TxMetadata is the per-transaction record appended to the ledger's
// metadata list after every apply (spec.md §4.3 step 6).
type TxMetadata struct {
	TxID             Hash
	TxType           TxType
	Result           ResultCode
	Touched          []AccountDelta
	DeliveredAmount  *Micro
	Message          string
}

// LedgerConfig seeds a fresh LedgerState (spec.md §6.5).
type LedgerConfig struct {
	GenesisAccount Address
	InitialSupply  Micro
	Reserve        ReserveParams
	Crypto         CryptoProvider
	Logger         *logrus.Logger
}

// LedgerState is the open ledger: the Ledger exclusively owns all
// Accounts, ConfidentialOutputs, and sub-engine state (spec.md §3
// "Ownership").
type LedgerState struct {
	mu sync.RWMutex

	Accounts            map[Address]*Account
	SpentKeyImages      map[string]bool
	AppliedTxIDs        map[Hash]bool
	ConfidentialOutputs map[string]*ConfidentialOutput
	PendingTxns         []*Transaction
	Metadata            []*TxMetadata

	CurrentSequence int64
	TotalSupply     Micro
	InitialSupply   Micro
	TotalBurned     Micro
	TotalMinted     Micro

	Reserve ReserveParams
	Crypto  CryptoProvider

	OrderBook   *OrderBook
	StakingPool *StakingPool
	Escrows     map[string]*Escrow
	Channels    map[string]*PaymentChannel
	Checks      map[string]*Check
	AMM         *AMMManager
	NFTs        *NFTManager
	Managers    *ExtraManagers

	Headers []*LedgerHeader

	Logger *logrus.Logger

	nextOfferID uint64
}

// NewLedgerState constructs a fresh open ledger with a single genesis
// account holding the entire initial supply, as the concrete end-to-end
// scenarios in spec.md §8 assume.
func NewLedgerState(cfg LedgerConfig) *LedgerState {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	reserve := cfg.Reserve
	if reserve.BaseReserve.IsZero() && reserve.OwnerInc.IsZero() {
		reserve = DefaultReserveParams()
	}

	ls := &LedgerState{
		Accounts:            make(map[Address]*Account),
		SpentKeyImages:      make(map[string]bool),
		AppliedTxIDs:        make(map[Hash]bool),
		ConfidentialOutputs: make(map[string]*ConfidentialOutput),
		CurrentSequence:     1,
		TotalSupply:         cfg.InitialSupply,
		InitialSupply:       cfg.InitialSupply,
		TotalBurned:         MicroZero(),
		TotalMinted:         MicroZero(),
		Reserve:             reserve,
		Crypto:              cfg.Crypto,
		Escrows:             make(map[string]*Escrow),
		Channels:            make(map[string]*PaymentChannel),
		Checks:              make(map[string]*Check),
		Logger:              log,
	}
	ls.OrderBook = NewOrderBook(ls)
	ls.StakingPool = NewStakingPool(ls)
	ls.AMM = NewAMMManager(ls)
	ls.NFTs = NewNFTManager(ls)
	ls.Managers = NewExtraManagers(ls)

	genesis := NewAccount(cfg.GenesisAccount)
	genesis.Balance = cfg.InitialSupply
	ls.Accounts[cfg.GenesisAccount] = genesis

	ls.Logger.WithFields(logrus.Fields{
		"genesis_account": cfg.GenesisAccount,
		"initial_supply":  cfg.InitialSupply.String(),
	}).Info("ledger initialised")
	return ls
}

//---------------------------------------------------------------------
// Internal helpers (used by statemachine.go and friends; not part of the
// external read-only query surface).
//---------------------------------------------------------------------

func (l *LedgerState) getOrCreateAccount(addr Address) *Account {
	if a, ok := l.Accounts[addr]; ok {
		return a
	}
	a := NewAccount(addr)
	l.Accounts[addr] = a
	return a
}

func (l *LedgerState) nextOffer() uint64 {
	l.nextOfferID++
	return l.nextOfferID
}

//---------------------------------------------------------------------
// Read-only query surface (spec.md §6.1).
//---------------------------------------------------------------------

// GetAccount returns a defensive copy of the account, or nil if absent.
func (l *LedgerState) GetAccount(addr Address) *Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.Accounts[addr]
	if !ok {
		return nil
	}
	return a.Clone()
}

// GetBalance returns an account's native balance.
func (l *LedgerState) GetBalance(addr Address) (Micro, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.Accounts[addr]
	if !ok {
		return MicroZero(), false
	}
	return a.Balance, true
}

// GetTrustLine returns a defensive copy of a trust line, if it exists.
func (l *LedgerState) GetTrustLine(holder Address, cur CurrencyCode, issuer Address) (*TrustLine, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.Accounts[holder]
	if !ok {
		return nil, false
	}
	tl, ok := a.TrustLine(cur, issuer)
	if !ok {
		return nil, false
	}
	cp := *tl
	return &cp, true
}

// GetConfidentialOutput returns the note at the given stealth-address hex
// key.
func (l *LedgerState) GetConfidentialOutput(stealthHex string) (*ConfidentialOutput, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.ConfidentialOutputs[stealthHex]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// GetAllConfidentialOutputs returns defensive copies of every note.
func (l *LedgerState) GetAllConfidentialOutputs() map[string]*ConfidentialOutput {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*ConfidentialOutput, len(l.ConfidentialOutputs))
	for k, v := range l.ConfidentialOutputs {
		out[k] = v.Clone()
	}
	return out
}

// IsKeyImageSpent reports whether the given key image has already been
// recorded as spent.
func (l *LedgerState) IsKeyImageSpent(keyImage []byte) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.SpentKeyImages[hex.EncodeToString(keyImage)]
}

// IsStealthAddressUsed reports whether a confidential output already
// exists under the given stealth-address hex.
func (l *LedgerState) IsStealthAddressUsed(stealthHex string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ConfidentialOutputs[stealthHex]
	return ok
}

// StateSummary is a read-only snapshot of ledger-wide counters.
type StateSummary struct {
	CurrentSequence int64
	TotalSupply     Micro
	InitialSupply   Micro
	TotalBurned     Micro
	TotalMinted     Micro
	AccountCount    int
	LastHash        Hash
}

// GetStateSummary returns a read-only snapshot of the ledger's counters.
func (l *LedgerState) GetStateSummary() StateSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var last Hash
	if n := len(l.Headers); n > 0 {
		last = l.Headers[n-1].Hash
	}
	return StateSummary{
		CurrentSequence: l.CurrentSequence,
		TotalSupply:     l.TotalSupply,
		InitialSupply:   l.InitialSupply,
		TotalBurned:     l.TotalBurned,
		TotalMinted:     l.TotalMinted,
		AccountCount:    len(l.Accounts),
		LastHash:        last,
	}
}

// LastHeader returns the most recently closed header, or nil for genesis.
func (l *LedgerState) LastHeader() *LedgerHeader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.Headers) == 0 {
		return nil
	}
	return l.Headers[len(l.Headers)-1]
}
