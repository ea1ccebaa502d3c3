package core

// invariants.go implements the seven invariants (spec.md §3): six checked
// after every transaction, and the ledger-chain invariant checked when a
// ledger closes. It also holds the snapshot/rollback machinery the apply protocol
// uses (§4.3 steps 2 and 5).
//
// Grounded on the spec's own §9 redesign note ("Invariant snapshot/
// rollback -> value-copy with deterministic iteration"): snapshot the
// full set of mutable ledger collections by value, and on rollback
// restore them wholesale in one deterministic step. The teacher's
// `ledger.go` takes the same "snapshot whole maps, discard on failure"
// shape in its `snapshot`/`prune` pair, just over blocks rather than
// accounts.
import "fmt"

// ledgerSnapshot is a deep copy of every mutable ledger collection, taken
// before dispatch (spec.md §4.3 step 2) and restored in full on invariant
// failure (step 5). Full-state copies are simpler to reason about
// correctly than touched-subset diffing, which matters more here than
// squeezing out allocation cost — nothing in this core is on a hot path
// that assumes per-transaction throughput at the scale a production
// validator would need.
type ledgerSnapshot struct {
	Accounts            map[Address]*Account
	SpentKeyImages      map[string]bool
	AppliedTxIDs        map[Hash]bool
	ConfidentialOutputs map[string]*ConfidentialOutput
	TotalSupply         Micro
	TotalBurned         Micro
	TotalMinted         Micro
	Escrows             map[string]*Escrow
	Channels            map[string]*PaymentChannel
	Checks              map[string]*Check
	NextOfferID         uint64

	OrderBook *orderBookSnapshot
	Staking   *stakingSnapshot
	AMM       *ammSnapshot
	NFT       *nftSnapshot
	Managers  *extraManagersSnapshot
}

func (l *LedgerState) snapshot() *ledgerSnapshot {
	s := &ledgerSnapshot{
		Accounts:            make(map[Address]*Account, len(l.Accounts)),
		SpentKeyImages:      make(map[string]bool, len(l.SpentKeyImages)),
		AppliedTxIDs:        make(map[Hash]bool, len(l.AppliedTxIDs)),
		ConfidentialOutputs: make(map[string]*ConfidentialOutput, len(l.ConfidentialOutputs)),
		TotalSupply:         l.TotalSupply,
		TotalBurned:         l.TotalBurned,
		TotalMinted:         l.TotalMinted,
		Escrows:             make(map[string]*Escrow, len(l.Escrows)),
		Channels:            make(map[string]*PaymentChannel, len(l.Channels)),
		Checks:              make(map[string]*Check, len(l.Checks)),
		NextOfferID:         l.nextOfferID,
	}
	for k, v := range l.Accounts {
		s.Accounts[k] = v.Clone()
	}
	for k, v := range l.SpentKeyImages {
		s.SpentKeyImages[k] = v
	}
	for k, v := range l.AppliedTxIDs {
		s.AppliedTxIDs[k] = v
	}
	for k, v := range l.ConfidentialOutputs {
		s.ConfidentialOutputs[k] = v.Clone()
	}
	for k, v := range l.Escrows {
		cp := *v
		s.Escrows[k] = &cp
	}
	for k, v := range l.Channels {
		cp := *v
		s.Channels[k] = &cp
	}
	for k, v := range l.Checks {
		cp := *v
		s.Checks[k] = &cp
	}
	s.OrderBook = l.OrderBook.snapshot()
	s.Staking = l.StakingPool.snapshot()
	s.AMM = l.AMM.snapshot()
	s.NFT = l.NFTs.snapshot()
	s.Managers = l.Managers.snapshot()
	return s
}

// restore replaces every mutable collection with the snapshot's contents,
// restoring in deterministic (sorted-by-key via map assignment, which is
// itself order-independent) fashion — the restore operation reassigns
// whole maps rather than iterating and patching, so there is no
// dependency on iteration order at all (spec.md §9).
func (l *LedgerState) restore(s *ledgerSnapshot) {
	l.Accounts = s.Accounts
	l.SpentKeyImages = s.SpentKeyImages
	l.AppliedTxIDs = s.AppliedTxIDs
	l.ConfidentialOutputs = s.ConfidentialOutputs
	l.TotalSupply = s.TotalSupply
	l.TotalBurned = s.TotalBurned
	l.TotalMinted = s.TotalMinted
	l.Escrows = s.Escrows
	l.Channels = s.Channels
	l.Checks = s.Checks
	l.nextOfferID = s.NextOfferID
	l.OrderBook.restore(s.OrderBook)
	l.StakingPool.restore(s.Staking)
	l.AMM.restore(s.AMM)
	l.NFTs.restore(s.NFT)
	l.Managers.restore(s.Managers)
}

// verifyInvariants checks invariants 1-6 from spec.md §3 against the
// current (post-mutation) state; invariant 7 is verifyLedgerChain, run by
// CloseLedger. Returns a non-nil error naming the first
// violated invariant; the apply protocol maps any violation to
// ResultInvariantFailed and triggers a full rollback.
func verifyInvariants(l *LedgerState) error {
	if err := invariantSupplyConservation(l); err != nil {
		return err
	}
	if err := invariantSupplyDistribution(l); err != nil {
		return err
	}
	if err := invariantTrustLineLimits(l); err != nil {
		return err
	}
	if err := invariantKeyImagesUnique(l); err != nil {
		return err
	}
	if err := invariantAppliedTxIDsUnique(l); err != nil {
		return err
	}
	if err := invariantReserves(l); err != nil {
		return err
	}
	return nil
}

// 1. total_supply = initial_supply - total_burned + total_minted, >= 0.
func invariantSupplyConservation(l *LedgerState) error {
	expected := l.InitialSupply.Sub(l.TotalBurned).Add(l.TotalMinted)
	if l.TotalSupply.Cmp(expected) != 0 {
		return fmt.Errorf("invariant 1 violated: total_supply=%s expected=%s", l.TotalSupply, expected)
	}
	if l.TotalSupply.Sign() < 0 {
		return fmt.Errorf("invariant 1 violated: total_supply negative (%s)", l.TotalSupply)
	}
	return nil
}

// 2. total_supply = sum(account balances) + escrowed/channel/AMM balances
// + active stake principal.
func invariantSupplyDistribution(l *LedgerState) error {
	sum := MicroZero()
	for _, a := range l.Accounts {
		sum = sum.Add(a.Balance)
	}
	for _, e := range l.Escrows {
		if !e.Finished && !e.Cancelled {
			sum = sum.Add(e.Amount)
		}
	}
	for _, c := range l.Channels {
		sum = sum.Add(c.Remaining())
	}
	sum = sum.Add(l.AMM.totalNativeLocked())
	sum = sum.Add(l.StakingPool.totalPrincipalLocked())

	if sum.Cmp(l.TotalSupply) != 0 {
		return fmt.Errorf("invariant 2 violated: distributed=%s total_supply=%s", sum, l.TotalSupply)
	}
	return nil
}

// 3. No trust line has balance > limit unless flagged as a partial-payment
// delivery. The state machine clamps deliveries to the limit before
// crediting (see payment.go), so by the time this runs no line should ever
// exceed its limit; this check exists to catch a handler bug, not normal
// operation.
func invariantTrustLineLimits(l *LedgerState) error {
	for addr, a := range l.Accounts {
		for _, key := range a.SortedTrustLineKeys() {
			tl := a.TrustLines[key]
			if tl.Limit.IsZero() {
				continue // no limit configured (issuer-side lines, etc.)
			}
			if tl.Balance.GreaterThan(tl.Limit) {
				return fmt.Errorf("invariant 3 violated: %s trust line %s/%s balance %s exceeds limit %s",
					addr, tl.Key.Currency, tl.Key.Issuer, tl.Balance, tl.Limit)
			}
		}
	}
	return nil
}

// 4. Every spent key image appears at most once. Guaranteed by construction
// (SpentKeyImages is a set), checked here to surface any handler bug loudly
// rather than silently.
func invariantKeyImagesUnique(l *LedgerState) error {
	seen := make(map[string]bool, len(l.SpentKeyImages))
	for k := range l.SpentKeyImages {
		if seen[k] {
			return fmt.Errorf("invariant 4 violated: key image %s recorded more than once", k)
		}
		seen[k] = true
	}
	return nil
}

// 5. Every applied_tx_id is unique. Same rationale as invariant 4.
func invariantAppliedTxIDsUnique(l *LedgerState) error {
	seen := make(map[Hash]bool, len(l.AppliedTxIDs))
	for k := range l.AppliedTxIDs {
		if seen[k] {
			return fmt.Errorf("invariant 5 violated: tx_id %s recorded more than once", k.Hex())
		}
		seen[k] = true
	}
	return nil
}

// 6. Each account's balance >= reserve after the transaction. Handlers
// also check the reserve inline (statemachine.go's enforceReserve); this
// pass is the final backstop run against every account, not just the
// touched one. No exception is made for a transaction that reduced
// ownership: every account must meet its reserve.
func invariantReserves(l *LedgerState) error {
	for addr, a := range l.Accounts {
		if !l.Reserve.MeetsReserve(a.Balance, a.OwnerCount) {
			return fmt.Errorf("invariant 6 violated: %s balance %s below reserve for owner_count %d",
				addr, a.Balance, a.OwnerCount)
		}
	}
	return nil
}

// verifyLedgerChain is invariant 7, checked across closed headers rather
// than after every transaction (spec.md §3 "Closed ledgers form a strict
// chain").
func verifyLedgerChain(headers []*LedgerHeader) error {
	for i := 1; i < len(headers); i++ {
		prev, cur := headers[i-1], headers[i]
		if cur.ParentHash != prev.Hash {
			return fmt.Errorf("invariant 7 violated: ledger %d parent_hash != ledger %d hash", cur.Sequence, prev.Sequence)
		}
		if cur.Sequence != prev.Sequence+1 {
			return fmt.Errorf("invariant 7 violated: ledger %d sequence is not %d+1", cur.Sequence, prev.Sequence)
		}
	}
	return nil
}
