package core

// statemachine.go implements the single state-machine entry point,
// `Apply(tx) -> result_code` (spec.md §4.3), including the seven-step
// apply protocol and the preamble common to every handler.
//
// Grounded on core/ledger.go's `applyBlock` control flow (snapshot ->
// mutate -> persist), generalised from per-block to per-transaction
// snapshot/rollback (teacher: orbas1-Synnergy).
import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Apply is the state machine's sole entry point (spec.md §6.1
// "State-machine submit"). It is deterministic given (ledger_state, tx):
// no wall-clock reads, no unseeded randomness, no iteration over unordered
// containers without sorting.
func (l *LedgerState) Apply(tx *Transaction) ResultCode {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Step 1: duplicate suppression.
	if l.AppliedTxIDs[tx.TxID] {
		l.recordMetadata(tx, ResultDuplicate, nil, nil)
		return ResultDuplicate
	}

	// Step 2: snapshot.
	snap := l.snapshot()

	// Step 3: dispatch, including the common preamble inside it.
	src, rc := commonPreamble(l, tx)
	var delivered *Micro
	if rc.Success() {
		rc, delivered = dispatch(l, tx, src)
	}

	if !rc.Success() {
		l.restore(snap)
		l.recordMetadata(tx, rc, nil, nil)
		return rc
	}

	// Step 4: invariant verification (success path only).
	if err := verifyInvariants(l); err != nil {
		l.Logger.WithFields(logrus.Fields{
			"tx_id": tx.TxID.Hex(),
			"error": err.Error(),
		}).Warn("invariant check failed, rolling back transaction")
		// Step 5: rollback on invariant failure.
		l.restore(snap)
		l.recordMetadata(tx, ResultInvariantFailed, nil, nil)
		return ResultInvariantFailed
	}

	// Final success: bump sequence, then step 7 commit.
	src.NextSequence++
	l.PendingTxns = append(l.PendingTxns, tx)
	l.AppliedTxIDs[tx.TxID] = true

	// Step 6: metadata record (diffed against the pre-dispatch snapshot).
	l.recordMetadataFromSnapshot(tx, rc, delivered, snap)

	return rc
}

// commonPreamble fetches the source account, validates sequence, and
// debits+burns the fee (spec.md §4.3 "Common preamble"). Sequence is
// *not* incremented here — only on final transaction success, per spec.
func commonPreamble(l *LedgerState, tx *Transaction) (*Account, ResultCode) {
	src, ok := l.Accounts[tx.Account]
	if !ok {
		return nil, ResultUnfunded
	}
	if tx.Sequence != 0 {
		if tx.Sequence < src.NextSequence {
			return nil, ResultSeqTooLow
		}
		if tx.Sequence != src.NextSequence {
			return nil, ResultBadSeq
		}
	}
	fee := tx.Fee.Value
	if src.Balance.LessThan(fee) {
		return nil, ResultInsufFee
	}
	src.Balance = src.Balance.Sub(fee)
	l.TotalSupply = l.TotalSupply.Sub(fee)
	l.TotalBurned = l.TotalBurned.Add(fee)
	return src, ResultSuccess
}

// enforceReserve checks the owner-reserve invariant inline (spec.md
// §4.3.5), for handlers that want to fail fast rather than rely solely on
// the post-dispatch invariant pass.
func enforceReserve(l *LedgerState, a *Account) ResultCode {
	if !l.Reserve.MeetsReserve(a.Balance, a.OwnerCount) {
		return ResultOwnerReserve
	}
	return ResultSuccess
}

// dispatch routes to the handler matching tx.TxType (spec.md §4.3 step 3).
// Unknown types succeed without mutation.
func dispatch(l *LedgerState, tx *Transaction, src *Account) (ResultCode, *Micro) {
	switch tx.TxType {
	case TxPayment:
		return applyPayment(l, tx, src)
	case TxTrustSet:
		return applyTrustSet(l, tx, src), nil
	case TxOfferCreate:
		return applyOfferCreate(l, tx, src), nil
	case TxOfferCancel:
		return applyOfferCancel(l, tx, src), nil
	case TxEscrowCreate:
		return applyEscrowCreate(l, tx, src), nil
	case TxEscrowFinish:
		return applyEscrowFinish(l, tx, src), nil
	case TxEscrowCancel:
		return applyEscrowCancel(l, tx, src), nil
	case TxPayChanCreate:
		return applyPayChanCreate(l, tx, src), nil
	case TxPayChanFund:
		return applyPayChanFund(l, tx, src), nil
	case TxPayChanClaim:
		return applyPayChanClaim(l, tx, src), nil
	case TxCheckCreate:
		return applyCheckCreate(l, tx, src), nil
	case TxCheckCash:
		return applyCheckCash(l, tx, src), nil
	case TxCheckCancel:
		return applyCheckCancel(l, tx, src), nil
	case TxStake:
		return applyStake(l, tx, src), nil
	case TxUnstake:
		return applyUnstake(l, tx, src), nil
	case TxClawback:
		return applyClawback(l, tx, src), nil
	case TxAMMCreate:
		return applyAMMCreate(l, tx, src), nil
	case TxAMMDeposit:
		return applyAMMDeposit(l, tx, src), nil
	case TxAMMWithdraw:
		return applyAMMWithdraw(l, tx, src), nil
	case TxAMMVote:
		return applyAMMVote(l, tx, src), nil
	case TxAMMBid:
		return applyAMMBid(l, tx, src), nil
	case TxAMMDelete:
		return applyAMMDelete(l, tx, src), nil
	case TxNFTMint:
		return applyNFTMint(l, tx, src), nil
	case TxNFTBurn:
		return applyNFTBurn(l, tx, src), nil
	case TxNFTOfferCreate:
		return applyNFTOfferCreate(l, tx, src), nil
	case TxNFTOfferAccept:
		return applyNFTOfferAccept(l, tx, src), nil
	case TxNFTOfferCancel:
		return applyNFTOfferCancel(l, tx, src), nil
	case TxOracleSet:
		return applyOracleSet(l, tx, src), nil
	case TxDIDSet:
		return applyDIDSet(l, tx, src), nil
	case TxMPTIssue:
		return applyMPTIssue(l, tx, src), nil
	case TxCredentialCreate:
		return applyCredentialCreate(l, tx, src), nil
	case TxXChainClaim:
		return applyXChainClaim(l, tx, src), nil
	case TxHooksSet:
		return applyHooksSet(l, tx, src), nil
	case TxAccountDelete:
		return applyAccountDelete(l, tx, src), nil
	default:
		return ResultSuccess, nil
	}
}

// recordMetadata appends a metadata record with the given deltas. Failed
// transactions (duplicate, preamble, handler or invariant failure) pass
// nil deltas, since their state has been restored; successful ones come
// through recordMetadataFromSnapshot.
func (l *LedgerState) recordMetadata(tx *Transaction, rc ResultCode, delivered *Micro, touched []AccountDelta) {
	l.Metadata = append(l.Metadata, &TxMetadata{
		TxID:            tx.TxID,
		TxType:          tx.TxType,
		Result:          rc,
		Touched:         touched,
		DeliveredAmount: delivered,
		Message:         rc.String(),
	})
}

// recordMetadataFromSnapshot diffs the pre-dispatch snapshot against
// current state to build before/after account deltas, sorted by address,
// for every account still present that is new or whose balance, sequence,
// owner count or trust lines changed. An account removed by the
// transaction gets no delta.
func (l *LedgerState) recordMetadataFromSnapshot(tx *Transaction, rc ResultCode, delivered *Micro, snap *ledgerSnapshot) {
	var touched []AccountDelta
	seen := make(map[Address]bool)
	for addr, after := range l.Accounts {
		before := snap.Accounts[addr]
		if before == nil || !accountsEqual(before, after) {
			touched = append(touched, AccountDelta{Address: addr, Before: before, After: after.Clone()})
		}
		seen[addr] = true
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i].Address < touched[j].Address })
	l.recordMetadata(tx, rc, delivered, touched)
}

func accountsEqual(a, b *Account) bool {
	if a.Balance.Cmp(b.Balance) != 0 {
		return false
	}
	if a.NextSequence != b.NextSequence || a.OwnerCount != b.OwnerCount {
		return false
	}
	if len(a.TrustLines) != len(b.TrustLines) {
		return false
	}
	for k, tl := range a.TrustLines {
		otl, ok := b.TrustLines[k]
		if !ok || tl.Balance.Cmp(otl.Balance) != 0 || tl.Limit.Cmp(otl.Limit) != 0 {
			return false
		}
	}
	return true
}
