package core

// accountops.go implements AccountDelete (spec.md §4.3.4 "AccountDelete"):
// requires owner_count == 0, no remaining trust lines, and sequence >=
// 256 (a spam heuristic carried over verbatim, not a general anti-spam
// mechanism), then transfers the residual balance to the destination and
// removes the account entry entirely.
//
// Grounded on core/account_and_balance_operations.go's
// CreateAccount/DeleteAccount pair (teacher: orbas1-Synnergy), adapted
// from an unconditional map delete to the gated, balance-sweeping
// deletion spec.md names.
const accountDeleteMinSequence = 256

func applyAccountDelete(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	if _, ok := tx.Body.(AccountDeleteBody); !ok {
		return ResultNoEntry
	}
	if src.OwnerCount != 0 {
		return ResultNoEntry
	}
	if len(src.TrustLines) != 0 {
		return ResultNoEntry
	}
	if src.NextSequence < accountDeleteMinSequence {
		return ResultSeqTooLow
	}
	if tx.Destination == src.Address {
		return ResultNoPermission
	}

	dst := l.getOrCreateAccount(tx.Destination)
	dst.Balance = dst.Balance.Add(src.Balance)
	delete(l.Accounts, src.Address)
	return ResultSuccess
}
