package core

// clawback.go implements the Clawback handler (spec.md §4.3.4
// "Clawback"): an issuer with allow_clawback set may debit a holder's
// trust-line balance by the claim amount, clamped to the holder's current
// balance.
//
// Grounded on core/stake_penalty.go's namespaced-key mutation idiom
// (teacher: orbas1-Synnergy), generalised from stake slashing to trust
// -line debits.
func applyClawback(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(ClawbackBody)
	if !ok {
		return ResultNoEntry
	}
	if !src.Flags.AllowClawback {
		return ResultClawbackDisabled
	}
	amt := tx.Amount
	if amt.IsNative() || amt.Issuer != src.Address {
		return ResultNoEntry
	}

	holder, ok := l.Accounts[body.Holder]
	if !ok {
		return ResultNoEntry
	}
	tl, ok := holder.TrustLine(amt.Currency, amt.Issuer)
	if !ok || tl.Balance.Sign() <= 0 {
		return ResultNoEntry
	}

	claim := MicroMin(amt.Value, tl.Balance)
	tl.Balance = tl.Balance.Sub(claim)
	return ResultSuccess
}
