package core

// trustset.go implements the TrustSet handler: create or update a trust
// line, process its flag bits, and keep owner_count in sync with
// first-creation / full-removal (spec.md §4.3.4 "TrustSet").
//
// Grounded on common_structs.go's TrustLine-adjacent flag idioms and
// core/stake_penalty.go's namespaced mutation style (teacher:
// orbas1-Synnergy).
func applyTrustSet(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(TrustSetBody)
	if !ok {
		return ResultNoEntry
	}
	if tx.LimitAmount == nil {
		return ResultNoEntry
	}
	limit := *tx.LimitAmount
	if limit.IsNative() {
		return ResultNoEntry
	}

	key := TrustLineKey{Holder: src.Address, Currency: limit.Currency, Issuer: limit.Issuer}
	tl, existed := src.TrustLines[key]
	created := false
	if !existed {
		tl = &TrustLine{Key: key, QualityIn: defaultQuality(), QualityOut: defaultQuality()}
		created = true
	}

	tl.Limit = limit.Value
	if body.SetAuth {
		tl.Authorized = true
	}
	if body.ClearAuth {
		tl.Authorized = false
	}
	if body.SetNoRipple {
		tl.NoRipple = true
	}
	if body.ClearNoRipple {
		tl.NoRipple = false
	}
	if body.SetFreeze {
		tl.Frozen = true
	}
	if body.ClearFreeze {
		tl.Frozen = false
	}
	if body.QualityIn != nil {
		tl.QualityIn = *body.QualityIn
	}
	if body.QualityOut != nil {
		tl.QualityOut = *body.QualityOut
	}

	if tl.Empty() && !created {
		src.RemoveTrustLine(key)
		if src.OwnerCount > 0 {
			src.OwnerCount--
		}
		return ResultSuccess
	}

	src.SetTrustLine(tl)
	if created {
		src.OwnerCount++
		if rc := enforceReserve(l, src); !rc.Success() {
			src.RemoveTrustLine(key)
			src.OwnerCount--
			return rc
		}
	}
	return ResultSuccess
}
