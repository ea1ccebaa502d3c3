package core

// payment.go implements applyPayment (tx_type 0), the state machine's most
// involved handler: it branches into the confidential (Monero-style) path
// and the transparent (XRPL-style) path (spec.md §4.3.1).
//
// Grounded on core/transactions.go's Payment handler shape (teacher:
// orbas1-Synnergy) — fetch accounts, validate flags, move value, return a
// result code — generalised to the confidential/transparent branch and to
// multi-hop rippling via rippling.go.
import (
	"encoding/hex"

	"github.com/sirupsen/logrus"
)

func applyPayment(l *LedgerState, tx *Transaction, src *Account) (ResultCode, *Micro) {
	if tx.IsConfidential() {
		return applyConfidentialPayment(l, tx, src)
	}
	return applyTransparentPayment(l, tx, src)
}

// applyConfidentialPayment handles the Monero-style branch: verify the
// range proof and ring signature, check for key-image reuse (double
// -spend), and record a new confidential output. No amounts are visible to
// the state machine — commitments and proofs are the only inputs (spec.md
// §4.3.1 "Confidential branch").
func applyConfidentialPayment(l *LedgerState, tx *Transaction, src *Account) (ResultCode, *Micro) {
	kiHex := hexKey(tx.KeyImage)
	if l.SpentKeyImages[kiHex] {
		return ResultKeyImageSpent, nil
	}

	stealthHex := StealthHex(tx.StealthAddress)
	if _, used := l.ConfidentialOutputs[stealthHex]; used {
		return ResultNoPermission, nil
	}

	if len(tx.RangeProof) == 0 || len(tx.Commitment) == 0 || len(tx.RingSignature) == 0 {
		return ResultBadSig, nil
	}
	if !l.Crypto.RangeVerify(tx.RangeProof, tx.Commitment) {
		return ResultBadSig, nil
	}
	if !l.Crypto.RingVerify(tx.RingSignature, tx.SerializeForSigning()) {
		return ResultBadSig, nil
	}
	extractedKI, err := l.Crypto.KeyImageOf(tx.RingSignature)
	if err != nil || hexKey(extractedKI) != kiHex {
		return ResultBadSig, nil
	}

	l.SpentKeyImages[kiHex] = true
	l.ConfidentialOutputs[stealthHex] = &ConfidentialOutput{
		Commitment:     append([]byte(nil), tx.Commitment...),
		StealthAddress: append([]byte(nil), tx.StealthAddress...),
		EphemeralPub:   append([]byte(nil), tx.StealthAddress...),
		RangeProof:     append([]byte(nil), tx.RangeProof...),
		ViewTag:        0,
		TxID:           tx.TxID,
		Spent:          false,
	}

	l.Logger.WithFields(logrus.Fields{
		"tx_id":      tx.TxID.Hex(),
		"key_image":  kiHex,
		"stealth":    stealthHex,
	}).Info("confidential payment applied")

	return ResultSuccess, nil
}

// applyTransparentPayment handles the XRPL-style branch: native transfers
// move balance directly; IOU transfers use the direct trust line if one
// exists, falling back to multi-hop rippling (rippling.go) otherwise.
// Rate and quality multipliers truncate toward zero (Micro.MulRat) on both
// the sender debit and the recipient credit; nothing is rounded up. A
// delivery that falls short of the requested amount returns
// ResultPartialPayment, which Apply treats as a failure and rolls back, so
// a partial amount is never delivered (see DESIGN.md).
func applyTransparentPayment(l *LedgerState, tx *Transaction, src *Account) (ResultCode, *Micro) {
	if tx.Destination.Empty() {
		return ResultNoEntry, nil
	}

	dst, dstExists := l.Accounts[tx.Destination]
	if !dstExists {
		if tx.Amount.IsNative() && tx.Amount.Value.GreaterThan(MicroZero()) {
			dst = l.getOrCreateAccount(tx.Destination)
		} else {
			return ResultNoEntry, nil
		}
	}
	if dst.Flags.RequireDest && tx.DestinationTag == 0 {
		return ResultDstTagNeeded, nil
	}
	if dst.Flags.DepositAuth {
		if !dst.Preauthorized[tx.Account] {
			return ResultNoPermission, nil
		}
	}

	if tx.Amount.IsNative() {
		return applyNativePayment(l, tx, src, dst)
	}
	return applyIOUPayment(l, tx, src, dst)
}

func applyNativePayment(l *LedgerState, tx *Transaction, src, dst *Account) (ResultCode, *Micro) {
	amt := tx.Amount.Value
	if amt.Sign() <= 0 {
		return ResultNoEntry, nil
	}
	if src.Balance.LessThan(amt) {
		return ResultUnfunded, nil
	}
	if rc := enforceReserve(l, src); !rc.Success() {
		proposed := src.Balance.Sub(amt)
		if !l.Reserve.MeetsReserve(proposed, src.OwnerCount) {
			return ResultOwnerReserve, nil
		}
	}
	src.Balance = src.Balance.Sub(amt)
	dst.Balance = dst.Balance.Add(amt)
	delivered := amt
	return ResultSuccess, &delivered
}

func applyIOUPayment(l *LedgerState, tx *Transaction, src, dst *Account) (ResultCode, *Micro) {
	cur := tx.Amount.Currency
	issuer := tx.Amount.Issuer
	amt := tx.Amount.Value
	if amt.Sign() <= 0 {
		return ResultNoEntry, nil
	}

	if issuerAcct, ok := l.Accounts[issuer]; ok && issuerAcct.Flags.GlobalFreeze {
		if src.Address != issuer && dst.Address != issuer {
			return ResultGlobalFreeze, nil
		}
	}

	srcLine, srcHasLine := src.TrustLine(cur, issuer)
	dstLine, dstHasLine := dst.TrustLine(cur, issuer)
	if !dstHasLine && src.Address != issuer && dst.Address != issuer {
		return ResultNoLine, nil
	}

	direct := (src.Address == issuer || dst.Address == issuer) ||
		(srcHasLine && dstHasLine)

	if direct {
		return settleDirectIOU(l, tx, src, dst, srcLine, dstLine, cur, issuer, amt)
	}

	// No direct line: attempt multi-hop rippling (spec.md §4.3.2).
	graph := BuildTrustGraph(l, cur, issuer)
	cand, ok := graph.FindPath(src.Address, dst.Address, amt)
	if !ok {
		return ResultNoLine, nil
	}
	rc := ExecuteRipplePath(graph, cand.path, cand.delivered)
	if !rc.Success() {
		return rc, nil
	}
	delivered := cand.delivered
	if delivered.LessThan(amt) {
		return ResultPartialPayment, &delivered
	}
	return ResultSuccess, &delivered
}

// settleDirectIOU handles the single-hop case. The sender's line is debited
// by amount x issuer.transfer_rate x the sender line's quality_out; the
// recipient's line is credited by amount x the recipient line's quality_in
// (spec.md §4.3.1 step 6).
func settleDirectIOU(l *LedgerState, tx *Transaction, src, dst *Account, srcLine, dstLine *TrustLine, cur CurrencyCode, issuer Address, amt Micro) (ResultCode, *Micro) {
	if dst.Flags.RequireAuth && dstHasNoAuthLine(dstLine) {
		return ResultRequireAuth, nil
	}

	issuerAcct, hasIssuer := l.Accounts[issuer]
	transferRate := int64(qualityUnit)
	if hasIssuer {
		transferRate = issuerAcct.TransferRate
	}

	effectiveAmt := amt
	if src.Address != issuer {
		if srcLine == nil || srcLine.Frozen {
			return ResultFrozen, nil
		}
		if srcLine.NoRipple {
			return ResultNoRipple, nil
		}
		effectiveAmt = amt.MulRat(transferRate, qualityUnit).MulRat(srcLine.QualityOut, qualityUnit)
		if srcLine.Balance.LessThan(effectiveAmt) {
			return ResultUnfunded, nil
		}
		srcLine.Balance = srcLine.Balance.Sub(effectiveAmt)
	}

	delivered := amt
	if dst.Address != issuer {
		if dstLine == nil {
			dstLine = dst.getOrCreateTrustLine(cur, issuer)
		}
		if dstLine.Frozen {
			return ResultFrozen, nil
		}
		delivered = amt.MulRat(dstLine.QualityIn, qualityUnit)
		newBal := dstLine.Balance.Add(delivered)
		if !dstLine.Limit.IsZero() && newBal.GreaterThan(dstLine.Limit) {
			delivered = dstLine.Limit.Sub(dstLine.Balance)
			if delivered.Sign() < 0 {
				delivered = MicroZero()
			}
			newBal = dstLine.Limit
		}
		dstLine.Balance = newBal
	}

	if delivered.LessThan(amt) {
		return ResultPartialPayment, &delivered
	}
	return ResultSuccess, &delivered
}

func dstHasNoAuthLine(dstLine *TrustLine) bool {
	return dstLine == nil || !dstLine.Authorized
}

func (a *Account) getOrCreateTrustLine(cur CurrencyCode, issuer Address) *TrustLine {
	key := TrustLineKey{Holder: a.Address, Currency: cur, Issuer: issuer}
	if tl, ok := a.TrustLines[key]; ok {
		return tl
	}
	tl := &TrustLine{Key: key, QualityIn: defaultQuality(), QualityOut: defaultQuality()}
	a.TrustLines[key] = tl
	return tl
}

func hexKey(b []byte) string { return hex.EncodeToString(b) }
