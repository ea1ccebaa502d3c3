package core

// escrow.go implements the Escrow, PaymentChannel, and Check families
// (spec.md §4.3.4): conditional/time-locked native transfers, incremental
// -claim payment channels, and deferred-pull checks.
//
// Grounded directly on core/escrow.go's EscrowParty/EscrowContract struct
// and its `google/uuid` ID allocation (teacher: orbas1-Synnergy),
// generalised from a module-account-mediated multi-party escrow to the
// single-destination, condition/time-gated ledger entries spec.md names;
// "now" for every time gate is the transaction's own `timestamp` field
// (externally supplied, never the wall clock — spec.md §9 determinism
// note), not a module-account balance.
import (
	"bytes"

	"github.com/google/uuid"
)

// Escrow locks native funds until a time or hash-preimage condition is
// satisfied.
type Escrow struct {
	ID          string
	Creator     Address
	Destination Address
	Amount      Micro
	Condition   []byte
	FinishAfter int64
	CancelAfter int64
	Finished    bool
	Cancelled   bool
}

// PaymentChannel allows the source to authorize incremental claims up to
// its funded amount without an on-chain transaction per claim.
type PaymentChannel struct {
	ID          string
	Source      Address
	Destination Address
	Amount      Micro // total funded into the channel
	Balance     Micro // cumulative amount claimed so far
	SettleDelay int64
	PublicKey   []byte
	CancelAfter int64
	Closed      bool
}

// Remaining is the amount still claimable from the channel.
func (c *PaymentChannel) Remaining() Micro {
	if c.Closed {
		return MicroZero()
	}
	return c.Amount.Sub(c.Balance)
}

// Check is a deferred pull payment: the creator authorizes the
// destination to later cash up to SendMax.
type Check struct {
	ID          string
	Creator     Address
	Destination Address
	SendMax     Micro
	Currency    CurrencyCode
	Issuer      Address
	Expiration  int64
	Cashed      bool
	Cancelled   bool
}

//---------------------------------------------------------------------
// Escrow
//---------------------------------------------------------------------

func applyEscrowCreate(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(EscrowCreateBody)
	if !ok || !tx.Amount.IsNative() || tx.Amount.Value.Sign() <= 0 {
		return ResultNoEntry
	}
	if src.Balance.LessThan(tx.Amount.Value) {
		return ResultUnfunded
	}
	src.Balance = src.Balance.Sub(tx.Amount.Value)

	esc := &Escrow{
		ID:          uuid.New().String(),
		Creator:     src.Address,
		Destination: tx.Destination,
		Amount:      tx.Amount.Value,
		Condition:   append([]byte(nil), body.Condition...),
		FinishAfter: body.FinishAfter,
		CancelAfter: body.CancelAfter,
	}
	l.Escrows[esc.ID] = esc
	src.OwnerCount++
	return enforceReserve(l, src)
}

func applyEscrowFinish(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(EscrowFinishBody)
	if !ok {
		return ResultNoEntry
	}
	esc, exists := l.Escrows[body.EscrowID]
	if !exists || esc.Finished || esc.Cancelled {
		return ResultNoEntry
	}
	if esc.FinishAfter != 0 && tx.Timestamp < esc.FinishAfter {
		return ResultEscrowNotReady
	}
	if len(esc.Condition) > 0 {
		digest := l.Crypto.Hash256(body.Fulfillment)
		if !bytes.Equal(digest[:], esc.Condition) {
			return ResultEscrowBadCondition
		}
	}

	dst := l.getOrCreateAccount(esc.Destination)
	dst.Balance = dst.Balance.Add(esc.Amount)
	esc.Finished = true
	if creator, ok := l.Accounts[esc.Creator]; ok && creator.OwnerCount > 0 {
		creator.OwnerCount--
	}
	return ResultSuccess
}

func applyEscrowCancel(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(EscrowCancelBody)
	if !ok {
		return ResultNoEntry
	}
	esc, exists := l.Escrows[body.EscrowID]
	if !exists || esc.Finished || esc.Cancelled {
		return ResultNoEntry
	}
	if esc.CancelAfter != 0 && tx.Timestamp < esc.CancelAfter {
		return ResultEscrowNotReady
	}

	creator := l.getOrCreateAccount(esc.Creator)
	creator.Balance = creator.Balance.Add(esc.Amount)
	esc.Cancelled = true
	if creator.OwnerCount > 0 {
		creator.OwnerCount--
	}
	return ResultSuccess
}

//---------------------------------------------------------------------
// Payment channel
//---------------------------------------------------------------------

func applyPayChanCreate(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(PayChanCreateBody)
	if !ok || !tx.Amount.IsNative() || tx.Amount.Value.Sign() <= 0 {
		return ResultNoEntry
	}
	if src.Balance.LessThan(tx.Amount.Value) {
		return ResultUnfunded
	}
	src.Balance = src.Balance.Sub(tx.Amount.Value)

	ch := &PaymentChannel{
		ID:          uuid.New().String(),
		Source:      src.Address,
		Destination: tx.Destination,
		Amount:      tx.Amount.Value,
		Balance:     MicroZero(),
		SettleDelay: body.SettleDelay,
		PublicKey:   append([]byte(nil), body.PublicKey...),
		CancelAfter: body.CancelAfter,
	}
	l.Channels[ch.ID] = ch
	src.OwnerCount++
	return enforceReserve(l, src)
}

func applyPayChanFund(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(PayChanFundBody)
	if !ok {
		return ResultNoEntry
	}
	ch, exists := l.Channels[body.ChannelID]
	if !exists || ch.Closed {
		return ResultNoEntry
	}
	if ch.Source != src.Address {
		return ResultNoPermission
	}
	if !tx.Amount.IsNative() || tx.Amount.Value.Sign() <= 0 {
		return ResultNoEntry
	}
	if src.Balance.LessThan(tx.Amount.Value) {
		return ResultUnfunded
	}
	src.Balance = src.Balance.Sub(tx.Amount.Value)
	ch.Amount = ch.Amount.Add(tx.Amount.Value)
	if body.Expiration != 0 {
		ch.CancelAfter = body.Expiration
	}
	return ResultSuccess
}

func applyPayChanClaim(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(PayChanClaimBody)
	if !ok {
		return ResultNoEntry
	}
	ch, exists := l.Channels[body.ChannelID]
	if !exists || ch.Closed {
		return ResultNoEntry
	}
	if ch.CancelAfter != 0 && tx.Timestamp > ch.CancelAfter {
		return ResultPaychanExpired
	}

	newBalance := body.Balance.Value
	if newBalance.LessThan(ch.Balance) {
		return ResultNoPermission
	}
	delta := newBalance.Sub(ch.Balance)
	if delta.GreaterThan(ch.Remaining()) {
		return ResultUnfunded
	}
	if delta.Sign() > 0 {
		dst := l.getOrCreateAccount(ch.Destination)
		dst.Balance = dst.Balance.Add(delta)
		ch.Balance = newBalance
	}

	if body.Close {
		remainder := ch.Remaining()
		srcAcct := l.getOrCreateAccount(ch.Source)
		if remainder.Sign() > 0 {
			srcAcct.Balance = srcAcct.Balance.Add(remainder)
			ch.Balance = ch.Amount
		}
		ch.Closed = true
		if srcAcct.OwnerCount > 0 {
			srcAcct.OwnerCount--
		}
	}
	return ResultSuccess
}

//---------------------------------------------------------------------
// Check
//---------------------------------------------------------------------

func applyCheckCreate(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(CheckCreateBody)
	if !ok || body.SendMax.Value.Sign() <= 0 {
		return ResultNoEntry
	}
	chk := &Check{
		ID:          uuid.New().String(),
		Creator:     src.Address,
		Destination: tx.Destination,
		SendMax:     body.SendMax.Value,
		Currency:    body.SendMax.Currency,
		Issuer:      body.SendMax.Issuer,
		Expiration:  body.Expiration,
	}
	l.Checks[chk.ID] = chk
	src.OwnerCount++
	return enforceReserve(l, src)
}

func applyCheckCash(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(CheckCashBody)
	if !ok {
		return ResultNoEntry
	}
	chk, exists := l.Checks[body.CheckID]
	if !exists || chk.Cashed || chk.Cancelled {
		return ResultNoEntry
	}
	if chk.Destination != src.Address {
		return ResultNoPermission
	}
	if chk.Expiration != 0 && tx.Timestamp > chk.Expiration {
		return ResultCheckExpired
	}

	deliver := chk.SendMax
	if body.Amount != nil {
		if body.Amount.Value.GreaterThan(chk.SendMax) {
			return ResultNoEntry
		}
		deliver = body.Amount.Value
	}
	if body.DeliverMin != nil && deliver.LessThan(body.DeliverMin.Value) {
		return ResultNoEntry
	}

	creator, ok := l.Accounts[chk.Creator]
	if !ok {
		return ResultNoEntry
	}
	asset := Amount{Value: deliver, Currency: chk.Currency, Issuer: chk.Issuer}
	if rc := moveAsset(l, creator, src, asset); !rc.Success() {
		return rc
	}

	chk.Cashed = true
	if creator.OwnerCount > 0 {
		creator.OwnerCount--
	}
	return ResultSuccess
}

func applyCheckCancel(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(CheckCancelBody)
	if !ok {
		return ResultSuccess
	}
	chk, exists := l.Checks[body.CheckID]
	if !exists {
		return ResultSuccess
	}
	if chk.Creator != src.Address && chk.Destination != src.Address {
		return ResultNoPermission
	}
	if chk.Cashed || chk.Cancelled {
		return ResultSuccess
	}
	chk.Cancelled = true
	if creator, ok := l.Accounts[chk.Creator]; ok && creator.OwnerCount > 0 {
		creator.OwnerCount--
	}
	return ResultSuccess
}
