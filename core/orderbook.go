package core

// orderbook.go implements the OfferCreate/OfferCancel handlers and the
// order-matching book they operate on (spec.md §4.3.3), including
// auto-bridged settlement through the native currency as pivot when
// neither leg of an offer is native.
//
// Grounded on core/amm.go's pool/edge/router structures (teacher:
// orbas1-Synnergy) — here adapted from constant-product pools to a
// price-time-priority limit order book; the bridging helper reuses the
// same "pivot through a common asset" idea amm.go's router applies to
// swap routing.
import (
	"sort"

	"github.com/sirupsen/logrus"
)

// bookKey identifies one directed order-book bucket: offers whose owner
// wants to receive `Wants` and is giving away `Gives`.
type bookKey struct {
	WantsCur CurrencyCode
	WantsIss Address
	GivesCur CurrencyCode
	GivesIss Address
}

func keyOf(wants, gives Amount) bookKey {
	return bookKey{wants.Currency, wants.Issuer, gives.Currency, gives.Issuer}
}

func (k bookKey) reverse() bookKey {
	return bookKey{k.GivesCur, k.GivesIss, k.WantsCur, k.WantsIss}
}

// restingOffer is one resting limit order. TakerPays/TakerGets shrink as
// fills consume it; the ratio TakerGets:TakerPays is fixed at creation
// time (the maker's quoted rate) and never changes.
type restingOffer struct {
	OfferID   uint64
	Account   Address
	TakerPays Amount
	TakerGets Amount
	Sequence  int64
}

// OrderBook owns every open offer and the price-time-priority buckets
// used to match new submissions against them.
type OrderBook struct {
	ledger *LedgerState
	offers map[uint64]*restingOffer
	book   map[bookKey][]uint64 // offer ids, kept sorted best-price-first
}

func NewOrderBook(l *LedgerState) *OrderBook {
	return &OrderBook{
		ledger: l,
		offers: make(map[uint64]*restingOffer),
		book:   make(map[bookKey][]uint64),
	}
}

type orderBookSnapshot struct {
	Offers map[uint64]*restingOffer
	Book   map[bookKey][]uint64
}

func (ob *OrderBook) snapshot() *orderBookSnapshot {
	s := &orderBookSnapshot{
		Offers: make(map[uint64]*restingOffer, len(ob.offers)),
		Book:   make(map[bookKey][]uint64, len(ob.book)),
	}
	for k, v := range ob.offers {
		cp := *v
		s.Offers[k] = &cp
	}
	for k, v := range ob.book {
		s.Book[k] = append([]uint64(nil), v...)
	}
	return s
}

func (ob *OrderBook) restore(s *orderBookSnapshot) {
	ob.offers = s.Offers
	ob.book = s.Book
}

// fill is one matched trade against a resting offer.
type fill struct {
	MakerID  uint64
	Maker    Address
	PayAsset Amount // amount of "pays"-currency the taker hands to the maker
	GetAsset Amount // amount of "gets"-currency the maker hands to the taker
}

// better reports whether offer a quotes a strictly better (or equal,
// earlier) rate than offer b from a taker's perspective: more Gets per
// unit Pays. Ties break by offer id (insertion order), giving price-time
// priority without needing wall-clock timestamps.
func better(a, b *restingOffer) bool {
	// a.Gets/a.Pays  vs  b.Gets/b.Pays, cross-multiplied to avoid fractions.
	lhs := a.TakerGets.Value.Big()
	lhs.Mul(lhs, b.TakerPays.Value.Big())
	rhs := b.TakerGets.Value.Big()
	rhs.Mul(rhs, a.TakerPays.Value.Big())
	cmp := lhs.Cmp(rhs)
	if cmp != 0 {
		return cmp > 0
	}
	return a.OfferID < b.OfferID
}

func (ob *OrderBook) insertSorted(k bookKey, id uint64) {
	bucket := ob.book[k]
	bucket = append(bucket, id)
	sort.Slice(bucket, func(i, j int) bool {
		return better(ob.offers[bucket[i]], ob.offers[bucket[j]])
	})
	ob.book[k] = bucket
}

func (ob *OrderBook) removeFromBucket(k bookKey, id uint64) {
	bucket := ob.book[k]
	for i, v := range bucket {
		if v == id {
			ob.book[k] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// crossBook matches an incoming demand for `wants` (paid for with `pays`,
// up to payBudget of it) against resting offers in the opposite bucket.
// Returns the fills applied (not yet settled against accounts) and how
// much of payBudget and of the wants side were consumed.
func (ob *OrderBook) crossBook(wants, pays Amount, payBudget Micro, dryRun bool) (fills []fill, paySpent, gotAmount Micro) {
	k := keyOf(wants, pays).reverse() // resting offers that want `pays` and give `wants`
	bucket := append([]uint64(nil), ob.book[k]...)

	remaining := payBudget
	paySpent = MicroZero()
	gotAmount = MicroZero()

	for _, id := range bucket {
		if remaining.IsZero() {
			break
		}
		o := ob.offers[id]
		if o == nil {
			continue
		}
		payFill := MicroMin(remaining, o.TakerPays.Value)
		if payFill.IsZero() {
			continue
		}
		num := payFill.Big()
		num.Mul(num, o.TakerGets.Value.Big())
		num.Quo(num, o.TakerPays.Value.Big())
		getFill := MicroFromBig(num)

		fills = append(fills, fill{
			MakerID:  id,
			Maker:    o.Account,
			PayAsset: Amount{Value: payFill, Currency: pays.Currency, Issuer: pays.Issuer},
			GetAsset: Amount{Value: getFill, Currency: wants.Currency, Issuer: wants.Issuer},
		})

		if !dryRun {
			o.TakerPays.Value = o.TakerPays.Value.Sub(payFill)
			o.TakerGets.Value = o.TakerGets.Value.Sub(getFill)
			if o.TakerPays.Value.IsZero() || o.TakerGets.Value.IsZero() {
				delete(ob.offers, id)
				ob.removeFromBucket(k, id)
			}
		}

		remaining = remaining.Sub(payFill)
		paySpent = paySpent.Add(payFill)
		gotAmount = gotAmount.Add(getFill)
	}
	return fills, paySpent, gotAmount
}

// settleFill moves balances/trust-line credit between maker and taker for
// one matched fill.
func settleFill(l *LedgerState, taker Address, f fill) ResultCode {
	makerAcct := l.getOrCreateAccount(f.Maker)
	takerAcct := l.getOrCreateAccount(taker)

	if rc := moveAsset(l, takerAcct, makerAcct, f.PayAsset); !rc.Success() {
		return rc
	}
	if rc := moveAsset(l, makerAcct, takerAcct, f.GetAsset); !rc.Success() {
		return rc
	}
	return ResultSuccess
}

func moveAsset(l *LedgerState, from, to *Account, amt Amount) ResultCode {
	if amt.Value.IsZero() {
		return ResultSuccess
	}
	if amt.IsNative() {
		if from.Balance.LessThan(amt.Value) {
			return ResultUnfunded
		}
		from.Balance = from.Balance.Sub(amt.Value)
		to.Balance = to.Balance.Add(amt.Value)
		return ResultSuccess
	}
	fromLine, ok := from.TrustLine(amt.Currency, amt.Issuer)
	if from.Address != amt.Issuer {
		if !ok || fromLine.Balance.LessThan(amt.Value) {
			return ResultUnfunded
		}
		fromLine.Balance = fromLine.Balance.Sub(amt.Value)
	}
	if to.Address != amt.Issuer {
		toLine := to.getOrCreateTrustLine(amt.Currency, amt.Issuer)
		toLine.Balance = toLine.Balance.Add(amt.Value)
	}
	return ResultSuccess
}

// applyOfferCreate matches the incoming offer against the book (direct,
// then native-bridged if neither leg is native and no direct liquidity
// exists), settles every fill, and rests any unfilled remainder unless
// the submission is IOC/FOK (spec.md §4.3.3).
func applyOfferCreate(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, _ := tx.Body.(OfferCreateBody)
	if tx.TakerPays == nil || tx.TakerGets == nil {
		return ResultNoEntry
	}
	takerPays, takerGets := *tx.TakerPays, *tx.TakerGets
	if takerPays.Value.Sign() <= 0 || takerGets.Value.Sign() <= 0 {
		return ResultNoEntry
	}

	allFills, paySpent, gotAmount := l.OrderBook.crossBook(takerGets, takerPays, takerPays.Value, body.FillOrKill)

	bridged := false
	if gotAmount.IsZero() && !takerPays.IsNative() && !takerGets.IsNative() {
		// Auto-bridge through native as pivot (spec.md §4.3.3 item 2).
		native := NativeAmount(MicroZero())
		_, paySpentLeg1, gotNative := l.OrderBook.crossBook(native, takerPays, takerPays.Value, true)
		if !gotNative.IsZero() {
			_, paySpentLeg2, gotFinal := l.OrderBook.crossBook(takerGets, native, gotNative, true)
			if !gotFinal.IsZero() {
				bridged = true
				fills1, ps1, gn1 := l.OrderBook.crossBook(native, takerPays, paySpentLeg1, false)
				fills2, _, gf2 := l.OrderBook.crossBook(takerGets, native, MicroMin(gn1, paySpentLeg2), false)
				allFills = append(fills1, fills2...)
				paySpent = ps1
				gotAmount = gf2
			}
		}
	}

	if body.FillOrKill && gotAmount.LessThan(takerGets.Value) {
		return ResultNoEntry
	}
	if body.FillOrKill && !bridged {
		// The fill-or-kill probe above was a dry run; consume the resting offers now.
		allFills, paySpent, gotAmount = l.OrderBook.crossBook(takerGets, takerPays, takerPays.Value, false)
	}

	for _, f := range allFills {
		if rc := settleFill(l, src.Address, f); !rc.Success() {
			return rc
		}
	}
	if bridged {
		l.Logger.WithFields(logrus.Fields{"account": src.Address}).Debug("offer settled via native auto-bridge")
	}

	remainingPays := takerPays.Value.Sub(paySpent)
	remainingGets := takerGets.Value.Sub(gotAmount)
	if remainingPays.Sign() <= 0 || remainingGets.Sign() <= 0 || body.ImmediateOrCancel || body.FillOrKill {
		return ResultSuccess
	}

	id := l.nextOffer()
	// The resting offer is stored from a future taker's side: that taker
	// pays what this submitter still wants and gets what it still gives.
	offer := &restingOffer{
		OfferID:   id,
		Account:   src.Address,
		TakerPays: Amount{Value: remainingGets, Currency: takerGets.Currency, Issuer: takerGets.Issuer},
		TakerGets: Amount{Value: remainingPays, Currency: takerPays.Currency, Issuer: takerPays.Issuer},
		Sequence:  tx.Sequence,
	}
	l.OrderBook.offers[id] = offer
	l.OrderBook.insertSorted(keyOf(offer.TakerPays, offer.TakerGets), id)
	src.OpenOffers = append(src.OpenOffers, id)
	src.OwnerCount++
	return enforceReserve(l, src)
}

// applyOfferCancel removes a matching open offer; a missing offer_id is
// not an error (spec.md §4.3.3, best-effort).
func applyOfferCancel(l *LedgerState, tx *Transaction, src *Account) ResultCode {
	body, ok := tx.Body.(OfferCancelBody)
	if !ok {
		return ResultSuccess
	}
	o, exists := l.OrderBook.offers[body.OfferID]
	if !exists || o.Account != src.Address {
		return ResultSuccess
	}
	delete(l.OrderBook.offers, body.OfferID)
	l.OrderBook.removeFromBucket(keyOf(o.TakerPays, o.TakerGets), body.OfferID)
	for i, id := range src.OpenOffers {
		if id == body.OfferID {
			src.OpenOffers = append(src.OpenOffers[:i], src.OpenOffers[i+1:]...)
			break
		}
	}
	if src.OwnerCount > 0 {
		src.OwnerCount--
	}
	return ResultSuccess
}
