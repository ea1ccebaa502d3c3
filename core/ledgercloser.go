package core

// ledgercloser.go implements close_ledger, the eight-step procedure that
// seals the open ledger state into an immutable, hash-chained header
// (spec.md §4.4). close_time is pinned by the caller (the consensus
// engine's agreed round output), never read from the wall clock — the
// closer itself performs no time.Now() call anywhere in its path.
//
// Grounded on core/ledger.go's applyBlock/SealMainBlockPOW header-sealing
// flow (snapshot -> mutate -> hash -> append) (teacher: orbas1-Synnergy),
// reworked from the teacher's PoW nonce-search sealing into RPCA's
// externally-agreed close_time and the authenticated-map-backed tx_hash/
// state_hash this domain's determinism requirement needs.
import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// CloseLedger runs the full eight-step close procedure and appends the
// resulting header. Returns the new header.
func (l *LedgerState) CloseLedger(closeTime int64) *LedgerHeader {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Step 1: parent_hash.
	var parentHash Hash
	if n := len(l.Headers); n > 0 {
		parentHash = l.Headers[n-1].Hash
	}

	// Step 2: instantiate the header at current_sequence.
	header := &LedgerHeader{
		Sequence:   l.CurrentSequence,
		ParentHash: parentHash,
		CloseTime:  closeTime,
	}

	// Step 3: mature stakes.
	l.StakingPool.ProcessMaturities(l, closeTime)

	// Step 4: canonical transaction ordering.
	ordered := append([]*Transaction(nil), l.PendingTxns...)
	sort.Slice(ordered, func(i, j int) bool { return txLess(ordered[i], ordered[j]) })

	// Step 5: tx_hash over a fresh authenticated map of tx_ids.
	txMap := NewAuthenticatedMap()
	for _, tx := range ordered {
		txMap.Put(tx.TxID, tx.TxID[:])
	}
	header.TxHash = txMap.Root()
	header.TxCount = int64(len(ordered))

	// Step 6: state_hash over account digests (sorted address order) plus
	// confidential outputs keyed "ct:"+stealth_hex.
	header.StateHash = l.computeStateHash()

	// Step 7: total_native and header hash.
	header.TotalNative = l.TotalSupply
	header.Hash = l.Crypto.Hash256(serializeHeader(header))

	// Step 8: append, reset pending_txns, bump sequence.
	l.Headers = append(l.Headers, header)
	l.PendingTxns = nil
	l.CurrentSequence++

	// Invariant 7: the closed-header chain itself must stay a strict
	// hash/sequence chain. A failure here is a programmer error, not a
	// transaction-level fault (spec.md §7) — it never rolls back, only
	// logs, since open-ledger state has already been reset above.
	if err := verifyLedgerChain(l.Headers); err != nil {
		l.Logger.WithError(err).Error("ledger chain invariant violated after close")
	}

	l.Logger.WithFields(logrus.Fields{
		"sequence":  header.Sequence,
		"tx_count":  header.TxCount,
		"hash":      header.Hash.Short(),
		"tx_hash":   header.TxHash.Short(),
		"state_hash": header.StateHash.Short(),
	}).Info("ledger closed")

	return header
}

// txLess implements the (tx_type, account, sequence, tx_id) canonical
// ordering (spec.md §4.4 step 4).
func txLess(a, b *Transaction) bool {
	if a.TxType != b.TxType {
		return a.TxType < b.TxType
	}
	if a.Account != b.Account {
		return a.Account < b.Account
	}
	if a.Sequence != b.Sequence {
		return a.Sequence < b.Sequence
	}
	return bytes.Compare(a.TxID[:], b.TxID[:]) < 0
}

// computeStateHash builds the authenticated map over every account's
// (address, balance, sequence) digest in sorted address order, plus each
// confidential output keyed "ct:"+stealth_hex with value = commitment hex.
func (l *LedgerState) computeStateHash() Hash {
	stateMap := NewAuthenticatedMap()

	addrs := make([]Address, 0, len(l.Accounts))
	for addr := range l.Accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for _, addr := range addrs {
		a := l.Accounts[addr]
		key := l.Crypto.Hash256([]byte(addr))
		stateMap.Put(key, accountDigest(a))
	}

	for stealthHex, out := range l.ConfidentialOutputs {
		key := l.Crypto.Hash256([]byte("ct:" + stealthHex))
		stateMap.Put(key, []byte(hexKey(out.Commitment)))
	}

	return stateMap.Root()
}

// accountDigest encodes (address, balance, sequence) as the value stored
// against an account's state-hash entry.
func accountDigest(a *Account) []byte {
	var buf bytes.Buffer
	buf.WriteString(string(a.Address))
	balBytes := a.Balance.Big().Bytes()
	buf.Write(balBytes)
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(a.NextSequence))
	buf.Write(seq[:])
	return buf.Bytes()
}

// serializeHeader builds the exact byte layout spec.md §6.4 defines:
// i64 BE sequence || UTF-8 parent_hash_hex || UTF-8 tx_hash_hex ||
// UTF-8 state_hash_hex || i64 BE close_time || i64 BE tx_count ||
// f64 BE total_native.
func serializeHeader(h *LedgerHeader) []byte {
	var buf bytes.Buffer

	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], uint64(h.Sequence))
	buf.Write(seqBuf[:])

	buf.WriteString(h.ParentHash.Hex())
	buf.WriteString(h.TxHash.Hex())
	buf.WriteString(h.StateHash.Hex())

	var closeBuf [8]byte
	binary.BigEndian.PutUint64(closeBuf[:], uint64(h.CloseTime))
	buf.Write(closeBuf[:])

	var countBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], uint64(h.TxCount))
	buf.Write(countBuf[:])

	var totalBuf [8]byte
	binary.BigEndian.PutUint64(totalBuf[:], math.Float64bits(h.TotalNative.Float64()))
	buf.Write(totalBuf[:])

	return buf.Bytes()
}
