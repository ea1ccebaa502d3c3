package core

import "testing"

func TestCloseLedgerChainsHeaders(t *testing.T) {
	l, genesis := newTestLedger(t)
	dest := Address("dest")
	fundedAccount(l, dest, NewMicro(0, 0))

	pay := &Transaction{
		TxType:  TxPayment,
		Account: genesis,
		Destination: dest,
		Amount:  NativeAmount(NewMicro(10, 0)),
		TxID:    txID(l, "pay-1"),
	}
	if rc := l.Apply(pay); rc != ResultSuccess {
		t.Fatalf("payment failed: %v", rc)
	}

	first := l.CloseLedger(1000)
	if first.Sequence != 1 {
		t.Fatalf("expected first closed sequence 1, got %d", first.Sequence)
	}
	if !first.ParentHash.IsZero() {
		t.Fatalf("expected zero parent_hash for the genesis close")
	}
	if first.TxCount != 1 {
		t.Fatalf("expected tx_count 1, got %d", first.TxCount)
	}
	if len(l.PendingTxns) != 0 {
		t.Fatalf("expected pending_txns reset after close")
	}

	second := l.CloseLedger(2000)
	if second.Sequence != first.Sequence+1 {
		t.Fatalf("expected sequence to increment by 1")
	}
	if second.ParentHash != first.Hash {
		t.Fatalf("expected parent_hash to chain to the prior header's hash")
	}
	if err := verifyLedgerChain(l.Headers); err != nil {
		t.Fatalf("chain invariant violated: %v", err)
	}
}

func TestCloseLedgerIsDeterministicAcrossOrdering(t *testing.T) {
	l1, g1 := newTestLedger(t)
	l2, g2 := newTestLedger(t)
	dest := Address("dest")
	fundedAccount(l1, dest, NewMicro(10, 0))
	fundedAccount(l2, dest, NewMicro(10, 0))

	payA1 := &Transaction{TxType: TxPayment, Account: g1, Destination: dest, Amount: NativeAmount(NewMicro(5, 0)), TxID: txID(l1, "a")}
	payB1 := &Transaction{TxType: TxPayment, Account: g1, Destination: dest, Sequence: 0, Amount: NativeAmount(NewMicro(7, 0)), TxID: txID(l1, "b")}
	payA2 := &Transaction{TxType: TxPayment, Account: g2, Destination: dest, Amount: NativeAmount(NewMicro(5, 0)), TxID: txID(l2, "a")}
	payB2 := &Transaction{TxType: TxPayment, Account: g2, Destination: dest, Amount: NativeAmount(NewMicro(7, 0)), TxID: txID(l2, "b")}

	for _, tx := range []*Transaction{payA1, payB1} {
		if rc := l1.Apply(tx); rc != ResultSuccess {
			t.Fatalf("l1 apply failed: %v", rc)
		}
	}
	for _, tx := range []*Transaction{payB2, payA2} {
		if rc := l2.Apply(tx); rc != ResultSuccess {
			t.Fatalf("l2 apply failed: %v", rc)
		}
	}
	l1.PendingTxns = []*Transaction{payA1, payB1}
	l2.PendingTxns = []*Transaction{payB2, payA2}

	h1 := l1.CloseLedger(500)
	h2 := l2.CloseLedger(500)

	if h1.TxHash != h2.TxHash {
		t.Fatalf("expected identical tx_hash regardless of pending_txns insertion order")
	}
	if h1.StateHash != h2.StateHash {
		t.Fatalf("expected identical state_hash for identical resulting states")
	}
	if h1.Hash != h2.Hash {
		t.Fatalf("expected identical header hash for two validators applying the same tx set")
	}
}
