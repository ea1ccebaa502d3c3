package core

import "testing"

func TestAccountDeleteRequiresSequenceFloor(t *testing.T) {
	l, genesis := newTestLedger(t)
	dest := Address("dest")
	fundedAccount(l, dest, NewMicro(0, 0))

	src := l.Accounts[genesis]
	src.NextSequence = 10

	del := &Transaction{TxType: TxAccountDelete, Account: genesis, Destination: dest, Body: AccountDeleteBody{}, TxID: txID(l, "del-1")}
	if rc := l.Apply(del); rc != ResultSeqTooLow {
		t.Fatalf("expected ResultSeqTooLow below the sequence floor, got %v", rc)
	}
	if _, ok := l.Accounts[genesis]; !ok {
		t.Fatalf("account should survive a rejected delete")
	}
}

func TestAccountDeleteRejectsNonZeroOwnerCount(t *testing.T) {
	l, genesis := newTestLedger(t)
	dest := Address("dest")
	fundedAccount(l, dest, NewMicro(0, 0))

	src := l.Accounts[genesis]
	src.NextSequence = accountDeleteMinSequence
	src.OwnerCount = 1

	del := &Transaction{TxType: TxAccountDelete, Account: genesis, Destination: dest, Body: AccountDeleteBody{}, TxID: txID(l, "del-2")}
	if rc := l.Apply(del); rc != ResultNoEntry {
		t.Fatalf("expected ResultNoEntry with a non-zero owner_count, got %v", rc)
	}
}

func TestAccountDeleteSweepsBalanceToDestination(t *testing.T) {
	l, genesis := newTestLedger(t)
	dest := Address("dest")
	fundedAccount(l, dest, NewMicro(0, 0))

	src := l.Accounts[genesis]
	src.NextSequence = accountDeleteMinSequence
	srcBalance := src.Balance

	del := &Transaction{TxType: TxAccountDelete, Account: genesis, Destination: dest, Body: AccountDeleteBody{}, TxID: txID(l, "del-3")}
	if rc := l.Apply(del); rc != ResultSuccess {
		t.Fatalf("expected success deleting an eligible account, got %v", rc)
	}
	if _, ok := l.Accounts[genesis]; ok {
		t.Fatalf("expected source account entry removed")
	}
	if l.Accounts[dest].Balance.Cmp(srcBalance) != 0 {
		t.Fatalf("expected destination to receive the full residual balance, got %s want %s", l.Accounts[dest].Balance, srcBalance)
	}
}

func TestAccountDeleteRejectsSelfDestination(t *testing.T) {
	l, genesis := newTestLedger(t)
	src := l.Accounts[genesis]
	src.NextSequence = accountDeleteMinSequence

	del := &Transaction{TxType: TxAccountDelete, Account: genesis, Destination: genesis, Body: AccountDeleteBody{}, TxID: txID(l, "del-4")}
	if rc := l.Apply(del); rc != ResultNoPermission {
		t.Fatalf("expected ResultNoPermission deleting into self, got %v", rc)
	}
}
