package core

import "testing"

func TestOracleSetControllerOnly(t *testing.T) {
	l, genesis := newTestLedger(t)
	other := Address("other")
	fundedAccount(l, other, NewMicro(100, 0))

	set := &Transaction{TxType: TxOracleSet, Account: genesis, Body: OracleSetBody{Symbol: "XRP/USD", Price: NewMicro(1, 500000)}, TxID: txID(l, "o1")}
	if rc := l.Apply(set); rc != ResultSuccess {
		t.Fatalf("first oracle set failed: %v", rc)
	}

	badUpdate := &Transaction{TxType: TxOracleSet, Account: other, Body: OracleSetBody{Symbol: "XRP/USD", Price: NewMicro(2, 0)}, TxID: txID(l, "o2")}
	if rc := l.Apply(badUpdate); rc != ResultOracleLimit {
		t.Fatalf("expected ResultOracleLimit when a non-controller revises, got %v", rc)
	}

	goodUpdate := &Transaction{TxType: TxOracleSet, Account: genesis, Body: OracleSetBody{Symbol: "XRP/USD", Price: NewMicro(2, 0)}, TxID: txID(l, "o3")}
	if rc := l.Apply(goodUpdate); rc != ResultSuccess {
		t.Fatalf("controller revision failed: %v", rc)
	}
}

func TestDIDSetRejectsClaimBySomeoneElse(t *testing.T) {
	l, genesis := newTestLedger(t)
	other := Address("other")
	fundedAccount(l, other, NewMicro(100, 0))

	first := &Transaction{TxType: TxDIDSet, Account: genesis, Destination: genesis, Body: DIDSetBody{Document: "{}"}, TxID: txID(l, "d1")}
	if rc := l.Apply(first); rc != ResultSuccess {
		t.Fatalf("first DID set failed: %v", rc)
	}

	steal := &Transaction{TxType: TxDIDSet, Account: other, Destination: genesis, Body: DIDSetBody{Document: "{}"}, TxID: txID(l, "d2")}
	if rc := l.Apply(steal); rc != ResultDIDExists {
		t.Fatalf("expected ResultDIDExists on conflicting controller, got %v", rc)
	}
}

func TestMPTIssueCapsAtMaximum(t *testing.T) {
	l, genesis := newTestLedger(t)

	issue1 := &Transaction{TxType: TxMPTIssue, Account: genesis, Amount: NativeAmount(MicroFromInt(600)), Body: MPTIssueBody{MaximumAmount: 1000}, TxID: txID(l, "m1")}
	if rc := l.Apply(issue1); rc != ResultSuccess {
		t.Fatalf("first issuance failed: %v", rc)
	}
	issue2 := &Transaction{TxType: TxMPTIssue, Account: genesis, Amount: NativeAmount(MicroFromInt(500)), Body: MPTIssueBody{MaximumAmount: 1000}, TxID: txID(l, "m2")}
	if rc := l.Apply(issue2); rc != ResultMPTMaxSupply {
		t.Fatalf("expected ResultMPTMaxSupply exceeding the ceiling, got %v", rc)
	}
	issue3 := &Transaction{TxType: TxMPTIssue, Account: genesis, Amount: NativeAmount(MicroFromInt(400)), Body: MPTIssueBody{MaximumAmount: 1000}, TxID: txID(l, "m3")}
	if rc := l.Apply(issue3); rc != ResultSuccess {
		t.Fatalf("issuance up to the ceiling should succeed: %v", rc)
	}
}

func TestCredentialCreateRejectsDuplicateTriple(t *testing.T) {
	l, genesis := newTestLedger(t)
	subject := Address("subject")

	create := &Transaction{TxType: TxCredentialCreate, Account: genesis, Body: CredentialCreateBody{Subject: subject, CredType: "kyc"}, TxID: txID(l, "c1")}
	if rc := l.Apply(create); rc != ResultSuccess {
		t.Fatalf("credential create failed: %v", rc)
	}
	dup := &Transaction{TxType: TxCredentialCreate, Account: genesis, Body: CredentialCreateBody{Subject: subject, CredType: "kyc"}, TxID: txID(l, "c2")}
	if rc := l.Apply(dup); rc != ResultCredentialExists {
		t.Fatalf("expected ResultCredentialExists on duplicate triple, got %v", rc)
	}
}

func TestXChainClaimSettlesOnceAndMintsSupply(t *testing.T) {
	l, genesis := newTestLedger(t)
	dest := Address("dest")
	fundedAccount(l, dest, NewMicro(0, 0))

	before := l.TotalSupply
	claim := &Transaction{TxType: TxXChainClaim, Account: genesis, Destination: dest, Amount: NativeAmount(NewMicro(50, 0)), Body: XChainClaimBody{AttestationID: "att-1"}, TxID: txID(l, "x1")}
	if rc := l.Apply(claim); rc != ResultSuccess {
		t.Fatalf("first claim failed: %v", rc)
	}
	if l.Accounts[dest].Balance.Cmp(NewMicro(50, 0)) != 0 {
		t.Fatalf("expected destination credited 50, got %s", l.Accounts[dest].Balance)
	}
	if l.TotalSupply.Sub(before).Cmp(NewMicro(50, 0)) != 0 {
		t.Fatalf("expected total_supply to grow by the claimed amount")
	}

	replay := &Transaction{TxType: TxXChainClaim, Account: genesis, Destination: dest, Amount: NativeAmount(NewMicro(50, 0)), Body: XChainClaimBody{AttestationID: "att-1"}, TxID: txID(l, "x2")}
	if rc := l.Apply(replay); rc != ResultXChainNoQuorum {
		t.Fatalf("expected ResultXChainNoQuorum replaying a settled attestation, got %v", rc)
	}
}

func TestHooksSetRejectsZeroHash(t *testing.T) {
	l, genesis := newTestLedger(t)
	zero := &Transaction{TxType: TxHooksSet, Account: genesis, Body: HooksSetBody{}, TxID: txID(l, "h1")}
	if rc := l.Apply(zero); rc != ResultHooksRejected {
		t.Fatalf("expected ResultHooksRejected for a zero code hash, got %v", rc)
	}

	real := &Transaction{TxType: TxHooksSet, Account: genesis, Body: HooksSetBody{CodeHash: txID(l, "some-code")}, TxID: txID(l, "h2")}
	if rc := l.Apply(real); rc != ResultSuccess {
		t.Fatalf("expected success installing a non-zero code hash, got %v", rc)
	}
}
