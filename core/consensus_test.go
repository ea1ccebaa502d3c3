package core

import (
	"context"
	"testing"
)

func newTestConsensus(t *testing.T, myID string, unl []string) (*Consensus, CryptoProvider, map[string][]byte, map[string][]byte) {
	t.Helper()
	crypto := NewCryptoProvider()
	pub := make(map[string][]byte)
	priv := make(map[string][]byte)
	for _, id := range append([]string{myID}, unl...) {
		sk, pk, err := crypto.Keypair()
		if err != nil {
			t.Fatalf("keypair for %s: %v", id, err)
		}
		priv[id] = sk
		pub[id] = pk
	}
	c := NewConsensus(nil, crypto, myID, priv[myID], unl, pub, 1)
	return c, crypto, pub, priv
}

func signProposal(t *testing.T, crypto CryptoProvider, priv []byte, vid string, seq int64, round int, txIDs []Hash) *Proposal {
	t.Helper()
	digest := ProposalHash(crypto, vid, seq, round, txIDs)
	sig, err := crypto.Sign(priv, digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &Proposal{ValidatorID: vid, LedgerSeq: seq, Round: round, TxIDs: txIDs, Signature: sig}
}

func TestConsensusAgreesWhenUnanimous(t *testing.T) {
	unl := []string{"v2", "v3"}
	c, crypto, _, priv := newTestConsensus(t, "v1", unl)

	common := []Hash{{0xAA}, {0xBB}}
	c.SubmitTransactions(common)

	for _, vid := range unl {
		p := signProposal(t, crypto, priv[vid], vid, 1, 0, common)
		if !c.AddProposal(p) {
			t.Fatalf("expected proposal from %s to be accepted", vid)
		}
	}

	result, ok := c.RunRounds(context.Background())
	if !ok {
		t.Fatalf("expected a result when all validators agree")
	}
	if len(result.Agreed) != len(common) {
		t.Fatalf("expected every common tx to be agreed, got %d of %d", len(result.Agreed), len(common))
	}
}

func TestConsensusDetectsEquivocation(t *testing.T) {
	unl := []string{"v2"}
	c, crypto, _, priv := newTestConsensus(t, "v1", unl)

	c.SubmitTransactions([]Hash{{0xAA}})

	p1 := signProposal(t, crypto, priv["v2"], "v2", 1, 0, []Hash{{0xAA}})
	p2 := signProposal(t, crypto, priv["v2"], "v2", 1, 0, []Hash{{0xBB}})

	if !c.AddProposal(p1) {
		t.Fatalf("expected first proposal accepted")
	}
	if c.AddProposal(p2) {
		t.Fatalf("expected conflicting same-round proposal to be rejected")
	}
	if !c.IsByzantine("v2") {
		t.Fatalf("expected v2 marked byzantine after equivocation")
	}
}

func TestConsensusRejectsBadSignature(t *testing.T) {
	unl := []string{"v2"}
	c, crypto, _, _ := newTestConsensus(t, "v1", unl)

	otherSK, _, err := crypto.Keypair()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}
	forged := signProposal(t, crypto, otherSK, "v2", 1, 0, []Hash{{0xAA}})
	if c.AddProposal(forged) {
		t.Fatalf("expected a proposal signed by the wrong key to be rejected")
	}
	if !c.IsByzantine("v2") {
		t.Fatalf("expected v2 marked byzantine after an invalid signature")
	}
}

func TestConsensusNegativeUNLTracksNonParticipation(t *testing.T) {
	unl := []string{"v2", "v3"}
	c, crypto, _, priv := newTestConsensus(t, "v1", unl)

	c.SubmitTransactions([]Hash{{0xAA}})
	// v2 submits only a round-0 proposal, v3 never submits anything.
	p := signProposal(t, crypto, priv["v2"], "v2", 1, 0, []Hash{{0xAA}})
	c.AddProposal(p)

	c.RunRounds(context.Background())

	if !c.IsOnNegativeUNL("v3") {
		t.Fatalf("expected v3 flagged on the negative UNL after non-participation")
	}
}
