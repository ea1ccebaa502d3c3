package core

// consensus.go implements the BFT-RPCA voting engine (spec.md §4.5): a
// bounded, round-based threshold-voting protocol validators run to agree
// on a transaction set for the next ledger sequence.
//
// Grounded on the teacher's core/consensus.go constructor/field shape
// (*logrus.Logger field, sync.Mutex-guarded counters, a small injected
// -collaborator interface for cryptography — teacher: orbas1-Synnergy),
// a full rewrite of its hybrid PoH/PoS/PoW sealing loop into XRPL-style
// round-based threshold voting. P2P transport is out of scope (spec.md
// §1 Non-goals), so there is no networkAdapter here: proposals arrive
// through AddProposal calls a transport layer outside this core would
// make, and this engine's only collaborator is the CryptoProvider
// contract already used everywhere else in the state machine.
import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	initialThreshold = 0.50
	finalThreshold   = 0.80
	maxRounds        = 10
)

func thresholdStep() float64 {
	return (finalThreshold - initialThreshold) / float64(maxRounds-1)
}

// Proposal is one validator's candidate transaction set for a given
// (ledger_seq, round) (spec.md §4.5 "Data").
type Proposal struct {
	ValidatorID string
	LedgerSeq   int64
	Round       int
	TxIDs       []Hash
	Signature   []byte
}

// ProposalHash is hash256("{vid}:{seq}:{round}:{sorted_comma_joined_tx_ids}")
// (spec.md §4.5 "Proposal hash").
func ProposalHash(crypto CryptoProvider, vid string, seq int64, round int, txIDs []Hash) Hash {
	ids := make([]string, len(txIDs))
	for i, id := range txIDs {
		ids[i] = id.Hex()
	}
	sort.Strings(ids)
	s := fmt.Sprintf("%s:%d:%d:%s", vid, seq, round, strings.Join(ids, ","))
	return crypto.Hash256([]byte(s))
}

// RoundResult is returned by RunRounds on success, and carried forward as
// the "current best result" a cancelled round reports (spec.md §5
// cancellation note).
type RoundResult struct {
	Agreed         []Hash
	Round          int
	Threshold      float64
	Total          int
	ByzantineCount int
}

// Consensus runs one validator's view of BFT-RPCA for a single ledger
// sequence. A fresh instance is created per close_ledger cycle.
type Consensus struct {
	mu     sync.Mutex
	logger *logrus.Logger
	crypto CryptoProvider

	myID      string
	myPrivKey []byte
	unl       []string
	unlPubKey map[string][]byte

	ledgerSeq int64
	round     int
	myTxIDs   []Hash

	proposals   map[string]*Proposal
	byzantine   map[string]bool
	negativeUNL map[string]bool

	roundHistory []RoundResult
}

// NewConsensus constructs a validator's consensus engine for ledgerSeq.
// unlPubKeys need not include myID's own key; self-authored proposals are
// trusted without a signature check since they never cross a trust
// boundary.
func NewConsensus(logger *logrus.Logger, crypto CryptoProvider, myID string, myPrivKey []byte, unl []string, unlPubKeys map[string][]byte, ledgerSeq int64) *Consensus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Consensus{
		logger:      logger,
		crypto:      crypto,
		myID:        myID,
		myPrivKey:   myPrivKey,
		unl:         append([]string(nil), unl...),
		unlPubKey:   unlPubKeys,
		ledgerSeq:   ledgerSeq,
		proposals:   make(map[string]*Proposal),
		byzantine:   make(map[string]bool),
		negativeUNL: make(map[string]bool),
	}
}

// MaxByzantineFaults is f = floor((n-1)/3) where n = |unl|+1 (spec.md
// §4.5 "Data").
func (c *Consensus) MaxByzantineFaults() int {
	n := len(c.unl) + 1
	return (n - 1) / 3
}

func (c *Consensus) buildProposal(round int, txIDs []Hash) *Proposal {
	p := &Proposal{
		ValidatorID: c.myID,
		LedgerSeq:   c.ledgerSeq,
		Round:       round,
		TxIDs:       append([]Hash(nil), txIDs...),
	}
	digest := ProposalHash(c.crypto, p.ValidatorID, p.LedgerSeq, p.Round, p.TxIDs)
	if len(c.myPrivKey) > 0 {
		if sig, err := c.crypto.Sign(c.myPrivKey, digest); err == nil {
			p.Signature = sig
		}
	}
	return p
}

// SubmitTransactions sets this validator's round-0 candidate set and
// registers its own self-signed proposal (spec.md §4.5
// "submit_transactions").
func (c *Consensus) SubmitTransactions(txIDs []Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.round = 0
	c.myTxIDs = append([]Hash(nil), txIDs...)
	p := c.buildProposal(0, c.myTxIDs)
	c.proposals[c.myID] = p
}

// AddProposal validates and (if accepted) records an incoming proposal
// (spec.md §4.5 "add_proposal"). Equivocation — two differently-hashed
// proposals from the same validator at the same (seq, round) — marks the
// sender Byzantine and drops both records; order of arrival does not
// matter (spec.md §5 "equivocation detection is order-independent").
func (c *Consensus) AddProposal(p *Proposal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addProposalLocked(p)
}

func (c *Consensus) addProposalLocked(p *Proposal) bool {
	digest := ProposalHash(c.crypto, p.ValidatorID, p.LedgerSeq, p.Round, p.TxIDs)

	if pub, registered := c.unlPubKey[p.ValidatorID]; registered {
		if len(p.Signature) == 0 || !c.crypto.Verify(pub, digest, p.Signature) {
			c.byzantine[p.ValidatorID] = true
			c.logger.WithField("validator_id", p.ValidatorID).Warn("rejecting proposal: missing or invalid signature")
			return false
		}
	}

	if prior, exists := c.proposals[p.ValidatorID]; exists && prior.LedgerSeq == p.LedgerSeq && prior.Round == p.Round {
		priorDigest := ProposalHash(c.crypto, prior.ValidatorID, prior.LedgerSeq, prior.Round, prior.TxIDs)
		if priorDigest != digest {
			c.byzantine[p.ValidatorID] = true
			delete(c.proposals, p.ValidatorID)
			c.logger.WithField("validator_id", p.ValidatorID).Warn("equivocation detected, marking byzantine")
			return false
		}
	}

	c.proposals[p.ValidatorID] = p
	return true
}

// tally computes the agreed tx_id set at threshold, the effective honest
// total it was measured against, and the current byzantine count (spec.md
// §4.5 "run_rounds" step 2).
func (c *Consensus) tally(threshold float64) ([]Hash, int, int) {
	effective := make(map[string]*Proposal)
	for vid, p := range c.proposals {
		if c.byzantine[vid] || c.negativeUNL[vid] {
			continue
		}
		effective[vid] = p
	}
	effectiveTotal := len(effective)

	quorumFloor := len(c.unl) + 1 - len(c.negativeUNL)
	if quorumFloor < 0 {
		quorumFloor = 0
	}
	denom := effectiveTotal
	if denom < quorumFloor {
		denom = quorumFloor
	}

	counts := make(map[Hash]int)
	for _, p := range effective {
		seen := make(map[Hash]bool, len(p.TxIDs))
		for _, id := range p.TxIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			counts[id]++
		}
	}

	minCount := threshold * float64(denom)
	var agreed []Hash
	for id, cnt := range counts {
		if float64(cnt)+1e-9 >= minCount {
			agreed = append(agreed, id)
		}
	}
	sort.Slice(agreed, func(i, j int) bool { return bytes.Compare(agreed[i][:], agreed[j][:]) < 0 })
	return agreed, effectiveTotal, len(c.byzantine)
}

// updateNegativeUNL penalises validators that did not submit a proposal
// this round and removes those that have resumed participation (spec.md
// §4.5 "run_rounds" step 4).
func (c *Consensus) updateNegativeUNL(round int) {
	for _, vid := range c.unl {
		p, ok := c.proposals[vid]
		if !ok || p.Round != round || c.byzantine[vid] {
			c.negativeUNL[vid] = true
			continue
		}
		delete(c.negativeUNL, vid)
	}
}

// RunRounds iterates up to max_rounds, escalating the threshold each
// round, until it finds a non-empty agreed set at the final threshold (or
// exhausts the round budget and makes one last attempt at final_threshold)
// (spec.md §4.5 "run_rounds"). Honors ctx cancellation per spec.md §5:
// on cancellation it returns the best result computed so far, if any.
func (c *Consensus) RunRounds(ctx context.Context) (*RoundResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var best *RoundResult
	for round := 0; round < maxRounds; round++ {
		select {
		case <-ctx.Done():
			return best, best != nil
		default:
		}

		threshold := initialThreshold + thresholdStep()*float64(round)
		if threshold > finalThreshold {
			threshold = finalThreshold
		}

		agreed, total, byzCount := c.tally(threshold)
		result := RoundResult{Agreed: agreed, Round: round, Threshold: threshold, Total: total, ByzantineCount: byzCount}
		c.roundHistory = append(c.roundHistory, result)
		if len(agreed) > 0 {
			best = &result
		}

		c.updateNegativeUNL(round)

		if threshold >= finalThreshold && len(agreed) > 0 {
			return &result, true
		}

		c.myTxIDs = agreed
		c.round = round + 1
		p := c.buildProposal(c.round, c.myTxIDs)
		c.proposals[c.myID] = p
	}

	agreed, total, byzCount := c.tally(finalThreshold)
	if len(agreed) > 0 {
		result := RoundResult{Agreed: agreed, Round: maxRounds, Threshold: finalThreshold, Total: total, ByzantineCount: byzCount}
		return &result, true
	}
	return best, best != nil
}

// RoundHistory returns every round's recorded statistics, most recent
// last (spec.md §4.5 "run_rounds" step 3, "record round statistics").
func (c *Consensus) RoundHistory() []RoundResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]RoundResult(nil), c.roundHistory...)
}

// IsByzantine reports whether validatorID has been marked Byzantine.
func (c *Consensus) IsByzantine(validatorID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byzantine[validatorID]
}

// IsOnNegativeUNL reports whether validatorID is currently excluded from
// the quorum denominator.
func (c *Consensus) IsOnNegativeUNL(validatorID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negativeUNL[validatorID]
}
