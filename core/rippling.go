package core

// rippling.go implements the TrustGraph and PathFinder used for multi-hop
// IOU rippling (spec.md §4.3.2), invoked when a direct trust line between
// sender and destination is absent.
//
// Grounded on core/amm.go's Dijkstra-over-pools router (`bestPath`,
// priority-queue-over-edges structure via container/heap), generalised
// here from swap pools to trust-line edges (teacher: orbas1-Synnergy).
// Because the search optimises for "maximum deliverable amount within a
// depth bound" rather than "minimum cost", a depth-bounded exhaustive walk
// with an explicit tie-break is simpler to make deterministic than
// adapting Dijkstra's relaxation step, so that is what this does (spec.md
// §9 "DFS -> bounded best-first search").
//
// Simplification: hops here are restricted to a single (currency, issuer)
// pair — i.e. the star topology centred on one issuer that is the
// dominant "rippling" case spec.md §4.3.2 describes (rippling "through
// intermediate trust lines sharing the same issuer"). True cross-currency
// NXF bridging would additionally splice in a native leg and a second
// currency/issuer; that full generalisation is not implemented, and the
// restriction is recorded as a scoping decision in DESIGN.md.
import (
	"sort"
	"strings"
)

const maxRippleHops = 6

// TrustGraph is a read-only view over the ledger's trust lines for a
// single (currency, issuer) pair.
type TrustGraph struct {
	ledger   *LedgerState
	currency CurrencyCode
	issuer   Address
}

func BuildTrustGraph(l *LedgerState, cur CurrencyCode, issuer Address) *TrustGraph {
	return &TrustGraph{ledger: l, currency: cur, issuer: issuer}
}

// neighbors returns every account reachable from addr in one hop: the
// issuer itself (unless addr is the issuer), and every other holder of
// the same (currency, issuer) trust line, in deterministic address order.
func (g *TrustGraph) neighbors(addr Address) []Address {
	var out []Address
	if addr != g.issuer {
		out = append(out, g.issuer)
	}
	for a, acct := range g.ledger.Accounts {
		if a == addr || a == g.issuer {
			continue
		}
		if _, ok := acct.TrustLine(g.currency, g.issuer); ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// edgeCapacity is how much `from` can forward to the next hop over this
// (currency, issuer) edge: the issuer can always issue more (no cap on its
// own supply within this core's simplified model); a holder can forward
// at most its current trust-line balance.
func (g *TrustGraph) edgeCapacity(from Address) Micro {
	if from == g.issuer {
		return NewMicro(1_000_000_000_000, 0) // effectively unbounded issuance
	}
	acct, ok := g.ledger.Accounts[from]
	if !ok {
		return MicroZero()
	}
	tl, ok := acct.TrustLine(g.currency, g.issuer)
	if !ok || tl.Balance.Sign() <= 0 {
		return MicroZero()
	}
	return tl.Balance
}

// rippleCandidate is one complete path from src to dst found within the
// hop bound.
type rippleCandidate struct {
	path      []Address
	delivered Micro
}

// FindPath searches for the best path src -> ... -> dst carrying up to
// maxSend units of (currency, issuer), bounded to maxRippleHops hops.
// Tie-break: delivered_amount desc, hop_count asc, path lexicographic
// (spec.md §9).
func (g *TrustGraph) FindPath(src, dst Address, maxSend Micro) (rippleCandidate, bool) {
	var candidates []rippleCandidate
	visited := map[Address]bool{src: true}
	var walk func(cur Address, path []Address, bottleneck Micro)
	walk = func(cur Address, path []Address, bottleneck Micro) {
		if len(path)-1 > maxRippleHops {
			return
		}
		if cur == dst && len(path) > 1 {
			candidates = append(candidates, rippleCandidate{
				path:      append([]Address(nil), path...),
				delivered: MicroMin(bottleneck, maxSend),
			})
			return
		}
		if len(path)-1 == maxRippleHops {
			return
		}
		for _, next := range g.neighbors(cur) {
			if visited[next] {
				continue
			}
			cap := g.edgeCapacity(cur)
			if cap.IsZero() {
				continue
			}
			nb := MicroMin(bottleneck, cap)
			if nb.IsZero() {
				continue
			}
			visited[next] = true
			walk(next, append(path, next), nb)
			visited[next] = false
		}
	}
	walk(src, []Address{src}, maxSend)

	if len(candidates) == 0 {
		return rippleCandidate{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.delivered.Cmp(b.delivered) != 0 {
			return a.delivered.GreaterThan(b.delivered)
		}
		if len(a.path) != len(b.path) {
			return len(a.path) < len(b.path)
		}
		return pathKey(a.path) < pathKey(b.path)
	})
	best := candidates[0]
	if best.delivered.IsZero() {
		return rippleCandidate{}, false
	}
	return best, true
}

func pathKey(path []Address) string {
	parts := make([]string, len(path))
	for i, a := range path {
		parts[i] = string(a)
	}
	return strings.Join(parts, ">")
}

// ExecuteRipplePath walks the chosen path, debiting/crediting each hop's
// trust-line balance by `amount`. All-or-nothing: capacity has already
// been validated by FindPath's bottleneck computation, so this only fails
// if ledger state changed between FindPath and execution (not possible
// within a single Apply call, since the state machine is single
// -threaded per ledger — spec.md §5).
func ExecuteRipplePath(g *TrustGraph, path []Address, amount Micro) ResultCode {
	for i := 0; i < len(path)-1; i++ {
		from, to := path[i], path[i+1]
		if from != g.issuer {
			acct := g.ledger.Accounts[from]
			tl, _ := acct.TrustLine(g.currency, g.issuer)
			if tl.Balance.LessThan(amount) {
				return ResultUnfunded
			}
			tl.Balance = tl.Balance.Sub(amount)
		}
		if to != g.issuer {
			acct := g.ledger.getOrCreateAccount(to)
			tl, ok := acct.TrustLine(g.currency, g.issuer)
			if !ok {
				return ResultNoLine
			}
			tl.Balance = tl.Balance.Add(amount)
		}
	}
	return ResultSuccess
}
