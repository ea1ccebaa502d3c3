package core

// merkle.go implements the authenticated map spec.md §4.2 requires for
// tx_hash and state_hash: a digest over a set of 256-bit-keyed entries that
// is independent of insertion order, with same-shaped inclusion proofs.
//
// Grounded on core/merkle_tree_operations.go's BuildMerkleTree/MerkleProof/
// VerifyMerklePath (teacher: orbas1-Synnergy), generalised from an
// index-ordered leaf list to a sorted key->value map so the digest does not
// depend on the order entries were inserted in.
import (
	"bytes"
	"crypto/sha256"
	"sort"
)

// AuthenticatedMap is a Merkle tree over a set of (key, value) entries,
// keyed by 256-bit Hash. Entries are sorted by key before hashing so two
// maps with the same contents always produce the same root, regardless of
// the order Put was called in.
type AuthenticatedMap struct {
	entries map[Hash][]byte
}

func NewAuthenticatedMap() *AuthenticatedMap {
	return &AuthenticatedMap{entries: make(map[Hash][]byte)}
}

func (m *AuthenticatedMap) Put(key Hash, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.entries[key] = cp
}

func (m *AuthenticatedMap) Get(key Hash) ([]byte, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *AuthenticatedMap) Len() int { return len(m.entries) }

// sortedKeys returns every key in ascending byte order, the canonical
// traversal order used for both root computation and proof construction.
func (m *AuthenticatedMap) sortedKeys() []Hash {
	keys := make([]Hash, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	return keys
}

func leafDigest(key Hash, value []byte) [32]byte {
	buf := make([]byte, 0, 32+len(value))
	buf = append(buf, key[:]...)
	buf = append(buf, value...)
	return sha256.Sum256(buf)
}

// buildTree mirrors BuildMerkleTree's level-doubling shape (duplicate the
// last node of an odd level) but over the map's sorted leaves.
func buildTree(leaves [][32]byte) [][][32]byte {
	if len(leaves) == 0 {
		return [][][32]byte{{sha256.Sum256(nil)}}
	}
	level := leaves
	tree := [][][32]byte{level}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][32]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = sha256.Sum256(append(level[i][:], level[i+1][:]...))
		}
		tree = append(tree, next)
		level = next
	}
	return tree
}

// Root computes the authenticated digest over the current contents. The
// empty map has a fixed, well-defined root (sha256 of nothing) rather than
// a panic, so an empty ledger state still has a defined state_hash.
func (m *AuthenticatedMap) Root() Hash {
	keys := m.sortedKeys()
	leaves := make([][32]byte, len(keys))
	for i, k := range keys {
		leaves[i] = leafDigest(k, m.entries[k])
	}
	tree := buildTree(leaves)
	return Hash(tree[len(tree)-1][0])
}

// InclusionProof is a single entry's membership proof: the sibling hashes
// from leaf level up to the root, plus the leaf's position in the sorted
// traversal (needed to know whether each sibling is a left or right node).
type InclusionProof struct {
	Key     Hash
	Value   []byte
	Index   uint32
	Total   uint32
	Sibling [][32]byte
}

// Prove builds an inclusion proof for key. Returns false if the key is not
// present.
func (m *AuthenticatedMap) Prove(key Hash) (InclusionProof, bool) {
	value, ok := m.entries[key]
	if !ok {
		return InclusionProof{}, false
	}
	keys := m.sortedKeys()
	leaves := make([][32]byte, len(keys))
	index := -1
	for i, k := range keys {
		leaves[i] = leafDigest(k, m.entries[k])
		if k == key {
			index = i
		}
	}
	tree := buildTree(leaves)
	proof := make([][32]byte, 0, len(tree)-1)
	idx := index
	for i := 0; i < len(tree)-1; i++ {
		level := tree[i]
		if idx%2 == 0 {
			sib := idx + 1
			if sib >= len(level) {
				sib = idx // odd-length level duplicates its last node
			}
			proof = append(proof, level[sib])
		} else {
			proof = append(proof, level[idx-1])
		}
		idx /= 2
	}
	return InclusionProof{Key: key, Value: value, Index: uint32(index), Total: uint32(len(keys)), Sibling: proof}, true
}

// VerifyInclusion checks that proof reconstructs root.
func VerifyInclusion(root Hash, proof InclusionProof) bool {
	hash := leafDigest(proof.Key, proof.Value)
	idx := proof.Index
	for _, sib := range proof.Sibling {
		var pair []byte
		if idx%2 == 0 {
			pair = append(append([]byte{}, hash[:]...), sib[:]...)
		} else {
			pair = append(append([]byte{}, sib[:]...), hash[:]...)
		}
		hash = sha256.Sum256(pair)
		idx /= 2
	}
	return bytes.Equal(hash[:], root[:])
}
