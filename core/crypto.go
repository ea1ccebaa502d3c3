package core

// crypto.go implements the contract-level cryptographic primitives
// demanded by spec.md §4.1: keypair generation, ECDSA sign/verify, a
// collision-resistant hash, Pedersen commitments, stealth one-time
// addresses, linkable ring signatures (producing a key image), and
// bit-decomposition range proofs.
//
// Grounded on core/security.go's Sign/Verify dispatch table and
// core/utility_functions.go's blake2b usage (teacher: orbas1-Synnergy).
// The group used throughout is secp256k1 (via decred's dcrec package,
// already a pack-wide dependency pulled in by btcec across multiple
// example repos) rather than the teacher's ed25519/BLS wallet scheme,
// because spec.md §1 explicitly names ECDSA plus Pedersen/ring/stealth
// primitives that all need the same homomorphic group — mixing curves
// for no reason would just be cargo-culting the teacher's choice rather
// than adapting it.
import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/blake2b"
)

// CryptoProvider is the contract the state machine and consensus engine
// consume cryptography through (spec.md §4.1). The core never constructs
// keys itself outside of tests; collaborators (wallet signer, transport)
// supply keys and signatures produced against this same contract.
type CryptoProvider interface {
	Keypair() (priv []byte, pub []byte, err error)
	Sign(priv []byte, digest Hash) ([]byte, error)
	Verify(pub []byte, digest Hash, sig []byte) bool
	Hash256(data []byte) Hash

	PedersenCommit(value uint64, blinding [32]byte) ([]byte, error)
	PedersenVerifyOpening(commitment []byte, value uint64, blinding [32]byte) bool

	StealthGenerate(viewPub, spendPub []byte) (oneTimeAddr, ephemeralPub []byte, viewTag byte, err error)
	StealthRecover(viewPriv, spendPub, ephemeralPub []byte, viewTag byte) (oneTimeAddr []byte, ok bool)

	RingSign(message []byte, signerPriv []byte, ringPubs [][]byte, signerIndex int) ([]byte, error)
	RingVerify(sigBytes []byte, message []byte) bool
	KeyImageOf(sigBytes []byte) ([]byte, error)

	RangeProve(value uint64, blinding [32]byte) ([]byte, error)
	RangeVerify(proof []byte, commitment []byte) bool
}

// Secp256k1Provider is the reference CryptoProvider implementation.
type Secp256k1Provider struct{}

func NewCryptoProvider() CryptoProvider { return Secp256k1Provider{} }

//---------------------------------------------------------------------
// Keypair / sign / verify / hash
//---------------------------------------------------------------------

func (Secp256k1Provider) Keypair() ([]byte, []byte, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}
	return priv.Serialize(), priv.PubKey().SerializeCompressed(), nil
}

func (Secp256k1Provider) Sign(priv []byte, digest Hash) ([]byte, error) {
	if len(priv) != 32 {
		return nil, errors.New("crypto: private key must be 32 bytes")
	}
	pk := secp256k1.PrivKeyFromBytes(priv)
	sig := ecdsa.Sign(pk, digest[:])
	return sig.Serialize(), nil
}

func (Secp256k1Provider) Verify(pub []byte, digest Hash, sig []byte) bool {
	pk, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return false
	}
	s, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return s.Verify(digest[:], pk)
}

func (Secp256k1Provider) Hash256(data []byte) Hash {
	return blake2bHash(data)
}

func blake2bHash(data []byte) Hash {
	sum := blake2b.Sum256(data)
	return Hash(sum)
}

//---------------------------------------------------------------------
// Group helpers
//---------------------------------------------------------------------

// hGenerator is the Pedersen second generator H, derived deterministically
// from a domain-separated hash-to-curve so that log_G(H) is unknown to
// anyone (nothing-up-my-sleeve construction).
var hGenerator = mustHashToPoint([]byte("synq/pedersen/H/v1"))

// hashToPoint finds a valid curve point by hashing seed with an
// incrementing counter until the resulting x-coordinate decompresses.
func hashToPoint(seed []byte) (*secp256k1.PublicKey, error) {
	for counter := byte(0); counter < 255; counter++ {
		h := blake2b.Sum256(append(append([]byte{}, seed...), counter))
		candidate := append([]byte{0x02}, h[:]...)
		if pub, err := secp256k1.ParsePubKey(candidate); err == nil {
			return pub, nil
		}
	}
	return nil, errors.New("crypto: hash-to-curve exhausted counter space")
}

func mustHashToPoint(seed []byte) *secp256k1.PublicKey {
	p, err := hashToPoint(seed)
	if err != nil {
		panic(err)
	}
	return p
}

func jacobianOf(pub *secp256k1.PublicKey) secp256k1.JacobianPoint {
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	return j
}

func affinePub(j *secp256k1.JacobianPoint) *secp256k1.PublicKey {
	j.ToAffine()
	return secp256k1.NewPublicKey(&j.X, &j.Y)
}

func scalarMul(k *secp256k1.ModNScalar, p *secp256k1.PublicKey) *secp256k1.PublicKey {
	j := jacobianOf(p)
	var res secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(k, &j, &res)
	return affinePub(&res)
}

func scalarBaseMul(k *secp256k1.ModNScalar) *secp256k1.PublicKey {
	var res secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &res)
	return affinePub(&res)
}

func pointAdd(a, b *secp256k1.PublicKey) *secp256k1.PublicKey {
	ja, jb := jacobianOf(a), jacobianOf(b)
	var res secp256k1.JacobianPoint
	secp256k1.AddNonConst(&ja, &jb, &res)
	return affinePub(&res)
}

func pointSub(a, b *secp256k1.PublicKey) *secp256k1.PublicKey {
	jb := jacobianOf(b)
	jb.Y.Negate(1)
	jb.Y.Normalize()
	ja := jacobianOf(a)
	var res secp256k1.JacobianPoint
	secp256k1.AddNonConst(&ja, &jb, &res)
	return affinePub(&res)
}

func scalarFromHash(h Hash) secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	s.SetByteSlice(h[:])
	return s
}

func scalarFromUint64(v uint64) secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	var buf [32]byte
	for i := 0; i < 8; i++ {
		buf[31-i] = byte(v >> (8 * i))
	}
	s.SetByteSlice(buf[:])
	return s
}

// negateScalar returns -s (mod n) without mutating the argument; several
// callers here still need the original value after deriving its negation.
func negateScalar(s *secp256k1.ModNScalar) secp256k1.ModNScalar {
	var t secp256k1.ModNScalar
	t.Set(s)
	t.Negate()
	return t
}

func randomScalar() (secp256k1.ModNScalar, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return secp256k1.ModNScalar{}, err
	}
	var s secp256k1.ModNScalar
	s.SetByteSlice(buf[:])
	return s, nil
}

//---------------------------------------------------------------------
// Pedersen commitments: C = v*G + b*H
//---------------------------------------------------------------------

func (Secp256k1Provider) PedersenCommit(value uint64, blinding [32]byte) ([]byte, error) {
	var b secp256k1.ModNScalar
	if overflow := b.SetByteSlice(blinding[:]); overflow {
		return nil, errors.New("crypto: blinding factor overflows curve order")
	}
	v := scalarFromUint64(value)
	vG := scalarBaseMul(&v)
	bH := scalarMul(&b, hGenerator)
	c := pointAdd(vG, bH)
	return c.SerializeCompressed(), nil
}

func (p Secp256k1Provider) PedersenVerifyOpening(commitment []byte, value uint64, blinding [32]byte) bool {
	recomputed, err := p.PedersenCommit(value, blinding)
	if err != nil {
		return false
	}
	return bytesEqual(recomputed, commitment)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//---------------------------------------------------------------------
// Stealth addresses (Diffie-Hellman one-time addresses with view tags)
//---------------------------------------------------------------------

func (Secp256k1Provider) StealthGenerate(viewPub, spendPub []byte) ([]byte, []byte, byte, error) {
	vPub, err := secp256k1.ParsePubKey(viewPub)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("parse view pub: %w", err)
	}
	sPub, err := secp256k1.ParsePubKey(spendPub)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("parse spend pub: %w", err)
	}
	r, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("generate ephemeral key: %w", err)
	}
	ephemeralPub := r.PubKey()

	shared := scalarMul(&r.Key, vPub)
	secret := blake2bHash(shared.SerializeCompressed())
	hs := scalarFromHash(secret)

	oneTime := pointAdd(sPub, scalarBaseMul(&hs))
	return oneTime.SerializeCompressed(), ephemeralPub.SerializeCompressed(), secret[0], nil
}

func (Secp256k1Provider) StealthRecover(viewPriv, spendPub, ephemeralPub []byte, viewTag byte) ([]byte, bool) {
	if len(viewPriv) != 32 {
		return nil, false
	}
	vPriv := secp256k1.PrivKeyFromBytes(viewPriv)
	ePub, err := secp256k1.ParsePubKey(ephemeralPub)
	if err != nil {
		return nil, false
	}
	sPub, err := secp256k1.ParsePubKey(spendPub)
	if err != nil {
		return nil, false
	}
	shared := scalarMul(&vPriv.Key, ePub)
	secret := blake2bHash(shared.SerializeCompressed())
	if secret[0] != viewTag {
		return nil, false
	}
	hs := scalarFromHash(secret)
	oneTime := pointAdd(sPub, scalarBaseMul(&hs))
	return oneTime.SerializeCompressed(), true
}

//---------------------------------------------------------------------
// Linkable ring signatures (LSAG) — produce a key image for double-spend
// detection without revealing the signer's position in the ring.
//---------------------------------------------------------------------

type ringSig struct {
	KeyImage []byte
	C0       []byte
	R        [][]byte
}

func (Secp256k1Provider) RingSign(message []byte, signerPriv []byte, ringPubs [][]byte, signerIndex int) ([]byte, error) {
	n := len(ringPubs)
	if n == 0 || signerIndex < 0 || signerIndex >= n {
		return nil, errors.New("crypto: invalid ring or signer index")
	}
	if len(signerPriv) != 32 {
		return nil, errors.New("crypto: signer private key must be 32 bytes")
	}
	x := secp256k1.PrivKeyFromBytes(signerPriv)

	pubs := make([]*secp256k1.PublicKey, n)
	for i, raw := range ringPubs {
		p, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("ring member %d: %w", i, err)
		}
		pubs[i] = p
	}
	if !bytesEqual(pubs[signerIndex].SerializeCompressed(), x.PubKey().SerializeCompressed()) {
		return nil, errors.New("crypto: signer key does not match ring entry at signerIndex")
	}

	hp, err := hashToPoint(pubs[signerIndex].SerializeCompressed())
	if err != nil {
		return nil, err
	}
	keyImagePt := scalarMul(&x.Key, hp)
	keyImage := keyImagePt.SerializeCompressed()

	c := make([]secp256k1.ModNScalar, n)
	r := make([]secp256k1.ModNScalar, n)

	q, err := randomScalar()
	if err != nil {
		return nil, err
	}
	l := scalarBaseMul(&q)
	rr := scalarMul(&q, hp)
	next := (signerIndex + 1) % n
	c[next] = ringChallenge(message, keyImage, l, rr)

	for i := next; i != signerIndex; i = (i + 1) % n {
		ri, err := randomScalar()
		if err != nil {
			return nil, err
		}
		r[i] = ri
		l := pointAdd(scalarBaseMul(&ri), scalarMul(&c[i], pubs[i]))
		hpI, err := hashToPoint(pubs[i].SerializeCompressed())
		if err != nil {
			return nil, err
		}
		rr := pointAdd(scalarMul(&ri, hpI), scalarMul(&c[i], keyImagePt))
		ni := (i + 1) % n
		c[ni] = ringChallenge(message, keyImage, l, rr)
	}

	// Close the ring: r_s = q - c_s * x (mod n)
	var cx secp256k1.ModNScalar
	cx.Mul2(&c[signerIndex], &x.Key)
	cx.Negate()
	cx.Add(&q)
	r[signerIndex] = cx

	c0b := c[0].Bytes()
	sig := ringSig{KeyImage: keyImage, C0: c0b[:]}
	for _, ri := range r {
		b := ri.Bytes()
		sig.R = append(sig.R, b[:])
	}
	return encodeRingSig(&sig, ringPubs), nil
}

func ringChallenge(message, keyImage []byte, l, rr *secp256k1.PublicKey) secp256k1.ModNScalar {
	buf := append([]byte{}, message...)
	buf = append(buf, keyImage...)
	buf = append(buf, l.SerializeCompressed()...)
	buf = append(buf, rr.SerializeCompressed()...)
	h := blake2bHash(buf)
	return scalarFromHash(h)
}

func (Secp256k1Provider) RingVerify(sigBytes []byte, message []byte) bool {
	sig, ringPubs, err := decodeRingSig(sigBytes)
	if err != nil {
		return false
	}
	n := len(ringPubs)
	if n == 0 || len(sig.R) != n {
		return false
	}
	pubs := make([]*secp256k1.PublicKey, n)
	for i, raw := range ringPubs {
		p, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return false
		}
		pubs[i] = p
	}
	keyImagePt, err := secp256k1.ParsePubKey(sig.KeyImage)
	if err != nil {
		return false
	}

	var c0 secp256k1.ModNScalar
	if overflow := c0.SetByteSlice(sig.C0); overflow {
		return false
	}
	c := c0
	var firstC secp256k1.ModNScalar = c0
	for i := 0; i < n; i++ {
		var ri secp256k1.ModNScalar
		if overflow := ri.SetByteSlice(sig.R[i]); overflow {
			return false
		}
		l := pointAdd(scalarBaseMul(&ri), scalarMul(&c, pubs[i]))
		hpI, err := hashToPoint(pubs[i].SerializeCompressed())
		if err != nil {
			return false
		}
		rr := pointAdd(scalarMul(&ri, hpI), scalarMul(&c, keyImagePt))
		c = ringChallenge(message, sig.KeyImage, l, rr)
	}
	return c == firstC
}

func (Secp256k1Provider) KeyImageOf(sigBytes []byte) ([]byte, error) {
	sig, _, err := decodeRingSig(sigBytes)
	if err != nil {
		return nil, err
	}
	return sig.KeyImage, nil
}

// encodeRingSig / decodeRingSig use a simple length-prefixed wire format;
// the ring's public keys travel alongside the signature since verification
// needs them and this core treats ring membership as caller-supplied
// context rather than something persisted inside the signature itself.
func encodeRingSig(sig *ringSig, ringPubs [][]byte) []byte {
	var out []byte
	putChunk := func(b []byte) {
		out = append(out, byte(len(b)>>8), byte(len(b)))
		out = append(out, b...)
	}
	putChunk(sig.KeyImage)
	putChunk(sig.C0)
	out = append(out, byte(len(sig.R)>>8), byte(len(sig.R)))
	for _, r := range sig.R {
		putChunk(r)
	}
	out = append(out, byte(len(ringPubs)>>8), byte(len(ringPubs)))
	for _, p := range ringPubs {
		putChunk(p)
	}
	return out
}

func decodeRingSig(data []byte) (*ringSig, [][]byte, error) {
	pos := 0
	readChunk := func() ([]byte, error) {
		if pos+2 > len(data) {
			return nil, errors.New("crypto: truncated ring signature")
		}
		n := int(data[pos])<<8 | int(data[pos+1])
		pos += 2
		if pos+n > len(data) {
			return nil, errors.New("crypto: truncated ring signature chunk")
		}
		b := data[pos : pos+n]
		pos += n
		return b, nil
	}
	readCount := func() (int, error) {
		if pos+2 > len(data) {
			return 0, errors.New("crypto: truncated ring signature count")
		}
		n := int(data[pos])<<8 | int(data[pos+1])
		pos += 2
		return n, nil
	}

	sig := &ringSig{}
	var err error
	if sig.KeyImage, err = readChunk(); err != nil {
		return nil, nil, err
	}
	if sig.C0, err = readChunk(); err != nil {
		return nil, nil, err
	}
	rCount, err := readCount()
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < rCount; i++ {
		r, err := readChunk()
		if err != nil {
			return nil, nil, err
		}
		sig.R = append(sig.R, r)
	}
	pCount, err := readCount()
	if err != nil {
		return nil, nil, err
	}
	ringPubs := make([][]byte, 0, pCount)
	for i := 0; i < pCount; i++ {
		p, err := readChunk()
		if err != nil {
			return nil, nil, err
		}
		ringPubs = append(ringPubs, p)
	}
	return sig, ringPubs, nil
}

//---------------------------------------------------------------------
// Range proofs: a bit-decomposition OR-proof per bit (pre-bulletproof
// Borromean-style construction, matching the Monero lineage called out in
// spec.md §1). Each bit commitment is proved to open to 0 or to 2^i via a
// non-interactive Schnorr disjunction (CDS94), and the verifier separately
// checks the bit commitments sum to the supplied Pedersen commitment.
//---------------------------------------------------------------------

const rangeProofBits = 64

type bitProof struct {
	C      []byte // bit commitment
	E0, E1 []byte
	S0, S1 []byte
}

func (Secp256k1Provider) RangeProve(value uint64, blinding [32]byte) ([]byte, error) {
	var totalBlind secp256k1.ModNScalar
	if overflow := totalBlind.SetByteSlice(blinding[:]); overflow {
		return nil, errors.New("crypto: blinding factor overflows curve order")
	}

	proofs := make([]bitProof, rangeProofBits)
	blinds := make([]secp256k1.ModNScalar, rangeProofBits)
	var sumBlind secp256k1.ModNScalar
	for i := 0; i < rangeProofBits-1; i++ {
		b, err := randomScalar()
		if err != nil {
			return nil, err
		}
		blinds[i] = b
		sumBlind.Add(&b)
	}
	// last blinding factor makes the sum equal totalBlind exactly, so the
	// bit commitments sum to the caller's Pedersen commitment.
	var last secp256k1.ModNScalar
	last.Set(&totalBlind)
	last.Add(sumBlind.Negate())
	blinds[rangeProofBits-1] = last

	for i := 0; i < rangeProofBits; i++ {
		bit := (value >> uint(i)) & 1
		p, err := proveBit(bit, blinds[i], uint(i))
		if err != nil {
			return nil, err
		}
		proofs[i] = p
	}
	return encodeRangeProof(proofs), nil
}

func proveBit(bit uint64, blind secp256k1.ModNScalar, shift uint) (bitProof, error) {
	bH := scalarMul(&blind, hGenerator)
	c := bH
	one := shiftedOne(shift)
	if bit == 1 {
		twoG := scalarBaseMul(&one)
		c = pointAdd(bH, twoG)
	}

	p0 := c                    // candidate point for bit=0 branch: should equal blind*H
	p1 := pointSub(c, scalarBaseMul(&one)) // candidate for bit=1 branch

	var e0, e1, s0, s1 secp256k1.ModNScalar
	var a0, a1 *secp256k1.PublicKey

	k, err := randomScalar()
	if err != nil {
		return bitProof{}, err
	}

	if bit == 0 {
		fe1, err := randomScalar()
		if err != nil {
			return bitProof{}, err
		}
		fs1, err := randomScalar()
		if err != nil {
			return bitProof{}, err
		}
		e1, s1 = fe1, fs1
		a1 = pointSub(scalarMul(&s1, hGenerator), scalarMul(&e1, p1))
		a0 = scalarMul(&k, hGenerator)

		e := bitChallenge(c, a0, a1)
		negE1 := negateScalar(&e1)
		e0.Set(&e)
		e0.Add(&negE1)
		var tmp secp256k1.ModNScalar
		tmp.Mul2(&e0, &blind)
		s0.Set(&k)
		s0.Add(&tmp)
	} else {
		fe0, err := randomScalar()
		if err != nil {
			return bitProof{}, err
		}
		fs0, err := randomScalar()
		if err != nil {
			return bitProof{}, err
		}
		e0, s0 = fe0, fs0
		a0 = pointSub(scalarMul(&s0, hGenerator), scalarMul(&e0, p0))
		a1 = scalarMul(&k, hGenerator)

		e := bitChallenge(c, a0, a1)
		negE0 := negateScalar(&e0)
		e1.Set(&e)
		e1.Add(&negE0)
		var tmp secp256k1.ModNScalar
		tmp.Mul2(&e1, &blind)
		s1.Set(&k)
		s1.Add(&tmp)
	}

	e0b, e1b, s0b, s1b := e0.Bytes(), e1.Bytes(), s0.Bytes(), s1.Bytes()
	return bitProof{
		C:  c.SerializeCompressed(),
		E0: e0b[:], E1: e1b[:],
		S0: s0b[:], S1: s1b[:],
	}, nil
}

func shiftedOne(shift uint) secp256k1.ModNScalar {
	var v uint64 = 1 << shift
	return scalarFromUint64(v)
}

func bitChallenge(c, a0, a1 *secp256k1.PublicKey) secp256k1.ModNScalar {
	buf := append([]byte{}, c.SerializeCompressed()...)
	buf = append(buf, a0.SerializeCompressed()...)
	buf = append(buf, a1.SerializeCompressed()...)
	return scalarFromHash(blake2bHash(buf))
}

func (Secp256k1Provider) RangeVerify(proof []byte, commitment []byte) bool {
	proofs, err := decodeRangeProof(proof)
	if err != nil || len(proofs) != rangeProofBits {
		return false
	}
	target, err := secp256k1.ParsePubKey(commitment)
	if err != nil {
		return false
	}

	var sum *secp256k1.PublicKey
	for i, bp := range proofs {
		c, err := secp256k1.ParsePubKey(bp.C)
		if err != nil {
			return false
		}
		var e0, e1, s0, s1 secp256k1.ModNScalar
		if e0.SetByteSlice(bp.E0) || e1.SetByteSlice(bp.E1) || s0.SetByteSlice(bp.S0) || s1.SetByteSlice(bp.S1) {
			return false
		}
		p0 := c
		one := shiftedOne(uint(i))
		p1 := pointSub(c, scalarBaseMul(&one))

		a0 := pointSub(scalarMul(&s0, hGenerator), scalarMul(&e0, p0))
		a1 := pointSub(scalarMul(&s1, hGenerator), scalarMul(&e1, p1))

		e := bitChallenge(c, a0, a1)
		var sumE secp256k1.ModNScalar
		sumE.Set(&e0)
		sumE.Add(&e1)
		if sumE != e {
			return false
		}

		if sum == nil {
			sum = c
		} else {
			sum = pointAdd(sum, c)
		}
	}
	return sum != nil && bytesEqual(sum.SerializeCompressed(), target.SerializeCompressed())
}

func encodeRangeProof(proofs []bitProof) []byte {
	var out []byte
	put := func(b []byte) {
		out = append(out, byte(len(b)>>8), byte(len(b)))
		out = append(out, b...)
	}
	for _, p := range proofs {
		put(p.C)
		put(p.E0)
		put(p.E1)
		put(p.S0)
		put(p.S1)
	}
	return out
}

func decodeRangeProof(data []byte) ([]bitProof, error) {
	pos := 0
	read := func() ([]byte, error) {
		if pos+2 > len(data) {
			return nil, errors.New("crypto: truncated range proof")
		}
		n := int(data[pos])<<8 | int(data[pos+1])
		pos += 2
		if pos+n > len(data) {
			return nil, errors.New("crypto: truncated range proof chunk")
		}
		b := data[pos : pos+n]
		pos += n
		return b, nil
	}
	var proofs []bitProof
	for pos < len(data) {
		var p bitProof
		var err error
		if p.C, err = read(); err != nil {
			return nil, err
		}
		if p.E0, err = read(); err != nil {
			return nil, err
		}
		if p.E1, err = read(); err != nil {
			return nil, err
		}
		if p.S0, err = read(); err != nil {
			return nil, err
		}
		if p.S1, err = read(); err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, nil
}
