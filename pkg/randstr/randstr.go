// Package randstr generates short random strings from a fixed alphabet
// using a cryptographically secure source. It backs room-code generation,
// where collisions must be rare but codes never need to be unguessable
// credentials.
package randstr

import (
	"crypto/rand"
	"math/big"
)

type Generator struct {
	alphabet []byte
}

func New(alphabet []byte) *Generator {
	return &Generator{alphabet: alphabet}
}

func (g *Generator) GenerateRandomString(length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(g.alphabet)))

	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		out[i] = g.alphabet[n.Int64()]
	}

	return string(out)
}
