package schema

import "github.com/spaolacci/murmur3"

const fingerprintSeed = 47

// Fingerprint hashes the binary encoding of the schema. Schemas that encode
// to the same bytes share a fingerprint; the package name is not part of it.
func (s *Schema) Fingerprint() uint64 {
	return murmur3.Sum64WithSeed(s.Encode(), fingerprintSeed)
}
