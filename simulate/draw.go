package simulate

import (
	"encoding/binary"
	"math"

	"lukechampine.com/frand"
)

// newRNG returns a deterministic generator when seed is nonzero. Each worker
// gets its own stream.
func newRNG(seed uint64, worker int) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], uint64(worker)+1)
	return frand.NewCustom(key[:], 1024, 12)
}

// normal draws a standard normal variate (Box-Muller).
func normal(rng *frand.RNG) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	v := rng.Float64()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

// binomial draws a conversion count out of n at rate p. The normal
// approximation is accurate here: any realistically powered design puts
// n*p well above 10.
func binomial(rng *frand.RNG, n int, p float64) int {
	mu := float64(n) * p
	sd := math.Sqrt(float64(n) * p * (1 - p))
	k := int(math.Round(mu + sd*normal(rng)))
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	return k
}

// sampleMean draws the mean of n observations from Normal(mu, std).
func sampleMean(rng *frand.RNG, mu, std float64, n int) float64 {
	return mu + std/math.Sqrt(float64(n))*normal(rng)
}
