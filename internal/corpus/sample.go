package corpus

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrSampleTooLarge is returned when more captions are requested than exist.
var ErrSampleTooLarge = errors.New("sample larger than population")

// Sample draws n items from pool without replacement. The result depends
// only on the pool order, n and seed. The pool is not modified.
func Sample(pool []string, n int, seed int64) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must not be negative: %d", n)
	}
	if n > len(pool) {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrSampleTooLarge, n, len(pool))
	}
	work := make([]string, len(pool))
	copy(work, pool)
	r := rand.New(rand.NewSource(seed))
	// partial Fisher-Yates: the first n slots end up holding the sample
	for i := 0; i < n; i++ {
		j := i + r.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:n:n], nil
}
