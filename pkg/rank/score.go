package rank

import (
	"fmt"
	"math"
)

// Score computes the priority key for one occurrence of a command.
//
// prior carries the command's accumulated score from more recent
// occurrences, order is the 1-based recurrence order counted backward
// from the newest history entry, and length is the command text length.
// Lower keys sort first: the newest occurrence of a short command makes
// the strongest candidate, every older recurrence and every extra
// character adds weight.
//
// order must be positive; ln is undefined at zero and the pipeline
// never produces it. A sum past the 32-bit keyspace means the inputs
// are corrupt, not large, so both cases abort.
func Score(prior uint32, order int, length int) uint32 {
	if order <= 0 {
		panic(fmt.Sprintf("rank: recurrence order must be positive, got %d", order))
	}
	recency := math.Floor(10 * math.Log(float64(order)))
	sum := uint64(prior) + uint64(recency) + uint64(length)
	if sum > math.MaxUint32 {
		panic(fmt.Sprintf("rank: score %d exceeds the 32-bit keyspace", sum))
	}
	return uint32(sum)
}
