// Package reward computes the vibes granted for a new post.
package reward

// Func computes a reward from the block timestamp of the action.
type Func func(now uint64) uint64

const (
	// Min and Max bound every reward FromTimestamp can return.
	Min uint64 = 1
	Max uint64 = 100
)

// FromTimestamp returns ((now mod 1000) mod 100) + 1.
//
// The result is predictable by anyone who knows the timestamp, so it is not
// a fair lottery. Hosts that need unpredictability supply their own Func.
func FromTimestamp(now uint64) uint64 {
	return (now%1000)%100 + 1
}
