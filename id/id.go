package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the entities that get identifiers.
const (
	PrefixAccount = "acct"
	PrefixAgent   = "agt"
	PrefixEvent   = "evt"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed from crypto/rand; ulid.Monotonic keeps ids minted in the same
	// millisecond increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string. ULIDs sort by generation time, which keeps the
// event journal and its SQLite index in commit order.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if entropy fails or the clock runs past year 10889.
		panic(err)
	}
	return id.String()
}

// WithPrefix returns "prefix_<ulid>", e.g. "acct_01J9...".
func WithPrefix(prefix string) string {
	return prefix + "_" + New()
}
