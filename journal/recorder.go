package journal

import (
	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/clock"
	"github.com/rustyeddy/agentvault/id"
)

// Recorder stamps events with an id and time and hands them to a Journal.
// A sink failure is logged and swallowed: the operation that produced the
// event has already committed.
type Recorder struct {
	j     Journal
	clock clock.Clock
	log   *zap.Logger
}

func NewRecorder(j Journal, c clock.Clock, log *zap.Logger) *Recorder {
	if j == nil {
		j = Discard{}
	}
	if c == nil {
		c = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{j: j, clock: c, log: log}
}

func (r *Recorder) Emit(e Event) Event {
	if e.ID == "" {
		e.ID = id.WithPrefix(id.PrefixEvent)
	}
	if e.Time.IsZero() {
		e.Time = r.clock.Now().UTC()
	}
	if e.Amount.IsNil() {
		e.Amount = math.ZeroInt()
	}

	if err := r.j.Record(e); err != nil {
		r.log.Error("journal record failed",
			zap.String("event", e.ID),
			zap.String("kind", string(e.Kind)),
			zap.String("entity", e.Entity),
			zap.Error(err),
		)
	}
	return e
}
