package progress

// Sink consumes progress events. The crawl loop is single-threaded, so
// implementations are invoked sequentially and need no locking of their own.
type Sink interface {
	Consume(evt Event)
}

// Emitter fans events out to a set of sinks. The crawler depends on this
// interface so tests can capture emissions.
type Emitter interface {
	Emit(evt Event)
}

// Fanout is the default Emitter: it forwards each event to every sink.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds an Emitter over the given sinks. Nil sinks are skipped.
func NewFanout(sinks ...Sink) *Fanout {
	out := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			out.sinks = append(out.sinks, s)
		}
	}
	return out
}

// Emit forwards the event to every sink.
func (f *Fanout) Emit(evt Event) {
	for _, s := range f.sinks {
		s.Consume(evt)
	}
}
