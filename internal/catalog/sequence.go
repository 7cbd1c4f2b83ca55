package catalog

import "sync/atomic"

// Sequencer provides monotonically increasing request tokens.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next token.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
