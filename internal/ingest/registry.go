package ingest

import "sync"

var (
	parsersMu sync.Mutex
	parserReg []Parser
)

// RegisterParser adds a vendor parser to the global set, typically from an
// init function in the parser's package. Order of registration is the order
// the pipeline tries Matches in.
func RegisterParser(p Parser) {
	if p == nil {
		panic("ingest: RegisterParser called with nil parser")
	}
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parserReg = append(parserReg, p)
}

// Registered returns the registered parsers in registration order.
func Registered() []Parser {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	out := make([]Parser, len(parserReg))
	copy(out, parserReg)
	return out
}
