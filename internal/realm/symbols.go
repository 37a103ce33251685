package realm

import "github.com/cwbudde/escript/internal/value"

// WellKnownSymbols is the fixed set of well-known symbols every Realm
// exposes (ECMA-262 6.1.5.1). Only Iterator is consulted by the
// engine (the iteration protocol); the others are created but no
// instanceof, coercion, toString-tag or async-iteration path reads
// them.
type WellKnownSymbols struct {
	Iterator      *value.Symbol
	AsyncIterator *value.Symbol
	HasInstance   *value.Symbol
	ToPrimitive   *value.Symbol
	ToStringTag   *value.Symbol
}

func newWellKnownSymbols() *WellKnownSymbols {
	return &WellKnownSymbols{
		Iterator:      value.NewWellKnownSymbol("iterator"),
		AsyncIterator: value.NewWellKnownSymbol("asyncIterator"),
		HasInstance:   value.NewWellKnownSymbol("hasInstance"),
		ToPrimitive:   value.NewWellKnownSymbol("toPrimitive"),
		ToStringTag:   value.NewWellKnownSymbol("toStringTag"),
	}
}
