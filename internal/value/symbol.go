package value

import "fmt"

// Symbol is an ECMAScript symbol primitive. Symbols are compared by
// identity (pointer equality), never by description.
type Symbol struct {
	Description string
	wellKnown   string
}

func NewSymbol(description string) *Symbol {
	return &Symbol{Description: description}
}

func (s *Symbol) String() string {
	if s == nil {
		return "Symbol()"
	}
	return fmt.Sprintf("Symbol(%s)", s.Description)
}

// WellKnown reports the well-known-symbol name this symbol was
// registered under in its Realm ("iterator", "asyncIterator",
// "hasInstance", "toPrimitive", "toStringTag"), or "" if it is an
// ordinary symbol.
func (s *Symbol) WellKnown() string {
	if s == nil {
		return ""
	}
	return s.wellKnown
}

// NewWellKnownSymbol is used only by the realm package when it builds
// the fixed set of well-known symbols for a new Realm.
func NewWellKnownSymbol(name string) *Symbol {
	return &Symbol{Description: "Symbol." + name, wellKnown: name}
}
