package composite

import (
	"fmt"
	"unicode"

	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
)

var leafCodes = map[rune]datatype.Type{
	'I': datatype.Int32,
	'i': datatype.Uint32,
	'F': datatype.Float32,
	'D': datatype.Double64,
	'L': datatype.Long64,
	'l': datatype.Ulong64,
	'S': datatype.Short16,
	's': datatype.Ushort16,
	'C': datatype.Char8,
	'c': datatype.Uchar8,
	'A': datatype.Charstar8,
}

type parser struct {
	runes []rune
	pos   int
	depth int
}

// Compile parses a composite format string (e.g. "N(I,2F)") into a flat
// opcode program. The format is a comma-separated list of items, each
// an optional repeat count (decimal digits, or N/n/m to read the count
// from the payload) followed by a type code or a parenthesized group.
func Compile(format string) ([]Opcode, error) {
	p := &parser{runes: []rune(format)}

	ops, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	if p.pos != len(p.runes) {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", evioerr.ErrBadFormat, p.runes[p.pos], p.pos)
	}

	return resolveMatchIndices(ops), nil
}

func (p *parser) peek() (rune, bool) {
	if p.pos >= len(p.runes) {
		return 0, false
	}

	return p.runes[p.pos], true
}

func (p *parser) parseSequence() ([]Opcode, error) {
	var ops []Opcode

	for {
		r, ok := p.peek()
		if !ok || r == ')' {
			return ops, nil
		}

		if r == ',' {
			p.pos++

			continue
		}

		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}

		ops = append(ops, item...)
	}
}

func (p *parser) parseItem() ([]Opcode, error) {
	fixedCount, dynamic, err := p.parseCount()
	if err != nil {
		return nil, err
	}

	r, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: expected type or group after count", evioerr.ErrBadFormat)
	}

	if r == '(' {
		return p.parseGroup(fixedCount, dynamic)
	}

	leafType, known := leafCodes[r]
	if !known {
		return nil, fmt.Errorf("%w: unknown format code %q", evioerr.ErrBadFormat, r)
	}

	p.pos++

	count := fixedCount
	if dynamic == DynamicNone && count == 0 {
		count = 1
	}

	return []Opcode{{
		Kind:       OpLeaf,
		LeafType:   leafType,
		FixedCount: count,
		Dynamic:    dynamic,
	}}, nil
}

func (p *parser) parseGroup(fixedCount int, dynamic DynamicCount) ([]Opcode, error) {
	p.depth++
	if p.depth > MaxStackDepth {
		return nil, fmt.Errorf("%w: format nesting exceeds max depth %d", evioerr.ErrBadFormat, MaxStackDepth)
	}
	defer func() { p.depth-- }()

	p.pos++ // consume '('

	inner, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	r, ok := p.peek()
	if !ok || r != ')' {
		return nil, fmt.Errorf("%w: unmatched '('", evioerr.ErrBadFormat)
	}

	p.pos++ // consume ')'

	count := fixedCount
	if dynamic == DynamicNone && count == 0 {
		count = 1
	}

	open := Opcode{Kind: OpGroupOpen, FixedCount: count, Dynamic: dynamic}
	close_ := Opcode{Kind: OpGroupClose}

	ops := make([]Opcode, 0, len(inner)+2)
	ops = append(ops, open)
	ops = append(ops, inner...)
	ops = append(ops, close_)

	// MatchIndex is left unset here; resolveMatchIndices fills it in
	// over the fully assembled program, once every group's final
	// position is known.
	return ops, nil
}

// parseCount reads an optional repeat count: digits for a fixed count,
// or exactly one of N/n/m for a payload-supplied dynamic count.
func (p *parser) parseCount() (fixed int, dynamic DynamicCount, err error) {
	r, ok := p.peek()
	if !ok {
		return 0, DynamicNone, nil
	}

	switch r {
	case 'N':
		p.pos++

		return 0, DynamicN, nil
	case 'n':
		p.pos++

		return 0, DynamicSmallN, nil
	case 'm':
		p.pos++

		return 0, DynamicM, nil
	}

	if !unicode.IsDigit(r) {
		return 0, DynamicNone, nil
	}

	start := p.pos
	for {
		r, ok := p.peek()
		if !ok || !unicode.IsDigit(r) {
			break
		}

		p.pos++
	}

	n := 0
	for _, d := range p.runes[start:p.pos] {
		n = n*10 + int(d-'0')
	}

	if n <= 0 {
		return 0, DynamicNone, fmt.Errorf("%w: non-positive repeat count", evioerr.ErrBadFormat)
	}

	return n, DynamicNone, nil
}

// resolveMatchIndices fills in OpGroupOpen/OpGroupClose.MatchIndex over
// a fully assembled opcode program using a simple bracket-matching scan.
func resolveMatchIndices(ops []Opcode) []Opcode {
	var stack []int

	for i := range ops {
		switch ops[i].Kind {
		case OpGroupOpen:
			stack = append(stack, i)
		case OpGroupClose:
			if len(stack) == 0 {
				continue
			}

			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ops[open].MatchIndex = i
			ops[i].MatchIndex = open
		}
	}

	return ops
}
