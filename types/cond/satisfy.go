package cond

// cont is called with the bindings of a successful match and decides whether
// the match as a whole succeeds. Returning false makes the caller try its
// next alternative.
type cont func(*Mapper) bool

func done(*Mapper) bool { return true }

// Satisfies reports whether knowing source is enough to conclude target.
// The check is syntactic: it answers false whenever it cannot tell.
func Satisfies(source, target Condition) bool {
	return satisfies(target, source, NewMapper(), done)
}

// Implies is Satisfies for conditions built against two bindings. Every
// input of target must map onto the source input bound to the same name,
// "it" onto "it".
func Implies(source Condition, sb *Bindings, target Condition, tb *Bindings) bool {
	return satisfies(target, source, NewMapper(), func(m *Mapper) bool {
		return sameNames(m, sb, tb)
	})
}

func sameNames(m *Mapper, sb, tb *Bindings) bool {
	for tin, bound := range m.Targets() {
		sin, ok := bound.(Input)
		if !ok {
			return false
		}
		if tit, ok := tb.It(); ok && tit == tin {
			if sit, ok := sb.It(); !ok || sit != sin {
				return false
			}
			continue
		}
		name, ok := tb.Var(tin)
		if !ok {
			return false
		}
		if sname, ok := sb.Var(sin); !ok || sname != name {
			return false
		}
	}
	return true
}

// satisfies applies the rules for the target variant and then the rules for
// a compound source: a conjunction implies whatever one of its sides
// implies, a disjunction whatever both of its sides imply.
func satisfies(target, source Condition, m *Mapper, k cont) bool {
	if m.Hypothetically(func(h *Mapper) bool { return target.satisfiedBy(source, h, k) }) {
		return true
	}
	switch s := source.(type) {
	case And:
		return m.Hypothetically(func(h *Mapper) bool { return satisfies(target, s.Left, h, k) }) ||
			m.Hypothetically(func(h *Mapper) bool { return satisfies(target, s.Right, h, k) })
	case Or:
		return m.Hypothetically(func(h *Mapper) bool {
			return satisfies(target, s.Left, h, func(h *Mapper) bool {
				return satisfies(target, s.Right, h, k)
			})
		})
	}
	return false
}

// match is satisfaction for operand positions: the two trees must be the
// same up to input binding and the order of commutative operands.
func match(target, source Condition, m *Mapper, k cont) bool {
	switch t := target.(type) {
	case Constant:
		s, ok := source.(Constant)
		return ok && s == t && k(m)
	case Error:
		_, ok := source.(Error)
		return ok && k(m)
	case Input:
		return m.MatchOrBind(source, t) && k(m)
	case Unary:
		s, ok := source.(Unary)
		return ok && s.Op == t.Op && match(t.Operand, s.Operand, m, k)
	case Binary:
		s, ok := source.(Binary)
		return ok && s.Op == t.Op && matchPair(t.Left, t.Right, s.Left, s.Right, t.Op.symmetric(), m, k)
	case Cmp:
		s, ok := source.(Cmp)
		return ok && s.Op == t.Op && matchPair(t.Left, t.Right, s.Left, s.Right, t.Op.symmetric(), m, k)
	case And:
		s, ok := source.(And)
		return ok && matchPair(t.Left, t.Right, s.Left, s.Right, true, m, k)
	case Or:
		s, ok := source.(Or)
		return ok && matchPair(t.Left, t.Right, s.Left, s.Right, true, m, k)
	case Array:
		s, ok := source.(Array)
		return ok && len(s.Items) == len(t.Items) && matchItems(t.Items, s.Items, m, k)
	}
	return false
}

// matchPair matches (tl, tr) against (sl, sr), or against (sr, sl) when swap
// is allowed.
func matchPair(tl, tr, sl, sr Condition, swap bool, m *Mapper, k cont) bool {
	inOrder := m.Hypothetically(func(h *Mapper) bool {
		return match(tl, sl, h, func(h *Mapper) bool { return match(tr, sr, h, k) })
	})
	if inOrder {
		return true
	}
	return swap && m.Hypothetically(func(h *Mapper) bool {
		return match(tl, sr, h, func(h *Mapper) bool { return match(tr, sl, h, k) })
	})
}

func matchItems(target, source []ArrayItem, m *Mapper, k cont) bool {
	if len(target) == 0 {
		return k(m)
	}
	if target[0].Spread != source[0].Spread {
		return false
	}
	return match(target[0].Cond, source[0].Cond, m, func(h *Mapper) bool {
		return matchItems(target[1:], source[1:], h, k)
	})
}

func (c Constant) satisfiedBy(source Condition, m *Mapper, k cont) bool { return match(c, source, m, k) }
func (e Error) satisfiedBy(source Condition, m *Mapper, k cont) bool { return match(e, source, m, k) }
func (in Input) satisfiedBy(source Condition, m *Mapper, k cont) bool { return match(in, source, m, k) }
func (u Unary) satisfiedBy(source Condition, m *Mapper, k cont) bool { return match(u, source, m, k) }
func (b Binary) satisfiedBy(source Condition, m *Mapper, k cont) bool { return match(b, source, m, k) }
func (a Array) satisfiedBy(source Condition, m *Mapper, k cont) bool { return match(a, source, m, k) }

// A known comparison implies the required one when its kind is at least as
// strong and its operands match, in either order when the known comparison
// is = or not =.
func (c Cmp) satisfiedBy(source Condition, m *Mapper, k cont) bool {
	s, ok := source.(Cmp)
	if !ok || !c.Op.impliedBy(s.Op) {
		return false
	}
	return matchPair(c.Left, c.Right, s.Left, s.Right, s.Op.symmetric(), m, k)
}

func (a And) satisfiedBy(source Condition, m *Mapper, k cont) bool {
	if s, ok := source.(And); ok {
		paired := m.Hypothetically(func(h *Mapper) bool {
			return satisfiesEither(a.Left, s.Left, s.Right, h, func(h *Mapper) bool {
				return satisfiesEither(a.Right, s.Left, s.Right, h, k)
			})
		})
		if paired {
			return true
		}
	}
	return m.Hypothetically(func(h *Mapper) bool {
		return satisfies(a.Left, source, h, func(h *Mapper) bool {
			return satisfies(a.Right, source, h, k)
		})
	})
}

// A disjunction is satisfied by a source implying one of its sides. A source
// disjunction is left to satisfies, which needs each of its sides to imply
// the target on its own.
func (o Or) satisfiedBy(source Condition, m *Mapper, k cont) bool {
	return m.Hypothetically(func(h *Mapper) bool { return satisfies(o.Left, source, h, k) }) ||
		m.Hypothetically(func(h *Mapper) bool { return satisfies(o.Right, source, h, k) })
}

func satisfiesEither(target, l, r Condition, m *Mapper, k cont) bool {
	return m.Hypothetically(func(h *Mapper) bool { return satisfies(target, l, h, k) }) ||
		m.Hypothetically(func(h *Mapper) bool { return satisfies(target, r, h, k) })
}
