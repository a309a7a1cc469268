package profile

import "sort"

// opKind identifies the single terminal, whole-value mutation a Patch
// node carries, if any. A node's array splices and pushes are tracked
// separately (see Patch.splices/Patch.pushes) since, unlike these, more
// than one of them can coexist on a single node.
type opKind int

const (
	opNone opKind = iota
	opSet
	opSetRaw
	opInsert
	opReplace
	opDelete
	opDeleteIfPresent
)

// terminal reports whether op fully replaces or removes the node's value,
// making it mutually exclusive with any other op (including a splice
// list) on the same node, and with any operation on that node's
// descendants.
func (op opKind) terminal() bool {
	switch op {
	case opSet, opSetRaw, opInsert, opReplace, opDelete, opDeleteIfPresent:
		return true
	}
	return false
}

// spliceRange is one pending array splice: remove n elements starting at
// index at, then insert elems in their place.
type spliceRange struct {
	at    int
	n     int
	elems []Value
}

// Patch is one node of a path-addressed mutation tree: a trie keyed by
// PathElem, built up with Set/Insert/Replace/Delete/Splice/Push and
// applied to a ValidatedBytes in a single forward pass by Apply.
//
// Each node carries at most one terminal op (Set, SetRaw, Insert,
// Replace, Delete, DeleteIfPresent), or a list of non-overlapping array
// splices plus any number of pushes, never both. Operations under
// disjoint paths can be accumulated before a single Apply call rewrites
// the whole message once.
type Patch struct {
	op       opKind
	value    Value
	raw      ValidatedBytes
	splices  []spliceRange
	pushes   []Value
	children map[PathElem]*Patch
}

// NewPatch returns an empty Patch ready to accumulate operations.
func NewPatch() *Patch { return &Patch{} }

func (p *Patch) childAt(elem PathElem) *Patch {
	if p.children == nil {
		p.children = make(map[PathElem]*Patch)
	}
	c, ok := p.children[elem]
	if !ok {
		c = &Patch{}
		p.children[elem] = c
	}
	return c
}

// at walks path from p, creating nodes as needed, and fails PatchConflict
// if any ancestor along the way (including p itself) already carries a
// terminal op: a terminal op fully replaces or removes that subtree, so
// no operation can target anything beneath it.
func (p *Patch) at(path Path) (*Patch, error) {
	cur := p
	if cur.op.terminal() {
		return nil, err0(PatchConflict)
	}
	for _, elem := range path {
		cur = cur.childAt(elem)
		if cur.op.terminal() {
			return nil, err0(PatchConflict)
		}
	}
	return cur, nil
}

// setTerminal installs a terminal op on the node at path, failing
// InvalidQuery for an empty path (the document root cannot be replaced or
// removed through a path), and PatchConflict if that node already carries
// a terminal op, pending splices/pushes, or operations beneath it.
func (p *Patch) setTerminal(path Path, op opKind, v Value, raw ValidatedBytes) error {
	if len(path) == 0 {
		return err0(InvalidQuery)
	}
	node, err := p.at(path)
	if err != nil {
		return err
	}
	if node.op != opNone || len(node.splices) > 0 || len(node.pushes) > 0 || len(node.children) > 0 {
		return err0(PatchConflict)
	}
	node.op = op
	node.value = v
	node.raw = raw
	return nil
}

// Set records that the value at path is replaced (or, if absent from a
// map, inserted) with v.
func (p *Patch) Set(path Path, v Value) error {
	return p.setTerminal(path, opSet, v, ValidatedBytes{})
}

// SetRaw is Set using an already-encoded subtree, spliced in verbatim.
func (p *Patch) SetRaw(path Path, raw ValidatedBytes) error {
	return p.setTerminal(path, opSetRaw, Value{}, raw)
}

// Insert records that a new map key (path's last element must be a key
// not already present) is added with value v. Apply fails PatchConflict
// if the key already exists.
func (p *Patch) Insert(path Path, v Value) error {
	return p.setTerminal(path, opInsert, v, ValidatedBytes{})
}

// Replace records that the value at path is replaced with v. Apply fails
// MissingKey if path's last element is a map key not already present.
func (p *Patch) Replace(path Path, v Value) error {
	return p.setTerminal(path, opReplace, v, ValidatedBytes{})
}

// Delete records that the value at path is removed. Apply fails
// MissingKey if it is absent.
func (p *Patch) Delete(path Path) error {
	return p.setTerminal(path, opDelete, Value{}, ValidatedBytes{})
}

// DeleteIfPresent is Delete, but Apply succeeds as a no-op if the target
// is already absent.
func (p *Patch) DeleteIfPresent(path Path) error {
	return p.setTerminal(path, opDeleteIfPresent, Value{}, ValidatedBytes{})
}

// rangesOverlap reports whether [aAt, aAt+aN) and [bAt, bAt+bN) share any
// index.
func rangesOverlap(aAt, aN, bAt, bN int) bool {
	return aAt < bAt+bN && bAt < aAt+aN
}

// Splice records an array splice at path: remove n elements starting at
// index at, then insert replacement in their place (either may be empty,
// giving pure insertion or pure deletion). Multiple non-overlapping
// splices may be recorded against the same path and are all applied
// together; a splice whose range overlaps one already recorded at that
// path fails PatchConflict immediately.
func (p *Patch) Splice(path Path, at, n int, replacement []Value) error {
	node, err := p.at(path)
	if err != nil {
		return err
	}
	if node.op != opNone {
		return err0(PatchConflict)
	}
	for _, existing := range node.splices {
		if rangesOverlap(existing.at, existing.n, at, n) {
			return err0(PatchConflict)
		}
	}
	node.splices = append(node.splices, spliceRange{at: at, n: n, elems: replacement})
	return nil
}

// Push records that v is appended to the array at path. Multiple pushes
// against the same path accumulate in call order.
func (p *Patch) Push(path Path, v Value) error {
	node, err := p.at(path)
	if err != nil {
		return err
	}
	if node.op != opNone {
		return err0(PatchConflict)
	}
	node.pushes = append(node.pushes, v)
	return nil
}

// EditOptions controls how Apply resolves ambiguity and bounds its own
// output.
type EditOptions struct {
	Limits Limits

	// CreateMissingMaps allows Set/Insert/SetRaw targeting a path whose
	// intermediate map keys do not exist to synthesize those missing map
	// ancestors instead of failing MissingKey.
	CreateMissingMaps bool
}

// Apply runs every operation accumulated in patch against src in a single
// forward pass, producing a new canonical ValidatedBytes. Operations
// under disjoint paths may be combined into one Patch and applied
// together; Apply itself never mutates src.
func Apply(src ValidatedBytes, patch *Patch, opts EditOptions) (ValidatedBytes, error) {
	limits := opts.Limits
	if limits.MaxDepth == 0 {
		limits = src.Limits()
	}
	root := Root(src)
	return EncodeCanonical(limits, func(e *Encoder) error {
		return applyNode(e, root, patch, opts.CreateMissingMaps)
	})
}

// applyNode writes the result of applying patch (which may be nil, for
// subtrees with no pending operation) to v into e.
func applyNode(e *Encoder, v ValueRef, patch *Patch, createMissing bool) error {
	if patch == nil || (patch.op == opNone && len(patch.children) == 0 && len(patch.splices) == 0 && len(patch.pushes) == 0) {
		return e.Raw(mustRaw(v))
	}

	switch patch.op {
	case opSet, opInsert, opReplace:
		return patch.value.encodeInto(e)
	case opSetRaw:
		return e.Raw(patch.raw)
	case opDelete, opDeleteIfPresent:
		// A delete targeting this exact node is only meaningful from the
		// parent container (which omits the entry/element entirely); if
		// applyNode is reached directly with a delete op, the path did not
		// resolve through a container and there is nothing a scalar delete
		// can do structurally.
		return err0(InvalidQuery)
	}

	switch v.Type() {
	case MapType:
		return applyMapNode(e, v, patch, createMissing)
	case ArrayType:
		return applyArrayNode(e, v, patch, createMissing)
	default:
		return err0(InvalidQuery)
	}
}

func mustRaw(v ValueRef) ValidatedBytes {
	return ValidatedBytes{buf: v.Raw(), limits: v.limits}
}

// synthesizeNode writes the value wholly defined by patch, with no
// corresponding existing value to fall back on. Used only for map
// ancestors created by EditOptions.CreateMissingMaps.
func synthesizeNode(e *Encoder, patch *Patch) error {
	switch patch.op {
	case opSet, opInsert:
		return patch.value.encodeInto(e)
	case opSetRaw:
		return e.Raw(patch.raw)
	case opReplace, opDelete, opDeleteIfPresent:
		return err0(MissingKey)
	}
	if len(patch.children) == 0 && len(patch.splices) == 0 && len(patch.pushes) == 0 {
		return err0(MissingKey)
	}

	type pendingKey struct {
		key    string
		encKey []byte
		child  *Patch
	}
	keys := make([]pendingKey, 0, len(patch.children))
	for elem, child := range patch.children {
		if !elem.IsKey {
			// A synthesized ancestor is always a map (there is no existing
			// array to index into), so an array-index child here can never
			// resolve.
			return err0(InvalidQuery)
		}
		keys = append(keys, pendingKey{key: elem.Key, encKey: encodeKeyBytes(elem.Key), child: child})
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareEncodedKeys(keys[i].encKey, keys[j].encKey) < 0
	})
	return e.Map(len(keys), func(me *MapEncoder) error {
		for _, pk := range keys {
			pk := pk
			if err := me.Entry(pk.key, func(c *Encoder) error {
				return synthesizeNode(c, pk.child)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyMapNode(e *Encoder, v ValueRef, patch *Patch, createMissing bool) error {
	if len(patch.splices) > 0 || len(patch.pushes) > 0 {
		return err0(InvalidQuery)
	}

	m, err := v.Map()
	if err != nil {
		return err
	}
	existing, err := m.All()
	if err != nil {
		return err
	}

	type pending struct {
		key    string
		encKey []byte
		write  func(*Encoder) error
		omit   bool
	}
	byKey := make(map[string]*pending, len(existing)+len(patch.children))
	order := make([]*pending, 0, len(existing)+len(patch.children))

	for _, ent := range existing {
		ent := ent
		pe := &pending{key: ent.Key, encKey: encodeKeyBytes(ent.Key), write: func(c *Encoder) error {
			return applyNode(c, ent.Value, patch.children[PK(ent.Key)], createMissing)
		}}
		byKey[ent.Key] = pe
		order = append(order, pe)
	}

	for elem, child := range patch.children {
		if !elem.IsKey {
			continue
		}
		child := child
		if _, ok := byKey[elem.Key]; ok {
			// The entry already exists: Set/Replace/Delete on it are
			// resolved generically below, through the existing entry's own
			// write closure (which re-consults patch.children). Insert
			// against a key that is already present is a conflict.
			if child.op == opInsert {
				return err0(PatchConflict)
			}
			continue
		}
		switch child.op {
		case opInsert, opSet:
			pe := &pending{key: elem.Key, encKey: encodeKeyBytes(elem.Key), write: func(c *Encoder) error {
				return child.value.encodeInto(c)
			}}
			byKey[elem.Key] = pe
			order = append(order, pe)
		case opSetRaw:
			pe := &pending{key: elem.Key, encKey: encodeKeyBytes(elem.Key), write: func(c *Encoder) error {
				return c.Raw(child.raw)
			}}
			byKey[elem.Key] = pe
			order = append(order, pe)
		case opDelete, opDeleteIfPresent:
			if child.op == opDelete {
				return err0(MissingKey)
			}
			// absent and DeleteIfPresent: no-op.
		case opReplace:
			return err0(MissingKey)
		default:
			// No direct op at this key, but there is further-nested
			// structure beneath it (a deeper Set/Insert/etc. under a key
			// that does not exist yet): synthesize the missing ancestor
			// if the caller opted in, otherwise this cannot resolve.
			if createMissing && (len(child.children) > 0 || len(child.splices) > 0 || len(child.pushes) > 0) {
				pe := &pending{key: elem.Key, encKey: encodeKeyBytes(elem.Key), write: func(c *Encoder) error {
					return synthesizeNode(c, child)
				}}
				byKey[elem.Key] = pe
				order = append(order, pe)
				continue
			}
			return err0(MissingKey)
		}
	}

	// Determine per-existing-key omission for delete ops now that we know
	// which keys were only touched via the existing-entry path.
	n := 0
	for _, ent := range existing {
		child := patch.children[PK(ent.Key)]
		if child != nil && (child.op == opDelete || child.op == opDeleteIfPresent) {
			byKey[ent.Key].omit = true
			continue
		}
		n++
	}
	for _, pe := range order {
		if _, existed := byKeyExisted(existing, pe.key); !existed {
			n++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		return compareEncodedKeys(order[i].encKey, order[j].encKey) < 0
	})

	return e.Map(n, func(me *MapEncoder) error {
		for _, pe := range order {
			if pe.omit {
				continue
			}
			if err := me.Entry(pe.key, pe.write); err != nil {
				return err
			}
		}
		return nil
	})
}

func byKeyExisted(existing []Entry, key string) (Entry, bool) {
	for _, e := range existing {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

func applyArrayNode(e *Encoder, v ValueRef, patch *Patch, createMissing bool) error {
	a, err := v.Array()
	if err != nil {
		return err
	}
	elems, err := a.All()
	if err != nil {
		return err
	}

	// Insert only adds map keys, and an element op whose index has no
	// element in the original array has nothing to act on.
	for elem, child := range patch.children {
		if elem.IsKey {
			continue
		}
		if child.op == opInsert {
			return err0(InvalidQuery)
		}
		if (elem.Index >= 0 && elem.Index < len(elems)) || child.op == opDeleteIfPresent {
			continue
		}
		if child.op == opDelete {
			return err0(MissingKey)
		}
		return err0(IndexOutOfBounds)
	}

	type pendingElem struct {
		write func(*Encoder) error
		omit  bool
	}
	out := make([]pendingElem, 0, len(elems))
	for i, el := range elems {
		i, el := i, el
		child := patch.children[PI(i)]
		switch {
		case child == nil:
			out = append(out, pendingElem{write: func(c *Encoder) error { return applyNode(c, el, nil, createMissing) }})
		case child.op == opDelete, child.op == opDeleteIfPresent:
			out = append(out, pendingElem{omit: true})
		default:
			out = append(out, pendingElem{write: func(c *Encoder) error { return applyNode(c, el, child, createMissing) }})
		}
	}

	splices := append([]spliceRange(nil), patch.splices...)
	sort.Slice(splices, func(i, j int) bool { return splices[i].at < splices[j].at })

	for i, sp := range splices {
		if sp.at < 0 || sp.n < 0 || sp.at > len(out) || sp.at+sp.n > len(out) {
			return err0(IndexOutOfBounds)
		}
		if i > 0 && sp.at < splices[i-1].at+splices[i-1].n {
			return err0(PatchConflict)
		}
		// Any per-index op whose index falls inside this splice's deleted
		// range is ambiguous: the splice already removes that element.
		for idx := sp.at; idx < sp.at+sp.n; idx++ {
			if patch.children[PI(idx)] != nil {
				return err0(PatchConflict)
			}
		}
	}

	// Merge back-to-front so earlier indices in out stay valid across
	// the merge of later (higher-index) splices.
	for i := len(splices) - 1; i >= 0; i-- {
		sp := splices[i]
		replacement := make([]pendingElem, len(sp.elems))
		for j, rv := range sp.elems {
			rv := rv
			replacement[j] = pendingElem{write: func(c *Encoder) error { return rv.encodeInto(c) }}
		}
		merged := make([]pendingElem, 0, len(out)-sp.n+len(replacement))
		merged = append(merged, out[:sp.at]...)
		merged = append(merged, replacement...)
		merged = append(merged, out[sp.at+sp.n:]...)
		out = merged
	}

	for _, pv := range patch.pushes {
		pv := pv
		out = append(out, pendingElem{write: func(c *Encoder) error { return pv.encodeInto(c) }})
	}

	n := 0
	for _, pe := range out {
		if !pe.omit {
			n++
		}
	}

	return e.Array(n, func(c *Encoder) error {
		for _, pe := range out {
			if pe.omit {
				continue
			}
			if err := pe.write(c); err != nil {
				return err
			}
		}
		return nil
	})
}
