package deltacodec

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/mewkiz/deltacodec/internal/codec"
	"github.com/mewkiz/deltacodec/wire"
	"github.com/mewkiz/pkg/errutil"
)

// Codec is a compiled schema for T: a reflect-based dispatch tree built once
// at Compile time and reused for every Encode/Decode call thereafter (spec
// §9's "schema-static dispatch").
type Codec[T any] struct {
	typ  reflect.Type
	node codec.Node
}

// compileCache memoizes compiled Nodes by (reflect.Type, Flags), so a type
// reachable from more than one place in a schema is only walked once per
// Compile[T] call. Each Compile call starts with a fresh cache; nothing is
// shared between calls.
type compileCache struct {
	mu    sync.Mutex
	nodes map[cacheKey]codec.Node
}

type cacheKey struct {
	typ   reflect.Type
	flags string
}

func newCompileCache() *compileCache {
	return &compileCache{nodes: make(map[cacheKey]codec.Node)}
}

func flagsKey(f codec.Flags) string {
	return fmt.Sprintf("%+v", f)
}

// Compile builds a Codec for T, walking T's shape once via reflection and
// caching the resulting dispatch tree. Call it once per distinct T (e.g. at
// package init or on first use) and reuse the returned Codec.
func Compile[T any]() (*Codec[T], error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		return nil, errutil.Newf("deltacodec: Compile: %T has no static reflect.Type (use a concrete struct, not an interface)", zero)
	}
	c := &compiler{cache: newCompileCache()}
	node, err := c.Compile(typ, codec.Flags{})
	if err != nil {
		return nil, err
	}
	return &Codec[T]{typ: typ, node: node}, nil
}

// Encode writes the delta between prior (if any) and current to w.
func (c *Codec[T]) Encode(w *wire.Writer, current T, prior *T) error {
	cur := addressableOf(c.typ, current)
	var priorVal reflect.Value
	hasPrior := prior != nil
	if hasPrior {
		priorVal = addressableOf(c.typ, *prior)
	}
	return c.node.Encode(w, "$", cur, priorVal, hasPrior)
}

// Decode reads a value from r, applying it against prior (if any).
func (c *Codec[T]) Decode(r *wire.Reader, prior *T) (T, error) {
	var priorVal reflect.Value
	hasPrior := prior != nil
	if hasPrior {
		priorVal = addressableOf(c.typ, *prior)
	}
	v, err := c.node.Decode(r, "$", priorVal, hasPrior)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.Interface().(T), nil
}

// addressableOf copies v into a freshly allocated, addressable reflect.Value
// of typ. internal/codec's Transparent unwrapping (github.com/mewkiz/deltacodec/internal/codec.SharedNode)
// calls Addr() on values handed to it, so every value flowing into a Node
// must be addressable — not just the struct fields reached by Field()/Index(),
// which reflect already makes addressable once the root is.
func addressableOf(typ reflect.Type, v any) reflect.Value {
	out := reflect.New(typ).Elem()
	out.Set(reflect.ValueOf(v))
	return out
}

// compiler implements codec.Compiler, dispatching on reflect.Kind and the
// hint vocabulary to build the Node tree. It is the one place that knows how
// to turn a Go type plus struct tags into a compiled codec.
type compiler struct {
	cache *compileCache
}

func (c *compiler) Compile(t reflect.Type, flags codec.Flags) (codec.Node, error) {
	key := cacheKey{typ: t, flags: flagsKey(flags)}
	c.cache.mu.Lock()
	if n, ok := c.cache.nodes[key]; ok {
		c.cache.mu.Unlock()
		return n, nil
	}
	c.cache.mu.Unlock()

	if flags.Default {
		n := codec.NewDefault(t)
		c.store(key, n)
		return n, nil
	}

	n, err := c.compileUncached(t, flags)
	if err != nil {
		return nil, err
	}
	c.store(key, n)
	return n, nil
}

func (c *compiler) store(key cacheKey, n codec.Node) {
	c.cache.mu.Lock()
	c.cache.nodes[key] = n
	c.cache.mu.Unlock()
}

func (c *compiler) compileUncached(t reflect.Type, flags codec.Flags) (codec.Node, error) {
	if reflect.PointerTo(t).Implements(codec.TransparentType) {
		inner, err := c.compileTransparentInner(t, flags)
		if err != nil {
			return nil, err
		}
		return codec.NewShared(t, inner), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return codec.NewBool(flags), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return codec.NewInt(t, flags)

	case reflect.Float32, reflect.Float64:
		return codec.NewFloat(t, t.Name(), flags)

	case reflect.Array:
		elem, err := c.compileField(t.Elem(), flags, "")
		if err != nil {
			return nil, err
		}
		return codec.NewArray(t, elem), nil

	case reflect.Slice:
		elem, err := c.compileField(t.Elem(), flags, "")
		if err != nil {
			return nil, err
		}
		return codec.NewSequence(t, elem, flags), nil

	case reflect.Ptr:
		elem, err := c.compileField(t.Elem(), flags, "")
		if err != nil {
			return nil, err
		}
		return codec.NewOptional(t, elem), nil

	case reflect.Struct:
		return c.compileStruct(t, flags)

	default:
		return nil, errutil.Newf("deltacodec: Compile: unsupported kind %s for type %s", t.Kind(), t)
	}
}

// compileTransparentInner compiles the wrapped type of a Transparent wrapper.
// The wrapper must be a struct with exactly one field (as Shared[T] is), and
// that field's declared type is taken as the inner type; DeltacodecInner is
// not called here.
func (c *compiler) compileTransparentInner(wrapper reflect.Type, flags codec.Flags) (codec.Node, error) {
	if wrapper.Kind() != reflect.Struct || wrapper.NumField() != 1 {
		return nil, errutil.Newf("deltacodec: Compile: Transparent wrapper %s must have exactly one field", wrapper)
	}
	return c.compileField(wrapper.Field(0).Type, flags, "")
}

// compileField merges tag to parent, honoring the `default` hint's top
// priority, then compiles typ under the merged flags.
//
// A struct-kind typ is itself an aggregate/union boundary (or a Transparent
// wrapper around one): complete, always, diff, fixed, and default resolve
// per type, never inherited from an enclosing aggregate/union (SPEC_FULL.md's
// "complete is not infectious upward or downward", mirroring
// original_source/derive/src/ty.rs's build_ty, which never threads the
// parent's flags into a nested struct type's own compile). Only the field's
// own tag seeds the baseline in that case; parent is dropped.
func (c *compiler) compileField(typ reflect.Type, parent codec.Flags, tag string) (codec.Node, error) {
	base := parent
	if typ.Kind() == reflect.Struct {
		base = codec.Flags{}
	}
	merged, err := mergeFlags(base, typ, tag)
	if err != nil {
		return nil, err
	}
	return c.Compile(typ, merged)
}

// mergeFlags resolves a field's delta tag against its parent's flags (spec
// §4.4: "field flags are the union of the two") and against the field's Go
// Kind (an int-kind bits(N) and a float-kind bits("I:F") share the same tag
// key, disambiguated here by the destination type).
func mergeFlags(parent codec.Flags, typ reflect.Type, tag string) (codec.Flags, error) {
	raw, err := parseTag(tag)
	if err != nil {
		return codec.Flags{}, err
	}
	f := parent
	f.Always = f.Always || raw.Always
	f.Diff = f.Diff || raw.Diff
	f.Fixed = f.Fixed || raw.Fixed
	f.Complete = f.Complete || raw.Complete
	f.Default = f.Default || raw.Default

	isFloat := typ.Kind() == reflect.Float32 || typ.Kind() == reflect.Float64

	if raw.Bits != "" {
		if isFloat {
			i, fr, err := parseFixedPair(raw.Bits)
			if err != nil {
				return codec.Flags{}, err
			}
			f.Fixed = true
			f.FixedPoint = codec.FixedPoint{I: i, F: fr}
		} else {
			n, err := parseIntBits(raw.Bits)
			if err != nil {
				return codec.Flags{}, err
			}
			f.Bits = n
		}
	}

	if raw.Subbits != "" {
		if isFloat {
			opts, err := parseSubFixed(raw.Subbits)
			if err != nil {
				return codec.Flags{}, err
			}
			f.SubFixed = make([]codec.SubFixedOption, len(opts))
			for i, o := range opts {
				if o.escape {
					f.SubFixed[i] = codec.SubFixedOption{Escape: true}
					continue
				}
				f.SubFixed[i] = codec.SubFixedOption{FixedPoint: codec.FixedPoint{I: o.i, F: o.f}}
			}
		} else {
			widths, err := parseSubWidths(raw.Subbits)
			if err != nil {
				return codec.Flags{}, err
			}
			f.SubWidths = widths
		}
	}

	return f, nil
}

func (c *compiler) compileStruct(t reflect.Type, flags codec.Flags) (codec.Node, error) {
	if isUnionShape(t) {
		return c.compileUnion(t, flags)
	}
	return c.compileAggregate(t, flags)
}

// isUnionShape reports whether t looks like the tagged-union convention
// (spec §4.5's Go rendering): an integer field tagged `delta:"union"` plus
// one pointer-to-struct field per variant (a unit variant points to a
// zero-field struct).
func isUnionShape(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		raw, err := parseTag(sf.Tag.Get(tagKey))
		if err == nil && raw.Union {
			return true
		}
	}
	return false
}

func (c *compiler) compileUnion(t reflect.Type, flags codec.Flags) (codec.Node, error) {
	tagField := -1
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		raw, err := parseTag(sf.Tag.Get(tagKey))
		if err != nil {
			return nil, err
		}
		if raw.Union {
			tagField = i
			break
		}
	}
	if tagField < 0 {
		return nil, errutil.Newf("deltacodec: Compile: %s: no field tagged union", t)
	}

	variants := make([]codec.UnionVariant, 0, t.NumField()-1)
	for i := 0; i < t.NumField(); i++ {
		if i == tagField {
			continue
		}
		sf := t.Field(i)
		if sf.Type.Kind() != reflect.Ptr || sf.Type.Elem().Kind() != reflect.Struct {
			return nil, errutil.Newf("deltacodec: Compile: %s: variant field %s must be a pointer to struct", t, sf.Name)
		}
		payloadType := sf.Type.Elem()
		// A variant's payload struct is its own aggregate boundary: it does
		// not inherit the union's own flags (same rule as compileField's
		// struct-kind reset, above).
		node, err := c.compileStruct(payloadType, codec.Flags{})
		if err != nil {
			return nil, err
		}
		variants = append(variants, codec.UnionVariant{
			Name:         sf.Name,
			PayloadField: i,
			PayloadType:  payloadType,
			Node:         node,
		})
	}

	return codec.NewUnion(t, tagField, variants, flags.Complete), nil
}

func (c *compiler) compileAggregate(t reflect.Type, flags codec.Flags) (codec.Node, error) {
	fields := make([]codec.Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		node, err := c.compileField(sf.Type, flags, sf.Tag.Get(tagKey))
		if err != nil {
			return nil, err
		}
		fields = append(fields, codec.Field{Index: i, Name: sf.Name, Node: node})
	}
	return codec.NewAggregate(t, fields, flags.Complete), nil
}
