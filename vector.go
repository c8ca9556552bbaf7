package deltacodec

import (
	"reflect"
	"sync"

	"github.com/mewkiz/pkg/errutil"
)

// Vec2, Vec3, and Vec4 are plain float32 vectors. They need no special
// handling from the schema compiler: a Vec3 is just a three-field record,
// and the ordinary aggregate codec (one frame per field, in declared order)
// applies to it exactly as it would to any other struct. Each component can
// carry its own `fixed`/`subbits` float hint, same as any float32 field.
type (
	Vec2 struct{ X, Y float32 }
	Vec3 struct{ X, Y, Z float32 }
	Vec4 struct{ X, Y, Z, W float32 }
)

// vectorLike records the types registered via RegisterVectorLike, purely so
// a second registration of the same type can be rejected; the compiler does
// not consult this set, because both the shapes RegisterVectorLike accepts
// (a fixed array of floats, or a struct of float fields) already compile
// correctly through the ordinary array and aggregate paths.
var vectorLike sync.Map // reflect.Type -> struct{}

// RegisterVectorLike declares that T (e.g. a third-party vector type such as
// a `[3]float32`-shaped mgl32.Vec3) should be treated as a flat tuple of
// floating-point components rather than rejected or mis-handled. This module
// ships no vector math dependency of its own (no corpus example pulls one
// in), so there is nothing to wire a real type into by default — this is
// the seam a project with such a dependency uses to assert the shape is
// supported before relying on Compile[T] to walk it.
//
// T must be either a fixed-size array of float32/float64, or a struct whose
// fields are all float32/float64 (an ordinary Vec2/Vec3/Vec4 included). Any
// other shape returns an error: RegisterVectorLike is a validation seam, not
// a way to coerce an unsupported type into compiling.
func RegisterVectorLike[T any]() error {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return errutil.Newf("deltacodec: RegisterVectorLike: %T has no static reflect.Type", zero)
	}
	if err := checkVectorShape(t); err != nil {
		return err
	}
	vectorLike.Store(t, struct{}{})
	return nil
}

func checkVectorShape(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Array:
		if !isFloatKind(t.Elem().Kind()) {
			return errutil.Newf("deltacodec: RegisterVectorLike: %s: array element must be float32 or float64", t)
		}
		return nil
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isFloatKind(t.Field(i).Type.Kind()) {
				return errutil.Newf("deltacodec: RegisterVectorLike: %s: field %s is not float32 or float64", t, t.Field(i).Name)
			}
		}
		return nil
	default:
		return errutil.Newf("deltacodec: RegisterVectorLike: %s: must be a float array or an all-float struct", t)
	}
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// IsVectorLike reports whether T was registered via RegisterVectorLike.
func IsVectorLike[T any]() bool {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return false
	}
	_, ok := vectorLike.Load(t)
	return ok
}
