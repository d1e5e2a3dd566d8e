package property

import (
	"reflect"

	"github.com/spf13/cast"

	"enricher/internal/common"
	"enricher/internal/errs"
)

// Conversion describes how a value is brought to a destination type.
type Conversion int

const (
	// ConversionNone - no conversion possible.
	ConversionNone Conversion = iota
	// ConversionAssign - direct assignment.
	ConversionAssign
	// ConversionZero - nil source, destination set to its zero value.
	ConversionZero
	// ConversionCast - scalar conversion through cast.
	ConversionCast
	// ConversionConvert - explicit Go type conversion.
	ConversionConvert
	// ConversionPointerWrap - allocate a pointer holding the converted value.
	ConversionPointerWrap
	// ConversionPointerDeref - dereference the source pointer.
	ConversionPointerDeref
	// ConversionSliceMap - convert element by element.
	ConversionSliceMap
)

// String returns a human-readable conversion name.
func (c Conversion) String() string {
	switch c {
	case ConversionNone:
		return "none"
	case ConversionAssign:
		return "assign"
	case ConversionZero:
		return "zero"
	case ConversionCast:
		return "cast"
	case ConversionConvert:
		return "convert"
	case ConversionPointerWrap:
		return "pointer_wrap"
	case ConversionPointerDeref:
		return "pointer_deref"
	case ConversionSliceMap:
		return "slice_map"
	default:
		return common.UnknownStr
	}
}

// SelectConversion picks the conversion from src to dst.
// A nil src selects ConversionZero.
func SelectConversion(src, dst reflect.Type) Conversion {
	switch {
	case src == nil:
		return ConversionZero
	case src.AssignableTo(dst):
		return ConversionAssign
	case isScalar(dst.Kind()) && isScalar(src.Kind()):
		return ConversionCast
	case dst.Kind() == reflect.Ptr && SelectConversion(src, dst.Elem()) != ConversionNone:
		return ConversionPointerWrap
	case src.Kind() == reflect.Ptr && SelectConversion(src.Elem(), dst) != ConversionNone:
		return ConversionPointerDeref
	case dst.Kind() == reflect.Slice && (src.Kind() == reflect.Slice || src.Kind() == reflect.Array):
		if src.Elem().Kind() == reflect.Interface || SelectConversion(src.Elem(), dst.Elem()) != ConversionNone {
			return ConversionSliceMap
		}

		return ConversionNone
	case src.ConvertibleTo(dst):
		return ConversionConvert
	default:
		return ConversionNone
	}
}

// Assign stores value into dst, converting it when needed.
// dst must be settable.
func Assign(dst reflect.Value, value any) error {
	if !dst.CanSet() {
		return errs.ErrProperty.WithMsg("destination %s is not settable", dst.Type())
	}

	src := reflect.ValueOf(value)
	if src.IsValid() && src.Kind() == reflect.Ptr && src.IsNil() && !src.Type().AssignableTo(dst.Type()) {
		src = reflect.Value{}
	}

	out, err := convert(src, dst.Type())
	if err != nil {
		return err
	}

	dst.Set(out)

	return nil
}

// Convert returns value converted to t.
func Convert(value any, t reflect.Type) (any, error) {
	out, err := convert(reflect.ValueOf(value), t)
	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

func convert(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	for src.IsValid() && src.Kind() == reflect.Interface {
		if src.IsNil() {
			src = reflect.Value{}
			break
		}

		src = src.Elem()
	}

	var srcType reflect.Type
	if src.IsValid() {
		srcType = src.Type()
	}

	switch SelectConversion(srcType, dst) {
	case ConversionZero:
		return reflect.Zero(dst), nil

	case ConversionAssign:
		out := reflect.New(dst).Elem()
		out.Set(src)

		return out, nil

	case ConversionCast:
		return castScalar(src, dst)

	case ConversionConvert:
		return src.Convert(dst), nil

	case ConversionPointerWrap:
		if src.Kind() == reflect.Ptr && src.IsNil() {
			return reflect.Zero(dst), nil
		}

		inner, err := convert(src, dst.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(dst.Elem())
		ptr.Elem().Set(inner)

		return ptr, nil

	case ConversionPointerDeref:
		if src.IsNil() {
			return reflect.Zero(dst), nil
		}

		return convert(src.Elem(), dst)

	case ConversionSliceMap:
		if src.Kind() == reflect.Slice && src.IsNil() {
			return reflect.Zero(dst), nil
		}

		out := reflect.MakeSlice(dst, src.Len(), src.Len())
		for i := range src.Len() {
			elem, err := convert(src.Index(i), dst.Elem())
			if err != nil {
				return reflect.Value{}, err
			}

			out.Index(i).Set(elem)
		}

		return out, nil

	default:
		return reflect.Value{}, errs.ErrProperty.WithMsg("cannot convert %s to %s", srcType, dst)
	}
}

func castScalar(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	if src.Kind() == dst.Kind() {
		return src.Convert(dst), nil
	}

	// cast only knows builtin types
	in := src.Convert(builtins[src.Kind()]).Interface()

	var (
		out any
		err error
	)

	switch dst.Kind() {
	case reflect.String:
		out, err = cast.ToStringE(in)
	case reflect.Bool:
		out, err = cast.ToBoolE(in)
	case reflect.Int:
		out, err = cast.ToIntE(in)
	case reflect.Int8:
		out, err = cast.ToInt8E(in)
	case reflect.Int16:
		out, err = cast.ToInt16E(in)
	case reflect.Int32:
		out, err = cast.ToInt32E(in)
	case reflect.Int64:
		out, err = cast.ToInt64E(in)
	case reflect.Uint:
		out, err = cast.ToUintE(in)
	case reflect.Uint8:
		out, err = cast.ToUint8E(in)
	case reflect.Uint16:
		out, err = cast.ToUint16E(in)
	case reflect.Uint32:
		out, err = cast.ToUint32E(in)
	case reflect.Uint64:
		out, err = cast.ToUint64E(in)
	case reflect.Float32:
		out, err = cast.ToFloat32E(in)
	case reflect.Float64:
		out, err = cast.ToFloat64E(in)
	default:
		return reflect.Value{}, errs.ErrProperty.WithMsg("cannot cast %s to %s", src.Type(), dst)
	}

	if err != nil {
		return reflect.Value{}, errs.ErrProperty.WithMsg("cannot cast %s to %s", src.Type(), dst).WithCause(err)
	}

	// named scalar types: cast yields the builtin, convert to the named one
	return reflect.ValueOf(out).Convert(dst), nil
}

var builtins = map[reflect.Kind]reflect.Type{
	reflect.String:  reflect.TypeFor[string](),
	reflect.Bool:    reflect.TypeFor[bool](),
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Float64: reflect.TypeFor[float64](),
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
