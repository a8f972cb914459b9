package draft

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// exportAll lets cmp look inside unexported fields instead of panicking on them.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// Produce applies recipe to a deep copy of base and returns the reconciled
// result. T should be a pointer, slice or map type so that recipe can edit
// the draft in place; for plain struct values use Clone and Reconcile.
//
// If recipe leaves the draft structurally equal to base, base itself is
// returned.
func Produce[T any](base T, recipe func(draft T)) T {
	d := Clone(base)
	recipe(d)
	return Reconcile(base, d)
}

// Clone returns a deep copy of the exported structure of v.
//
// Unexported struct fields are copied shallowly: maps, slices and pointers
// held in them are shared between v and the copy, so a draft must not be
// mutated through them.
func Clone[T any](v T) T {
	var out T
	reflect.ValueOf(&out).Elem().Set(cloneValue(reflect.ValueOf(&v).Elem()))
	return out
}

// Reconcile returns edited with every subvalue that is structurally equal to
// the corresponding subvalue of base replaced by the base subvalue. When the
// two are equal as a whole, base is returned.
func Reconcile[T any](base, edited T) T {
	var out T
	b := reflect.ValueOf(&base).Elem()
	e := reflect.ValueOf(&edited).Elem()
	reflect.ValueOf(&out).Elem().Set(reconcile(b, e))
	return out
}

// Equal reports whether a and b are structurally equal under the same rules
// Reconcile uses.
func Equal[T any](a, b T) bool {
	return cmp.Equal(a, b, exportAll)
}

func equalValues(a, b reflect.Value) bool {
	return cmp.Equal(a.Interface(), b.Interface(), exportAll)
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		n := reflect.New(v.Type().Elem())
		n.Elem().Set(cloneValue(v.Elem()))
		return n

	case reflect.Struct:
		n := reflect.New(v.Type()).Elem()
		n.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			n.Field(i).Set(cloneValue(v.Field(i)))
		}
		return n

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		n := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(cloneValue(v.Index(i)))
		}
		return n

	case reflect.Array:
		n := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(cloneValue(v.Index(i)))
		}
		return n

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		n := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			n.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return n

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		n := reflect.New(v.Type()).Elem()
		n.Set(cloneValue(v.Elem()))
		return n

	default:
		return v
	}
}

// reconcile expects base and edited to have the same static type.
func reconcile(base, edited reflect.Value) reflect.Value {
	if equalValues(base, edited) {
		return base
	}

	switch edited.Kind() {
	case reflect.Pointer:
		if base.IsNil() || edited.IsNil() {
			return edited
		}
		n := reflect.New(edited.Type().Elem())
		n.Elem().Set(reconcile(base.Elem(), edited.Elem()))
		return n

	case reflect.Struct:
		n := reflect.New(edited.Type()).Elem()
		n.Set(edited)
		for i := 0; i < edited.NumField(); i++ {
			if !edited.Type().Field(i).IsExported() {
				continue
			}
			n.Field(i).Set(reconcile(base.Field(i), edited.Field(i)))
		}
		return n

	case reflect.Slice:
		if base.IsNil() || edited.IsNil() {
			return edited
		}
		n := reflect.MakeSlice(edited.Type(), edited.Len(), edited.Len())
		for i := 0; i < edited.Len(); i++ {
			if i < base.Len() {
				n.Index(i).Set(reconcile(base.Index(i), edited.Index(i)))
			} else {
				n.Index(i).Set(edited.Index(i))
			}
		}
		return n

	case reflect.Array:
		n := reflect.New(edited.Type()).Elem()
		for i := 0; i < edited.Len(); i++ {
			n.Index(i).Set(reconcile(base.Index(i), edited.Index(i)))
		}
		return n

	case reflect.Map:
		if base.IsNil() || edited.IsNil() {
			return edited
		}
		n := reflect.MakeMapWithSize(edited.Type(), edited.Len())
		iter := edited.MapRange()
		for iter.Next() {
			if prev := base.MapIndex(iter.Key()); prev.IsValid() {
				n.SetMapIndex(iter.Key(), reconcile(prev, iter.Value()))
			} else {
				n.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		return n

	case reflect.Interface:
		if base.IsNil() || edited.IsNil() || base.Elem().Type() != edited.Elem().Type() {
			return edited
		}
		n := reflect.New(edited.Type()).Elem()
		n.Set(reconcile(base.Elem(), edited.Elem()))
		return n

	default:
		return edited
	}
}
