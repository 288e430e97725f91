package value

import "fmt"

// Lt, Le, Gt, Ge are defined same-arm for all integer and float arms;
// not for Ptr.
func (a Value) Lt(b Value) (bool, error) { return compareOp("lt", a, b, -1, false) }
func (a Value) Le(b Value) (bool, error) { return compareOp("le", a, b, -1, true) }
func (a Value) Gt(b Value) (bool, error) { return compareOp("gt", a, b, 1, false) }
func (a Value) Ge(b Value) (bool, error) { return compareOp("ge", a, b, 1, true) }

// compareOp compares a against b and reports whether the sign of the
// comparison matches want (or, when orEqual is set, matches want or is
// zero).
func compareOp(name string, a, b Value, want int, orEqual bool) (bool, error) {
	if !sameArm(a, b) {
		return false, typeMismatch(name, a, b)
	}
	if a.Type == Ptr || a.Type == Void {
		return false, fmt.Errorf("%s: unsupported type %s", name, a.Type)
	}

	var sign int
	switch {
	case a.Type.IsFloat():
		af, bf := a.asFloat64(), b.asFloat64()
		switch {
		case af < bf:
			sign = -1
		case af > bf:
			sign = 1
		default:
			sign = 0
		}
	case isSignedArm(a.Type):
		ai, bi := a.asInt64(), b.asInt64()
		switch {
		case ai < bi:
			sign = -1
		case ai > bi:
			sign = 1
		default:
			sign = 0
		}
	case isUnsignedArm(a.Type):
		au, bu := a.asUint64(), b.asUint64()
		switch {
		case au < bu:
			sign = -1
		case au > bu:
			sign = 1
		default:
			sign = 0
		}
	default:
		return false, fmt.Errorf("%s: unsupported type %s", name, a.Type)
	}

	if sign == 0 {
		return orEqual, nil
	}
	return sign == want, nil
}
