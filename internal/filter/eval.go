package filter

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/stringsvc/internal/ir"
)

// Matches reports whether rec satisfies every constraint in set.
// An empty set matches every record.
func Matches(rec ir.Record, set Set) bool {
	ok, err := Eval(set.Predicate(), rec)
	return err == nil && ok
}

// Apply returns the records matching set, preserving their relative
// order, together with the constraints that were applied.
// The result is never nil.
func Apply(records []ir.Record, set Set) ([]ir.Record, Set) {
	pred := set.Predicate()
	out := make([]ir.Record, 0, len(records))
	for _, rec := range records {
		if ok, err := Eval(pred, rec); err == nil && ok {
			out = append(out, rec)
		}
	}
	return out, set
}

// Eval evaluates a predicate tree against a record.
// Eval is a pure function with no side effects.
func Eval(p Predicate, rec ir.Record) (bool, error) {
	if p == nil {
		return true, nil
	}

	switch pred := p.(type) {
	case Equals:
		return evalEquals(pred, rec)
	case *Equals:
		return evalEquals(*pred, rec)
	case AtLeast:
		n, err := intField(pred.Field, rec)
		return err == nil && n >= pred.Value, err
	case *AtLeast:
		return Eval(*pred, rec)
	case AtMost:
		n, err := intField(pred.Field, rec)
		return err == nil && n <= pred.Value, err
	case *AtMost:
		return Eval(*pred, rec)
	case Contains:
		s, err := stringField(pred.Field, rec)
		return err == nil && strings.Contains(s, pred.Substring), err
	case *Contains:
		return Eval(*pred, rec)
	case And:
		return evalAnd(pred, rec)
	case *And:
		return evalAnd(*pred, rec)
	default:
		return false, errors.Newf("unsupported predicate type: %T", p)
	}
}

func evalAnd(and And, rec ir.Record) (bool, error) {
	for _, sub := range and.Predicates {
		ok, err := Eval(sub, rec)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalEquals(eq Equals, rec ir.Record) (bool, error) {
	got, err := fieldValue(eq.Field, rec)
	if err != nil {
		return false, err
	}
	switch want := eq.Value.(type) {
	case ir.IRBool, ir.IRInt, ir.IRString:
		return got == want, nil
	default:
		return false, errors.Newf("field %s: unsupported literal type %T", eq.Field, eq.Value)
	}
}

// fieldValue resolves a field of rec as an IRValue.
func fieldValue(f Field, rec ir.Record) (ir.IRValue, error) {
	switch f {
	case FieldValue:
		return ir.IRString(rec.Value), nil
	case FieldLength:
		return ir.IRInt(rec.Properties.Length), nil
	case FieldWordCount:
		return ir.IRInt(rec.Properties.WordCount), nil
	case FieldIsPalindrome:
		return ir.IRBool(rec.Properties.IsPalindrome), nil
	default:
		return nil, errors.Newf("unknown field %q", f)
	}
}

func intField(f Field, rec ir.Record) (int, error) {
	v, err := fieldValue(f, rec)
	if err != nil {
		return 0, err
	}
	n, ok := v.(ir.IRInt)
	if !ok {
		return 0, errors.Newf("field %s is not an integer", f)
	}
	return int(n), nil
}

func stringField(f Field, rec ir.Record) (string, error) {
	v, err := fieldValue(f, rec)
	if err != nil {
		return "", err
	}
	s, ok := v.(ir.IRString)
	if !ok {
		return "", errors.Newf("field %s is not a string", f)
	}
	return string(s), nil
}
