package errors

import (
	"fmt"
	"strings"
)

// Append combines all given errors into a single error. Nil errors are
// ignored. When only one non nil error is given, it is returned unchanged.
//
// Use it to collect validation problems of many fields at once:
//
//	var errs error
//	errs = AppendField(errs, "Seller", m.Seller.Validate())
//	errs = AppendField(errs, "Buyer", m.Buyer.Validate())
//	return errs
func Append(errs ...error) error {
	var flat []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			flat = append(flat, m.errs...)
			continue
		}
		flat = append(flat, e)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return &multiErr{errs: flat}
	}
}

// AppendField is a shortcut for Append(errs, Field(name, err, "")).
func AppendField(errs error, field string, err error) error {
	return Append(errs, Field(field, err, ""))
}

type unpacker interface {
	Unpack() []error
}

type multiErr struct {
	errs []error
}

func (m *multiErr) Unpack() []error {
	return m.errs
}

func (m *multiErr) Error() string {
	points := make([]string, len(m.errs))
	for i, err := range m.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error, so that a combined
// validation error is reported with a meaningful code.
func (m *multiErr) ABCICode() uint32 {
	return abciCode(m.errs[0])
}
