package errors_test

import (
	"fmt"
	"testing"

	"github.com/scidaf/daf/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("Is", func(t *testing.T) {
		uncoded := errors.New(errors.ErrUncoded, "uncoded error")
		nf := errors.New(errors.NotFound, "missing scalar: version")
		ae := errors.New(errors.AlreadyExists, "scalar already exists: version")
		nfCustom := errors.New(errors.NotFound, "missing vector: age")

		tests := []struct {
			err    error
			target errors.Code
			exp    bool
		}{
			{err: uncoded, target: errors.ErrUncoded, exp: true},
			{err: uncoded, target: errors.NotFound, exp: false},
			{err: nf, target: errors.NotFound, exp: true},
			{err: nf, target: errors.AlreadyExists, exp: false},
			{err: errors.Wrap(ae, "with message"), target: errors.AlreadyExists, exp: true},
			{err: nfCustom, target: errors.NotFound, exp: true},
		}

		for i, test := range tests {
			t.Run(fmt.Sprintf("test-%d", i), func(t *testing.T) {
				got := errors.Is(test.err, test.target)
				assert.Equal(t, test.exp, got)
			})
		}
	})
}
