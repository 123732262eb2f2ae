package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "pincheck/pkg/domain-errors"
)

func TestRunConcurrent(t *testing.T) {
	res := RunConcurrent(30, func(idx int) error {
		switch idx % 3 {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeNotFound, "missing")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(10), res.Successes)
	assert.Equal(t, int32(10), res.NotFounds)
	assert.Equal(t, int32(10), res.Errors)
	assert.Equal(t, int32(30), res.Total())
}
