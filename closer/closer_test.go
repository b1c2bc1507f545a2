package closer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errFirst  = errors.New("first")
	errSecond = errors.New("second")
)

func TestCustomCloser(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CustomCloser(nil))

	called := false
	c := CustomCloser(func() error {
		called = true

		return errFirst
	})

	require.ErrorIs(t, c.Close(), errFirst)
	assert.True(t, called)
}

func TestCloserClosesEverythingInOrder(t *testing.T) {
	t.Parallel()

	var order []string

	record := func(name string, err error) io.Closer {
		return CustomCloser(func() error {
			order = append(order, name)

			return err
		})
	}

	c := NewCloser(record("a", errFirst))
	c.Add(nil)
	c.Add(record("b", nil))
	c.Add(record("c", errSecond))

	err := c.Close()
	require.ErrorIs(t, err, errFirst)
	require.ErrorIs(t, err, errSecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)

	assert.NoError(t, NewCloser().Close())
}

func TestCloseOnce(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CloseOnce(nil))

	calls := 0
	c := CloseOnce(CustomCloser(func() error {
		calls++

		return errFirst
	}))

	require.ErrorIs(t, c.Close(), errFirst)
	require.ErrorIs(t, c.Close(), errFirst)
	assert.Equal(t, 1, calls)
}

func TestForReader(t *testing.T) {
	t.Parallel()

	calls := 0
	rc := ForReader(strings.NewReader("abc"), CustomCloser(func() error {
		calls++

		return nil
	}))

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	require.NoError(t, rc.Close())
	require.NoError(t, rc.Close())
	assert.Equal(t, 1, calls)

	require.NoError(t, ForReader(strings.NewReader(""), nil).Close())
}
