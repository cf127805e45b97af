package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type posterFunc func(t Type, payload any) (any, error)

func (f posterFunc) PostEvent(t Type, payload any) (any, error) { return f(t, payload) }

func TestTypeStringAndValid(t *testing.T) {
	assert.Equal(t, "pointer_move", PointerMove.String())
	assert.True(t, DataChange.Valid())
	assert.True(t, Custom.Valid())
	assert.False(t, Type(0).Valid())
	assert.False(t, Type(42).Valid())
	assert.Equal(t, "event(42)", Type(42).String())
}

func TestPostTyped(t *testing.T) {
	double := posterFunc(func(_ Type, payload any) (any, error) {
		return payload.(int) * 2, nil
	})
	got, err := Post(double, Key[int]{Type: Custom}, 21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestPostWrongType(t *testing.T) {
	str := posterFunc(func(_ Type, _ any) (any, error) { return "nope", nil })
	_, err := Post(str, Key[int]{Type: Custom}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPayloadType))
}

func TestPostNilResultIsZero(t *testing.T) {
	nilPoster := posterFunc(func(_ Type, _ any) (any, error) { return nil, nil })
	got, err := Post(nilPoster, Key[*int]{Type: Custom}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostKeepsPartialPayloadOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := posterFunc(func(_ Type, payload any) (any, error) { return payload.(int) + 1, boom })
	got, err := Post(failing, Key[int]{Type: Custom}, 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, got)
}
