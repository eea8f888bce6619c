package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opref/internal/tensor"
)

func TestHyperparam(t *testing.T) {
	var unset Hyperparam
	assert.False(t, unset.IsSet())
	assert.Equal(t, "unset", unset.String())
	_, err := unset.Resolve()
	assert.Error(t, err)

	assert.False(t, Runtime(nil).IsSet())

	v, err := Fixed(0.9).Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)
	assert.Equal(t, "0.9", Fixed(0.9).String())

	bt, err := tensor.FromFloat64([]float64{0.25}, tensor.Shape{1})
	require.NoError(t, err)
	v, err = Runtime(bt).Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)
}

func TestResolveFirst(t *testing.T) {
	bt, err := tensor.FromFloat64([]float64{0.25}, tensor.Shape{1})
	require.NoError(t, err)

	v, err := resolveFirst("beta1", Hyperparam{}, Runtime(bt))
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	v, err = resolveFirst("beta1", Fixed(0.5), Runtime(bt))
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = resolveFirst("beta1", Hyperparam{}, Hyperparam{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
