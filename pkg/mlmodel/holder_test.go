package mlmodel

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logging.Logger {
	l := logging.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

func TestHolderLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	loader := func(path string) (*Handle, error) {
		calls.Add(1)
		return Load(path)
	}
	holder := NewHolderWithLoader("testdata/car_price_model_rf.json", loader, quietLogger())

	assert.Equal(t, models.ModelStatusNotLoaded, holder.Info().Status)
	assert.Equal(t, int32(0), calls.Load(), "loading is lazy")

	var wg sync.WaitGroup
	handles := make([]*Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := holder.Get()
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}

	info := holder.Info()
	assert.True(t, info.Ready())
	assert.Equal(t, models.ModelTypeRandomForest, info.Type)
	assert.Equal(t, 25, info.FeatureCount)
	assert.True(t, info.HasFeatureNames)
	assert.Equal(t, 2, info.Trees)
	assert.NotNil(t, info.LoadedAt)
}

func TestHolderRemembersFailure(t *testing.T) {
	var calls atomic.Int32
	loader := func(path string) (*Handle, error) {
		calls.Add(1)
		return nil, &LoadError{Path: path, Err: errors.New("no such file")}
	}
	holder := NewHolderWithLoader("missing.json", loader, quietLogger())

	_, err := holder.Get()
	require.Error(t, err)
	_, err = holder.Get()
	require.Error(t, err)

	assert.Equal(t, int32(1), calls.Load(), "a failed load is not retried")
	info := holder.Info()
	assert.Equal(t, models.ModelStatusUnavailable, info.Status)
	assert.Contains(t, info.Error, "no such file")
}

func TestHolderClose(t *testing.T) {
	holder := NewHolder("testdata/car_price_model_rf.json", quietLogger())
	_, err := holder.Get()
	require.NoError(t, err)

	require.NoError(t, holder.Close())
	require.NoError(t, holder.Close())

	_, err = holder.Get()
	assert.ErrorIs(t, err, ErrHolderClosed)
	assert.Equal(t, models.ModelStatusClosed, holder.Info().Status)
}

func TestHolderCloseBeforeLoad(t *testing.T) {
	var calls atomic.Int32
	holder := NewHolderWithLoader("testdata/car_price_model_rf.json", func(path string) (*Handle, error) {
		calls.Add(1)
		return Load(path)
	}, quietLogger())

	require.NoError(t, holder.Close())
	_, err := holder.Get()
	assert.ErrorIs(t, err, ErrHolderClosed)
	assert.Equal(t, int32(0), calls.Load())
}
