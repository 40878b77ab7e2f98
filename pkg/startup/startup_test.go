package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDependency struct {
	name     string
	failures int
	log      *[]string
}

func (f *fakeDependency) GetName() string {
	return f.name
}

func (f *fakeDependency) Start(_ context.Context) error {
	if f.failures > 0 {
		f.failures--
		return errors.New(f.name + " unavailable")
	}
	*f.log = append(*f.log, "start "+f.name)
	return nil
}

func (f *fakeDependency) Stop(_ context.Context) error {
	*f.log = append(*f.log, "stop "+f.name)
	return nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestStartup(t *testing.T) {
	t.Run("starts in order and stops in reverse", func(t *testing.T) {
		var log []string
		s := New(noopLogger(), 1)
		s.AddDependency(&fakeDependency{name: "database", log: &log})
		s.AddDependency(&fakeDependency{name: "kafka", log: &log})

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))

		assert.Equal(t, []string{"start database", "start kafka", "stop kafka", "stop database"}, log)
	})

	t.Run("retries a failing dependency without restarting the others", func(t *testing.T) {
		var log []string
		s := New(noopLogger(), 3)
		s.AddDependency(&fakeDependency{name: "database", log: &log})
		s.AddDependency(&fakeDependency{name: "kafka", failures: 1, log: &log})

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, []string{"start database", "start kafka"}, log)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var log []string
		s := New(noopLogger(), 2)
		s.AddDependency(&fakeDependency{name: "database", failures: 5, log: &log})

		err := s.Start(context.Background())
		assert.ErrorContains(t, err, "database unavailable")
	})

	t.Run("stop skips dependencies that never started", func(t *testing.T) {
		var log []string
		s := New(noopLogger(), 1)
		s.AddDependency(&fakeDependency{name: "database", log: &log})
		s.AddDependency(&fakeDependency{name: "kafka", failures: 1, log: &log})

		require.Error(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))

		assert.Equal(t, []string{"start database", "stop database"}, log)
	})
}
