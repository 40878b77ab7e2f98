// Package startup sequences boot dependencies: storage first, then messaging,
// in registration order, with retry between attempts.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

type Dependency interface {
	GetName() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Startup starts dependencies in registration order and stops the started
// ones in reverse.
type Startup struct {
	dependencies []Dependency
	started      map[string]bool
	logger       ectologger.Logger
	maxAttempts  int
}

func New(logger ectologger.Logger, maxAttempts int) *Startup {
	return &Startup{
		logger:      logger,
		started:     make(map[string]bool),
		maxAttempts: maxAttempts,
	}
}

func (s *Startup) AddDependency(dependency Dependency) {
	s.dependencies = append(s.dependencies, dependency)
}

func (s *Startup) Start(ctx context.Context) error {
	var lastErr error

	// Fibonacci backoff sequence
	a, b := 1, 1
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.startAll(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		if attempt == s.maxAttempts {
			return fmt.Errorf("startup failed after %d attempts: %w", attempt, lastErr)
		}

		s.logger.Infof("Retrying in %d seconds (attempt %d/%d)", a, attempt, s.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(a) * time.Second):
		}
		a, b = b, a+b
	}

	return lastErr
}

func (s *Startup) startAll(ctx context.Context, attempt int) error {
	s.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

	for _, dependency := range s.dependencies {
		name := dependency.GetName()
		if s.started[name] {
			continue
		}

		s.logger.WithField("dependency", name).Infof("Starting dependency '%s'", name)
		if err := dependency.Start(ctx); err != nil {
			s.logger.WithError(err).Errorf("Startup dependency '%s' attempt %d failed", name, attempt)
			return err
		}
		s.started[name] = true
	}

	return nil
}

func (s *Startup) Stop(ctx context.Context) error {
	for i := len(s.dependencies) - 1; i >= 0; i-- {
		dependency := s.dependencies[i]
		name := dependency.GetName()
		if !s.started[name] {
			continue
		}

		s.logger.WithField("dependency", name).Infof("Stopping dependency '%s'", name)
		if err := dependency.Stop(ctx); err != nil {
			s.logger.WithError(err).Errorf("Failed to stop dependency '%s'", name)
			return err
		}
		s.started[name] = false
	}

	return nil
}
