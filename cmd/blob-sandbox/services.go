package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lixenwraith/paintblob/audio"
	"github.com/lixenwraith/paintblob/config"
)

// service is a sandbox subsystem with a start/stop lifecycle
type service interface {
	Name() string
	// Dependencies names services that must start first
	Dependencies() []string
	Start() error
	Stop() error
}

// hub starts services in dependency order and stops them in reverse
type hub struct {
	services map[string]service
	started  []string
	log      *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{services: make(map[string]service), log: logger}
}

func (h *hub) register(svc service) error {
	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	return nil
}

// startAll starts every service; on failure the already started ones are stopped in reverse order
func (h *hub) startAll() error {
	order, err := h.topologicalSort()
	if err != nil {
		return err
	}

	h.started = h.started[:0]
	for _, name := range order {
		if err := h.services[name].Start(); err != nil {
			h.stopAll()
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// stopAll stops started services in reverse order, errors are logged and never abort the sweep
func (h *hub) stopAll() {
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			h.log.Warn("service stop failed", "service", name, "err", err)
		}
	}
	h.started = h.started[:0]
}

// topologicalSort orders services with Kahn's algorithm, ties broken by name
func (h *hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)

	for name := range h.services {
		inDegree[name] = 0
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	slices.Sort(queue)

	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		next := dependents[name]
		slices.Sort(next)
		for _, dependent := range next {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(h.services) {
		return nil, errors.New("circular dependency detected in services")
	}
	return result, nil
}

// audioService plays cues; a missing audio device is not an error
type audioService struct {
	player *audio.Player
	log    *slog.Logger
}

func (s *audioService) Name() string           { return "audio" }
func (s *audioService) Dependencies() []string { return nil }

func (s *audioService) Start() error {
	if err := s.player.Initialize(); err != nil {
		s.log.Info("audio unavailable, continuing without cues", "err", err)
	}
	return nil
}

func (s *audioService) Stop() error {
	s.player.Cleanup()
	return nil
}

// watcherService hot-reloads the tunables file into the store
type watcherService struct {
	path   string
	store  *config.Store
	log    *slog.Logger
	cancel context.CancelFunc
}

func (s *watcherService) Name() string           { return "config-watcher" }
func (s *watcherService) Dependencies() []string { return nil }

func (s *watcherService) Start() error {
	w, err := config.NewWatcher(s.path, s.store, s.log)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	goSafe(func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("config watcher stopped", "err", err)
		}
	})
	return nil
}

func (s *watcherService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
