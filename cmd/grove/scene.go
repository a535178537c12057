package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/components"
	"github.com/phanxgames/grove/ecs"
	"github.com/phanxgames/grove/frame"
	"github.com/phanxgames/grove/physics"
	"github.com/phanxgames/grove/prefab"
)

// scene is a scene graph wired to every collaborator service.
type scene struct {
	services *grove.Services
	graph    *grove.SceneGraph
	space    *physics.Space
	bridge   *ecs.Bridge
}

func newScene(logger *slog.Logger, flags *globalFlags) (*scene, error) {
	s := &scene{
		services: grove.NewServices(),
		space:    physics.New(grove.Vec2{Y: flags.gravity}, physics.WithLogger(logger)),
		bridge:   ecs.NewBridge(donburi.NewWorld()),
	}
	s.graph = grove.New(
		grove.WithLogger(logger),
		grove.WithServices(s.services),
		grove.WithDebug(flags.debug),
	)
	for _, svc := range []grove.Service{s.graph, s.space, s.bridge} {
		if err := s.services.Register(svc); err != nil {
			return nil, err
		}
	}
	if err := s.services.Init(); err != nil {
		return nil, err
	}
	if err := errors.Join(components.RegisterAll(s.graph), ecs.Register(s.graph)); err != nil {
		_ = s.services.Close()
		return nil, err
	}
	return s, nil
}

// load instantiates the prefab at path under the root.
func (s *scene) load(path string) (*grove.Entity, error) {
	return prefab.Instantiate(s.graph, os.DirFS(filepath.Dir(path)), filepath.Base(path), nil)
}

func (s *scene) runner(opts ...frame.Option) *frame.Runner {
	base := []frame.Option{
		frame.WithStepper(s.space),
		frame.WithAfterUpdate(s.bridge.Flush),
	}
	return frame.NewRunner(s.graph, append(base, opts...)...)
}

func (s *scene) Close() error {
	if err := s.services.Close(); err != nil {
		return fmt.Errorf("close services: %w", err)
	}
	return nil
}
