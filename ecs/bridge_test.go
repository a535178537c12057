package ecs

import (
	"testing"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/grove"
)

func newBridgedGraph(t *testing.T) (*grove.SceneGraph, *Bridge) {
	t.Helper()
	bridge := NewBridge(donburi.NewWorld())
	services := grove.NewServices()
	if err := services.Register(bridge); err != nil {
		t.Fatal(err)
	}
	g := grove.New(grove.WithServices(services))
	if err := Register(g); err != nil {
		t.Fatal(err)
	}
	return g, bridge
}

func TestNewBridge(t *testing.T) {
	b := NewBridge(donburi.NewWorld())
	if b == nil {
		t.Fatal("NewBridge returned nil")
	}
	var svc grove.Service = b
	if svc.Name() != ServiceName {
		t.Errorf("Name = %q, want %q", svc.Name(), ServiceName)
	}
}

func TestBridgeMirror(t *testing.T) {
	world := donburi.NewWorld()
	b := NewBridge(world)
	e := grove.NewEntity("hero")

	de := b.Mirror(e)
	if b.Mirror(e) != de {
		t.Error("Mirror should be idempotent")
	}
	if world.Len() != 1 {
		t.Errorf("world.Len = %d, want 1", world.Len())
	}
	if b.Lookup(de) != e {
		t.Error("Lookup should return the scene graph entity")
	}
	if !b.Unmirror(e) {
		t.Error("Unmirror should report the removal")
	}
	if b.Lookup(de) != nil {
		t.Error("Lookup after Unmirror should be nil")
	}
	if b.Unmirror(e) {
		t.Error("second Unmirror should report false")
	}
}

func TestRelayPublishesActions(t *testing.T) {
	g, bridge := newBridgedGraph(t)
	e, err := g.Instantiate(&grove.EntityData{
		Name: "hero",
		Components: grove.ComponentList{
			{Type: RelayType, Properties: map[string]any{"actions": []any{"update", "jump"}}},
		},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if bridge.Mirrored() != 1 {
		t.Fatalf("Mirrored = %d, want 1", bridge.Mirrored())
	}

	var received []ActionEvent
	ActionEventType.Subscribe(bridge.World(), func(w donburi.World, ev ActionEvent) {
		received = append(received, ev)
	})

	g.PerformAction(grove.Update{DT: 0.5})
	g.PerformAction(grove.Message{Kind: "ignored"})
	g.PerformAction(grove.Message{Kind: "jump", Args: []any{3}})

	// Events are queued until the bridge flushes.
	if len(received) != 0 {
		t.Fatalf("received %d events before Flush", len(received))
	}
	bridge.Flush()

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].EntityID != e.ID || received[0].Action.Name() != "update" {
		t.Errorf("event 0: %+v", received[0])
	}
	if bridge.Lookup(received[0].Entity) != e {
		t.Error("event entity should map back to the scene graph entity")
	}
	if m, ok := received[1].Action.(grove.Message); !ok || m.Args[0] != 3 {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestRelayEmptyListForwardsEverything(t *testing.T) {
	g, bridge := newBridgedGraph(t)
	if _, err := g.Instantiate(&grove.EntityData{
		Name:       "all",
		Components: grove.ComponentList{{Type: RelayType}},
	}, nil); err != nil {
		t.Fatal(err)
	}

	var count int
	ActionEventType.Subscribe(bridge.World(), func(w donburi.World, ev ActionEvent) {
		count++
	})
	g.PerformAction(grove.Update{})
	g.PerformAction(grove.View{Width: 1, Height: 1})
	events.ProcessAllEvents(bridge.World())

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestRelayDetachUnmirrors(t *testing.T) {
	g, bridge := newBridgedGraph(t)
	e, err := g.Instantiate(&grove.EntityData{
		Name:       "e",
		Components: grove.ComponentList{{Type: RelayType}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	e.RemoveFromParent()
	if bridge.Mirrored() != 0 {
		t.Errorf("Mirrored = %d, want 0", bridge.Mirrored())
	}
}

func TestRelayWithoutBridgeIsInert(t *testing.T) {
	g := grove.New()
	if err := Register(g); err != nil {
		t.Fatal(err)
	}
	e, err := g.Instantiate(&grove.EntityData{
		Name:       "e",
		Components: grove.ComponentList{{Type: RelayType}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.PerformAction(grove.Update{}) != grove.Pass {
		t.Error("relay must not consume")
	}
}

func TestBridgeClose(t *testing.T) {
	b := NewBridge(donburi.NewWorld())
	b.Mirror(grove.NewEntity("a"))
	b.Mirror(grove.NewEntity("b"))
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if b.Mirrored() != 0 || b.World().Len() != 0 {
		t.Error("Close should remove every mirrored entity")
	}
}
