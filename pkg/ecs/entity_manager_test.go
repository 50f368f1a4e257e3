package ecs

import (
	"reflect"
	"testing"
)

// test-only components
type testOpacityComponent struct {
	Opacity float64
}

type testOffsetComponent struct {
	X, Y float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if id2 != 2 {
		t.Errorf("Second entity ID should be 2, got %d", id2)
	}
	if em.Count() != 2 {
		t.Errorf("Expected 2 live entities, got %d", em.Count())
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	em.AddComponent(id, &testOffsetComponent{X: 100, Y: 200})

	comp, found := em.GetComponent(id, reflect.TypeOf(&testOffsetComponent{}))
	if !found {
		t.Fatal("Component should be found")
	}

	retrieved := comp.(*testOffsetComponent)
	if retrieved.X != 100 || retrieved.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", retrieved.X, retrieved.Y)
	}
}

func TestGenericGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testOpacityComponent{Opacity: 0.4})

	op, ok := GetComponent[*testOpacityComponent](em, id)
	if !ok {
		t.Fatal("typed lookup should succeed")
	}
	if op.Opacity != 0.4 {
		t.Errorf("Expected opacity 0.4, got %f", op.Opacity)
	}

	if _, ok := GetComponent[*testOffsetComponent](em, id); ok {
		t.Error("lookup of a missing component type should fail")
	}
	if _, ok := GetComponent[*testOpacityComponent](em, 999); ok {
		t.Error("lookup on an unknown entity should fail")
	}
}

func TestAddComponentUnknownEntity(t *testing.T) {
	em := NewEntityManager()
	em.AddComponent(42, &testOpacityComponent{})
	if em.Exists(42) {
		t.Error("AddComponent must not create entities implicitly")
	}
}

func TestDestroyEntity(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testOffsetComponent{})

	em.DestroyEntity(id)

	// still readable until the end-of-frame cleanup
	if _, ok := GetComponent[*testOffsetComponent](em, id); !ok {
		t.Error("Entity should still exist before cleanup")
	}
	if em.Count() != 1 {
		t.Errorf("Expected 1 live entity before cleanup, got %d", em.Count())
	}

	em.RemoveMarkedEntities()
	if _, ok := GetComponent[*testOffsetComponent](em, id); ok {
		t.Error("Entity should be removed after cleanup")
	}
	if em.Count() != 0 {
		t.Errorf("Expected 0 live entities after cleanup, got %d", em.Count())
	}
	if em.Exists(id) {
		t.Error("Exists should be false after cleanup")
	}
}

func TestGetEntitiesWithIsOrdered(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 20)
	for i := 0; i < 20; i++ {
		id := em.CreateEntity()
		em.AddComponent(id, &testOpacityComponent{})
		if i%2 == 0 {
			em.AddComponent(id, &testOffsetComponent{})
		}
		ids = append(ids, id)
	}

	all := GetEntitiesWith1[*testOpacityComponent](em)
	if len(all) != 20 {
		t.Fatalf("Expected 20 entities, got %d", len(all))
	}
	for i := range all {
		if all[i] != ids[i] {
			t.Fatalf("Expected ascending order, index %d got %d want %d", i, all[i], ids[i])
		}
	}

	both := GetEntitiesWith2[*testOpacityComponent, *testOffsetComponent](em)
	if len(both) != 10 {
		t.Errorf("Expected 10 entities with both components, got %d", len(both))
	}
	for i := 1; i < len(both); i++ {
		if both[i-1] >= both[i] {
			t.Errorf("Query results out of order: %v", both)
			break
		}
	}
}
