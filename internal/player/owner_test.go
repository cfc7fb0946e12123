package player

import (
	"errors"
	"testing"
)

func TestInitializeIsIdempotent(t *testing.T) {
	created := 0
	owner := NewElementOwner(nil, func(volume float64) (Element, error) {
		created++
		return newFakeElement(), nil
	}, 0.4)

	first := owner.Initialize()
	second := owner.Initialize()

	if created != 1 {
		t.Errorf("factory called %d times, want 1", created)
	}
	if first == nil || first != second {
		t.Errorf("Initialize returned %v then %v, want the same element", first, second)
	}
	if owner.Element() != first {
		t.Error("Element() differs from the initialized element")
	}
	if got := first.Volume(); got != 0.4 {
		t.Errorf("initial volume = %v, want 0.4", got)
	}
}

func TestInitializeAdoptsExistingElement(t *testing.T) {
	existing := newFakeElement()
	owner := NewElementOwner(existing, func(volume float64) (Element, error) {
		t.Fatal("factory called while an element already exists")
		return nil, nil
	}, 0.4)

	if got := owner.Initialize(); got != existing {
		t.Errorf("Initialize = %v, want the existing element", got)
	}
}

func TestInitializeFactoryFailure(t *testing.T) {
	fail := true
	owner := NewElementOwner(nil, func(volume float64) (Element, error) {
		if fail {
			return nil, errors.New("no audio device")
		}
		return newFakeElement(), nil
	}, 1)

	if got := owner.Initialize(); got != nil {
		t.Fatalf("Initialize = %v, want nil on factory failure", got)
	}
	fail = false
	if got := owner.Initialize(); got == nil {
		t.Error("Initialize did not retry the factory")
	}
}

func TestRelease(t *testing.T) {
	element := newFakeElement()
	owner := NewElementOwner(element, nil, 1)
	owner.Initialize()

	if err := owner.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !element.closed {
		t.Error("element not closed on release")
	}
	if owner.Element() != nil {
		t.Error("element still held after release")
	}
	if err := owner.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}
