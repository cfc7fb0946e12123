package player

import (
	"reflect"
	"testing"
)

func TestNotifyAllIsolatesFailures(t *testing.T) {
	r := NewVisualRegistry()
	var called []int

	r.Register(VisualRegistrationFunc(func(url string, info PlayerInfo) { called = append(called, 1) }))
	r.Register(VisualRegistrationFunc(func(url string, info PlayerInfo) { panic("broken visual") }))
	r.Register(VisualRegistrationFunc(func(url string, info PlayerInfo) { called = append(called, 3) }))

	r.NotifyAll("tone://528", PlayerInfo{Source: "tone://528"})

	if !reflect.DeepEqual(called, []int{1, 3}) {
		t.Errorf("called = %v, want [1 3]", called)
	}
}

func TestNotifyAllOrderAndArguments(t *testing.T) {
	r := NewVisualRegistry()
	var order []string
	info := PlayerInfo{Id: "heart", Source: "file:///639.mp3", Frequency: 639}

	for _, name := range []string{"a", "b", "c"} {
		name := name
		r.Register(VisualRegistrationFunc(func(url string, got PlayerInfo) {
			if url != info.Source || got != info {
				t.Errorf("%s got (%q, %+v), want (%q, %+v)", name, url, got, info.Source, info)
			}
			order = append(order, name)
		}))
	}
	r.NotifyAll(info.Source, info)

	if !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestDisposerRemovesExactlyOneEntry(t *testing.T) {
	r := NewPrimeRegistry()
	var got []int64

	callback := PrimeCallback(func(prime int64) { got = append(got, prime) })
	disposeFirst := r.Register(callback)
	r.Register(callback)

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}

	// duplicates are notified twice
	r.NotifyAll(523)
	if len(got) != 2 {
		t.Errorf("duplicate registration notified %d times, want 2", len(got))
	}

	disposeFirst()
	disposeFirst()
	if r.Len() != 1 {
		t.Errorf("Len after dispose = %d, want 1", r.Len())
	}

	got = nil
	r.NotifyAll(541)
	if !reflect.DeepEqual(got, []int64{541}) {
		t.Errorf("got = %v, want [541]", got)
	}
}

func TestUnregisterDuringNotify(t *testing.T) {
	r := NewVisualRegistry()
	calls := 0
	var dispose Disposer
	dispose = r.Register(VisualRegistrationFunc(func(url string, info PlayerInfo) {
		calls++
		dispose()
	}))
	r.Register(VisualRegistrationFunc(func(url string, info PlayerInfo) { calls++ }))

	r.NotifyAll("a", PlayerInfo{})
	r.NotifyAll("b", PlayerInfo{})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
