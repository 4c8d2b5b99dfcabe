package canvas

import "testing"

func TestInitialize(t *testing.T) {
	cfg := DefaultConfiguration()
	vp := Viewport{Width: 1600, Height: 800}

	got := Initialize(vp, cfg)
	if got.Scale != InitialScale(vp, cfg) {
		t.Errorf("Scale = %v, want %v", got.Scale, InitialScale(vp, cfg))
	}
	if got.Position != InitialPosition(got.Scale, cfg) {
		t.Errorf("Position = %+v, want %+v", got.Position, InitialPosition(got.Scale, cfg))
	}
}

func TestStoreReplace(t *testing.T) {
	s := NewStore(Transform{Scale: 1})

	next := Transform{Scale: 0.5, Position: Point{X: 10, Y: 20}}
	s.Replace(next)
	if s.Current() != next {
		t.Errorf("Current() = %+v, want %+v", s.Current(), next)
	}

	// Replace is a full overwrite, not a merge.
	s.Replace(Transform{Scale: 0.75})
	if s.Current().Position != (Point{}) {
		t.Errorf("Position = %+v, want zero after overwrite", s.Current().Position)
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(Transform{Scale: 1})

	var order []string
	var seen Transform
	unsubA := s.Subscribe(func(tr Transform) { order = append(order, "a"); seen = tr })
	s.Subscribe(func(Transform) { order = append(order, "b") })

	s.Replace(Transform{Scale: 0.3})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("notification order = %v, want [a b]", order)
	}
	if seen.Scale != 0.3 {
		t.Errorf("subscriber saw %+v", seen)
	}

	unsubA()
	order = nil
	s.Replace(Transform{Scale: 0.4})
	if len(order) != 1 || order[0] != "b" {
		t.Errorf("after unsubscribe order = %v, want [b]", order)
	}
}

func TestTransformString(t *testing.T) {
	tr := Transform{Scale: 0.6536, Position: Point{X: 1236.6667, Y: 212}}
	want := "scale=0.65 position=(1236.67, 212.00)"
	if got := tr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
