package midi

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

type fakeHost struct {
	mu        sync.Mutex
	ports     []Port
	err       error
	listeners map[string]func([]byte, int32)
	calls     []string
}

func newFakeHost(ids ...string) *fakeHost {
	h := &fakeHost{listeners: make(map[string]func([]byte, int32))}
	for _, id := range ids {
		h.ports = append(h.ports, Port{ID: id, Name: id})
	}
	return h
}

func (h *fakeHost) Inputs() ([]Port, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	out := make([]Port, len(h.ports))
	copy(out, h.ports)
	return out, nil
}

func (h *fakeHost) Listen(id string, fn func([]byte, int32)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, "listen:"+id)
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.calls = append(h.calls, "stop:"+id)
		delete(h.listeners, id)
	}, nil
}

func (h *fakeHost) send(id string, msg ...byte) bool {
	h.mu.Lock()
	fn := h.listeners[id]
	h.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(msg, 0)
	return true
}

func (h *fakeHost) listening() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []string
	for id := range h.listeners {
		ids = append(ids, id)
	}
	return ids
}

func (h *fakeHost) callLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []NoteOnEvent
}

func (d *recordingDispatcher) Dispatch(ev NoteOnEvent) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return 1
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func TestRequestGrantedSubscribesFirstInput(t *testing.T) {
	host := newFakeHost("pad-a", "pad-b")
	im := NewInputManager(host, &recordingDispatcher{}, "")

	if im.State() != StateUnrequested {
		t.Fatalf("initial state = %v", im.State())
	}
	if err := im.Request(context.Background()); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if im.State() != StateGranted {
		t.Errorf("state = %v, want granted", im.State())
	}
	if got := im.Selected(); got != "pad-a" {
		t.Errorf("selected = %q, want pad-a", got)
	}
	if got := len(im.Devices()); got != 2 {
		t.Errorf("devices = %d, want 2", got)
	}
	if got := host.listening(); !reflect.DeepEqual(got, []string{"pad-a"}) {
		t.Errorf("listening = %v", got)
	}
}

func TestRequestPrefersPreviousChoice(t *testing.T) {
	host := newFakeHost("pad-a", "pad-b")
	im := NewInputManager(host, nil, "pad-b")
	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := im.Selected(); got != "pad-b" {
		t.Errorf("selected = %q, want pad-b", got)
	}

	gone := newFakeHost("pad-a")
	im = NewInputManager(gone, nil, "pad-b")
	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := im.Selected(); got != "pad-a" {
		t.Errorf("fallback selected = %q, want pad-a", got)
	}
}

func TestRequestNoInputs(t *testing.T) {
	host := newFakeHost()
	im := NewInputManager(host, nil, "")
	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	if im.State() != StateGranted {
		t.Errorf("state = %v", im.State())
	}
	if got := im.Selected(); got != "" {
		t.Errorf("selected = %q, want none", got)
	}
}

func TestRequestDenied(t *testing.T) {
	host := newFakeHost("pad-a")
	host.err = ErrPermissionDenied
	im := NewInputManager(host, nil, "")

	err := im.Request(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want permission denied", err)
	}
	if im.State() != StateDenied {
		t.Errorf("state = %v, want denied", im.State())
	}
	if len(im.Devices()) != 0 {
		t.Errorf("devices not empty after denial")
	}
	if len(host.callLog()) != 0 {
		t.Errorf("listen attempted after denial: %v", host.callLog())
	}
}

func TestSelectAfterDenialRequestsAgain(t *testing.T) {
	host := newFakeHost("pad-a", "pad-b")
	host.err = ErrPermissionDenied
	im := NewInputManager(host, &recordingDispatcher{}, "")

	if err := im.Request(context.Background()); err == nil {
		t.Fatal("expected denial")
	}

	host.mu.Lock()
	host.err = nil
	host.mu.Unlock()

	im.Select("pad-b")
	if im.State() != StateGranted {
		t.Fatalf("state = %v, want granted after selecting a device", im.State())
	}
	if got := im.Selected(); got != "pad-b" {
		t.Errorf("selected = %q, want pad-b", got)
	}
	if want := []string{"listen:pad-b"}; !reflect.DeepEqual(host.callLog(), want) {
		t.Errorf("calls = %v, want %v", host.callLog(), want)
	}
}

func TestRequestUnavailable(t *testing.T) {
	im := NewInputManager(nil, nil, "")
	err := im.Request(context.Background())
	if !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if im.State() != StateUnavailable {
		t.Errorf("state = %v, want unavailable", im.State())
	}
}

func TestSelectUnsubscribesBeforeSubscribing(t *testing.T) {
	host := newFakeHost("pad-a", "pad-b")
	var persisted string
	im := NewInputManager(host, &recordingDispatcher{}, "")
	im.OnSelect(func(id string) { persisted = id })

	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	im.Select("pad-b")

	want := []string{"listen:pad-a", "stop:pad-a", "listen:pad-b"}
	if got := host.callLog(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if persisted != "pad-b" {
		t.Errorf("OnSelect got %q", persisted)
	}
	if host.send("pad-a", 0x90, 36, 100) {
		t.Error("old input still subscribed")
	}

	// Selecting the active input again does not resubscribe
	im.Select("pad-b")
	if got := len(host.callLog()); got != 3 {
		t.Errorf("reselect caused %d calls", got-3)
	}
}

func TestHandleDispatchesSynchronously(t *testing.T) {
	host := newFakeHost("pad-a")
	d := &recordingDispatcher{}
	im := NewInputManager(host, d, "")
	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}

	host.send("pad-a", 0x90, 36, 100)
	if d.count() != 1 {
		t.Fatalf("dispatched %d, want 1 before send returned", d.count())
	}

	host.send("pad-a", 0x90, 60, 0) // zero velocity
	host.send("pad-a", 0x80, 60, 0)
	host.send("pad-a", 0xB0, 1, 2)
	if d.count() != 1 {
		t.Errorf("non note-on messages dispatched: %d", d.count())
	}

	host.send("pad-a", 0x91, 38, 90)
	hist := im.History()
	if len(hist) != 2 {
		t.Fatalf("history len = %d", len(hist))
	}
	if hist[0].Note != 38 || hist[0].Channel != 1 || hist[1].Note != 36 {
		t.Errorf("history = %+v", hist)
	}
}

func TestRescanFollowsHotPlug(t *testing.T) {
	host := newFakeHost("pad-a")
	im := NewInputManager(host, nil, "pad-b")
	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	if im.Selected() != "pad-a" {
		t.Fatalf("selected = %q", im.Selected())
	}

	host.mu.Lock()
	host.ports = append(host.ports, Port{ID: "pad-b", Name: "pad-b"})
	host.mu.Unlock()
	im.rescan(context.Background())

	if im.Selected() != "pad-b" {
		t.Errorf("preferred input not picked up after plug: %q", im.Selected())
	}

	host.mu.Lock()
	host.ports = nil
	host.mu.Unlock()
	im.rescan(context.Background())

	if im.Selected() != "" {
		t.Errorf("selected = %q after unplug", im.Selected())
	}
	if len(host.listening()) != 0 {
		t.Errorf("still listening: %v", host.listening())
	}
}

func TestUpdatesCoalesced(t *testing.T) {
	host := newFakeHost("pad-a")
	im := NewInputManager(host, nil, "")
	if err := im.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	host.send("pad-a", 0x90, 1, 1)
	host.send("pad-a", 0x90, 2, 1)

	select {
	case <-im.Updates():
	default:
		t.Fatal("no update signalled")
	}
	select {
	case <-im.Updates():
		t.Fatal("updates not coalesced")
	default:
	}
}
