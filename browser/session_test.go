package browser

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/proto"
)

func TestIsMainDOMContentLoaded(t *testing.T) {
	const (
		main   proto.PageFrameID            = "MAIN"
		child  proto.PageFrameID            = "CHILD"
		loader proto.NetworkLoaderID        = "L2"
		dcl    proto.PageLifecycleEventName = proto.PageLifecycleEventNameDOMContentLoaded
	)

	tests := []struct {
		name string
		e    proto.PageLifecycleEvent
		want bool
	}{
		{"main frame new document", proto.PageLifecycleEvent{FrameID: main, LoaderID: loader, Name: dcl}, true},
		{"child frame", proto.PageLifecycleEvent{FrameID: child, LoaderID: "C1", Name: dcl}, false},
		{"child frame sharing loader", proto.PageLifecycleEvent{FrameID: child, LoaderID: loader, Name: dcl}, false},
		{"previous document", proto.PageLifecycleEvent{FrameID: main, LoaderID: "L1", Name: dcl}, false},
		{"other event", proto.PageLifecycleEvent{FrameID: main, LoaderID: loader, Name: proto.PageLifecycleEventNameInit}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMainDOMContentLoaded(&tt.e, main, loader); got != tt.want {
				t.Errorf("isMainDOMContentLoaded = %v, want %v", got, tt.want)
			}
		})
	}
}

// stuckClient is a CDP client whose calls never answer.
type stuckClient struct{}

func (stuckClient) Event() <-chan *cdp.Event { return make(chan *cdp.Event) }

func (stuckClient) Call(ctx context.Context, _, _ string, _ interface{}) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeProcess struct {
	kills    atomic.Int32
	cleanups atomic.Int32
}

func (p *fakeProcess) Kill()    { p.kills.Add(1) }
func (p *fakeProcess) Cleanup() { p.cleanups.Add(1) }

func TestRodSession_CloseBoundedOnStuckConnection(t *testing.T) {
	orig := closeTimeout
	closeTimeout = 50 * time.Millisecond
	defer func() { closeTimeout = orig }()

	proc := &fakeProcess{}
	s := &rodSession{browser: rod.New().Client(stuckClient{}), proc: proc}

	done := make(chan error, 1)
	go func() { done <- s.Close() }()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected close error from a stuck connection")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on a stuck connection")
	}

	if proc.kills.Load() != 1 {
		t.Errorf("kills = %d, want 1", proc.kills.Load())
	}
	if proc.cleanups.Load() != 1 {
		t.Errorf("cleanups = %d, want 1", proc.cleanups.Load())
	}

	// Second close is a no-op.
	_ = s.Close()
	if proc.cleanups.Load() != 1 {
		t.Errorf("cleanups after second Close = %d, want 1", proc.cleanups.Load())
	}
}
