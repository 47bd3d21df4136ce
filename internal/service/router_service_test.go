package service

import (
	"testing"

	"github.com/collab-edit/collab-service/internal/domain"
	"github.com/collab-edit/collab-service/internal/event"
	"github.com/collab-edit/collab-service/internal/registry"
)

func newRouter(t *testing.T) (*RouterService, *registry.Registry, *fakeTransport) {
	t.Helper()
	reg := registry.New()
	tr := &fakeTransport{}
	return NewRouterService(reg, tr), reg, tr
}

func TestBroadcastExcludesSender(t *testing.T) {
	r, reg, tr := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))
	_ = reg.Insert(domain.NewParticipant("c2", "r1", "bob"))

	msg := event.Outbound(event.TypeReceiveMessage, event.ReceiveMessage{Message: []byte(`"hi"`)})
	r.Broadcast("c1", msg)

	if len(tr.groupSends) != 1 {
		t.Fatalf("expected one group send, got %d", len(tr.groupSends))
	}
	g := tr.groupSends[0]
	if g.roomID != "r1" || g.except != "c1" {
		t.Fatalf("sender exclusion broken: %+v", g)
	}
}

func TestBroadcastFromRoomlessConnectionDropped(t *testing.T) {
	r, _, tr := newRouter(t)

	r.Broadcast("ghost", event.Message{Type: event.TypeDrawingUpdate})

	if len(tr.groupSends) != 0 {
		t.Fatal("roomless sender must be dropped silently")
	}
}

func TestUnicast(t *testing.T) {
	r, _, tr := newRouter(t)

	msg := event.Outbound(event.TypeSyncDrawing, event.SyncDrawing{TargetConnectionID: "c2"})
	r.Unicast("c2", msg)

	if len(tr.unicasts) != 1 || tr.unicasts[0].connID != "c2" {
		t.Fatalf("unicast calls: %+v", tr.unicasts)
	}
	if len(tr.groupSends) != 0 {
		t.Fatal("unicast must not touch the group")
	}
}

func TestTypingStartMutatesBeforeBroadcast(t *testing.T) {
	r, reg, tr := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))

	r.TypingStart("c1", 15)

	p, _ := reg.FindByConnection("c1")
	if !p.Typing || p.CursorPosition != 15 {
		t.Fatalf("registry not updated before broadcast: %+v", p)
	}

	sends := tr.groupSendsOf(event.TypeTypingStart)
	if len(sends) != 1 || sends[0].except != "c1" {
		t.Fatalf("typing-start sends: %+v", sends)
	}
	var up event.UserPayload
	if err := event.Decode(sends[0].msg, &up); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !up.User.Typing || up.User.CursorPosition != 15 {
		t.Fatalf("payload must carry the updated row: %+v", up.User)
	}
}

func TestTypingPause(t *testing.T) {
	r, reg, tr := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))
	r.TypingStart("c1", 3)

	r.TypingPause("c1")

	p, _ := reg.FindByConnection("c1")
	if p.Typing {
		t.Fatal("typing flag must drop on pause")
	}
	if got := tr.groupSendsOf(event.TypeTypingPause); len(got) != 1 {
		t.Fatalf("typing-pause sends: %+v", got)
	}
}

func TestTypingFromUnknownConnectionEmitsNothing(t *testing.T) {
	r, _, tr := newRouter(t)

	r.TypingStart("ghost", 1)
	r.TypingPause("ghost")

	if len(tr.groupSends) != 0 {
		t.Fatal("unknown sender must not produce broadcasts")
	}
}

func TestSetOfflineTargetsNamedConnection(t *testing.T) {
	r, reg, tr := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))
	_ = reg.Insert(domain.NewParticipant("c2", "r1", "bob"))

	// c1 сообщает об уходе боба в offline
	r.SetOffline("c1", "c2")

	p, _ := reg.FindByConnection("c2")
	if p.Status != domain.StatusOffline {
		t.Fatalf("target status not mutated: %+v", p)
	}

	sends := tr.groupSendsOf(event.TypeUserOffline)
	if len(sends) != 1 || sends[0].roomID != "r1" || sends[0].except != "c1" {
		t.Fatalf("user-offline sends: %+v", sends)
	}
	var sc event.StatusChange
	_ = event.Decode(sends[0].msg, &sc)
	if sc.ConnectionID != "c2" {
		t.Fatalf("payload must name the target: %+v", sc)
	}

	r.SetOnline("c1", "c2")
	p, _ = reg.FindByConnection("c2")
	if p.Status != domain.StatusOnline {
		t.Fatalf("target not back online: %+v", p)
	}
}

func TestFileUpdatedTracksCurrentFile(t *testing.T) {
	r, reg, tr := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))

	msg := event.Message{Type: event.TypeFileUpdated, Payload: []byte(`{"fileId":"f1","content":"x"}`)}
	r.FileUpdated("c1", "f1", msg)

	p, _ := reg.FindByConnection("c1")
	if p.CurrentFile == nil || *p.CurrentFile != "f1" {
		t.Fatalf("current file not tracked: %+v", p)
	}

	sends := tr.groupSendsOf(event.TypeFileUpdated)
	if len(sends) != 1 || string(sends[0].msg.Payload) != `{"fileId":"f1","content":"x"}` {
		t.Fatalf("payload must pass through verbatim: %+v", sends)
	}
}

func TestFileDeletedClearsCurrentFile(t *testing.T) {
	r, reg, _ := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))
	r.FileUpdated("c1", "f1", event.Message{Type: event.TypeFileUpdated, Payload: []byte(`{"fileId":"f1"}`)})

	r.FileDeleted("c1", "f1", event.Message{Type: event.TypeFileDeleted, Payload: []byte(`{"fileId":"f1"}`)})

	p, _ := reg.FindByConnection("c1")
	if p.CurrentFile != nil {
		t.Fatalf("deleting the open file must clear currentFile: %+v", p)
	}
}

func TestRequestDrawingCarriesSenderID(t *testing.T) {
	r, reg, tr := newRouter(t)
	_ = reg.Insert(domain.NewParticipant("c1", "r1", "alice"))

	r.RequestDrawing("c1")

	sends := tr.groupSendsOf(event.TypeRequestDrawing)
	if len(sends) != 1 {
		t.Fatalf("request-drawing sends: %+v", sends)
	}
	var rd event.RequestDrawing
	_ = event.Decode(sends[0].msg, &rd)
	if rd.ConnectionID != "c1" {
		t.Fatalf("payload must carry the requester id: %+v", rd)
	}
}
