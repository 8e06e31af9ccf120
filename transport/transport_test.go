package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wayfire-ipc/codec"
	"wayfire-ipc/message"
	"wayfire-ipc/protocol"
)

// remote plays the compositor side of a net.Pipe.
type remote struct {
	t    *testing.T
	conn net.Conn
}

func newPair(t *testing.T, opts ...Option) (*Transport, *remote) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return New(client, opts...), &remote{t: t, conn: server}
}

func (r *remote) expect() map[string]any {
	body, err := protocol.ReadFrame(r.conn)
	if err != nil {
		r.t.Errorf("remote: read request: %v", err)
		return nil
	}
	doc, err := message.ParseDocument(body)
	if err != nil {
		r.t.Errorf("remote: parse request: %v", err)
		return nil
	}
	obj, _ := doc.Object()
	return obj
}

func (r *remote) send(raw string) {
	if err := protocol.WriteFrame(r.conn, []byte(raw)); err != nil {
		r.t.Errorf("remote: write %s: %v", raw, err)
	}
}

func TestSendQueuesInterleavedEvents(t *testing.T) {
	tr, rem := newPair(t)
	ctx := context.Background()

	go func() {
		req := rem.expect()
		if req["method"] != "window-rules/get-focused-view" {
			t.Errorf("unexpected method %v", req["method"])
		}
		rem.send(`{"event":"view-mapped","view":{"id":7}}`)
		rem.send(`{"event":"view-focused","view":{"id":42}}`)
		rem.send(`{"info":{"id":42,"role":"toplevel","title":"foot"}}`)
	}()

	resp, err := tr.Send(ctx, message.NewRequest("window-rules/get-focused-view", nil))
	require.NoError(t, err)

	info, err := resp.Field("info")
	require.NoError(t, err)
	id, ok := info.Int("id")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	require.Equal(t, 2, tr.Pending())

	first, err := tr.ReadNextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "view-mapped", first.EventName())

	second, err := tr.ReadNextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "view-focused", second.EventName())

	assert.Equal(t, 0, tr.Pending())
}

func TestSendWithoutEventsLeavesQueueEmpty(t *testing.T) {
	tr, rem := newPair(t)
	ctx := context.Background()

	go func() {
		rem.expect()
		rem.send(`{"result":"ok"}`)
		rem.send(`{"event":"view-unmapped"}`)
	}()

	resp, err := tr.Send(ctx, message.NewRequest("expo/toggle", nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text("result"))
	assert.Equal(t, 0, tr.Pending())

	ev, err := tr.ReadNextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "view-unmapped", ev.EventName())
}

// With an empty queue ReadNextEvent hands back whatever frame comes next.
func TestReadNextEventDoesNotFilter(t *testing.T) {
	tr, rem := newPair(t)

	go rem.send(`{"result":"ok"}`)

	doc, err := tr.ReadNextEvent(context.Background())
	require.NoError(t, err)
	assert.False(t, doc.IsEvent())
	assert.Equal(t, "ok", doc.Text("result"))
}

func TestQueuedEventsSurviveSeveralSends(t *testing.T) {
	tr, rem := newPair(t)
	ctx := context.Background()

	go func() {
		rem.expect()
		rem.send(`{"event":"a"}`)
		rem.send(`{"result":"ok"}`)
		rem.expect()
		rem.send(`{"event":"b"}`)
		rem.send(`{"event":"c"}`)
		rem.send(`{"result":"ok"}`)
	}()

	_, err := tr.Send(ctx, message.NewRequest("scale/toggle", nil))
	require.NoError(t, err)
	_, err = tr.Send(ctx, message.NewRequest("scale/toggle", nil))
	require.NoError(t, err)

	var names []string
	for tr.Pending() > 0 {
		ev, err := tr.ReadNextEvent(ctx)
		require.NoError(t, err)
		names = append(names, ev.EventName())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestErrorDocumentIsReturnedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tr, rem := newPair(t, WithLogger(zap.New(core)))

	go func() {
		rem.expect()
		rem.send(`{"error":"No such method found!"}`)
	}()

	resp, err := tr.Send(context.Background(), message.NewRequest("cube/activate", nil))
	require.NoError(t, err)
	assert.True(t, resp.IsError())
	assert.Equal(t, "No such method found!", resp.ErrorMessage())

	entries := logs.FilterMessage("compositor returned an error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "No such method found!", entries[0].ContextMap()["error"])
	assert.NoError(t, tr.Err())
}

func TestRequestWireFormat(t *testing.T) {
	tr, rem := newPair(t)

	got := make(chan []byte, 1)
	go func() {
		body, err := protocol.ReadFrame(rem.conn)
		if err != nil {
			t.Errorf("remote read: %v", err)
		}
		got <- body
		rem.send(`{}`)
	}()

	_, err := tr.Send(context.Background(), message.NewRequest("window-rules/get-focused-view", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"window-rules/get-focused-view","data":null}`, string(<-got))
}

func TestPartialFrameWaitsForRemainder(t *testing.T) {
	tr, rem := newPair(t)
	payload := []byte(`{"pos":{"x":10.5,"y":20}}`)

	go func() {
		rem.expect()
		var header [4]byte
		binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
		rem.conn.Write(header[:])
		rem.conn.Write(payload[:6])
		time.Sleep(30 * time.Millisecond)
		rem.conn.Write(payload[6:])
	}()

	resp, err := tr.Send(context.Background(), message.NewRequest("window-rules/get_cursor_position", nil))
	require.NoError(t, err)
	pos, err := resp.Field("pos")
	require.NoError(t, err)
	x, _ := pos.Float("x")
	assert.Equal(t, 10.5, x)
}

func TestDecodeErrorKeepsTransportUsable(t *testing.T) {
	tr, rem := newPair(t)
	ctx := context.Background()

	go func() {
		rem.send(`{"info":`)
		rem.send(`{"event":"output-added"}`)
	}()

	_, err := tr.ReadMessage(ctx)
	require.ErrorIs(t, err, message.ErrDecode)
	assert.NoError(t, tr.Err())

	doc, err := tr.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "output-added", doc.EventName())
}

func TestSendFailureKeepsQueuedEvents(t *testing.T) {
	tr, rem := newPair(t)
	ctx := context.Background()

	go func() {
		rem.expect()
		rem.send(`{"event":"view-mapped"}`)
		rem.conn.Close()
	}()

	_, err := tr.Send(ctx, message.NewRequest("window-rules/list-views", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.EOF), "got %v", err)
	assert.Equal(t, 1, tr.Pending())

	// The connection is gone but the queued event is still deliverable.
	ev, err := tr.ReadNextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "view-mapped", ev.EventName())

	_, err = tr.Send(ctx, message.NewRequest("window-rules/list-views", nil))
	assert.ErrorIs(t, err, ErrBroken)
}

func TestWriteFailureBreaksTransport(t *testing.T) {
	tr, rem := newPair(t)
	rem.conn.Close()

	err := tr.Write(context.Background(), message.NewRequest("expo/toggle", nil))
	require.Error(t, err)
	assert.ErrorIs(t, tr.Err(), ErrBroken)
	assert.ErrorIs(t, tr.Write(context.Background(), message.NewRequest("expo/toggle", nil)), ErrBroken)
}

func TestEmptyMethodIsRejectedBeforeWriting(t *testing.T) {
	tr, _ := newPair(t)

	err := tr.Write(context.Background(), message.NewRequest("", nil))
	assert.ErrorIs(t, err, message.ErrEmptyMethod)
	assert.NoError(t, tr.Err())
}

func TestCancelledReadBreaksTransport(t *testing.T) {
	tr, rem := newPair(t)

	go rem.expect()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := tr.Send(ctx, message.NewRequest("window-rules/list-views", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, tr.Err(), ErrBroken)
}

// cancelOnEvent ends the call's context right after an event is decoded,
// i.e. between two frames.
type cancelOnEvent struct {
	codec.Codec
	cancel context.CancelFunc
}

func (c cancelOnEvent) Decode(data []byte, v any) error {
	err := c.Codec.Decode(data, v)
	if doc, ok := v.(*message.Document); ok && err == nil && doc.IsEvent() {
		c.cancel()
	}
	return err
}

func TestCancelBetweenFramesBreaksTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr, rem := newPair(t, WithCodec(cancelOnEvent{Codec: codec.Default(), cancel: cancel}))

	go func() {
		if rem.expect() == nil {
			return
		}
		rem.send(`{"event":"view-mapped"}`)
		// Never read once the transport gives up; the pipe closes at cleanup.
		_ = protocol.WriteFrame(rem.conn, []byte(`{"answer-to":"first"}`))
	}()

	_, err := tr.Send(ctx, message.NewRequest("window-rules/list-views", nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, tr.Err(), ErrBroken)
	assert.Equal(t, 1, tr.Pending())

	_, err = tr.Send(context.Background(), message.NewRequest("window-rules/list-outputs", nil))
	assert.ErrorIs(t, err, ErrBroken)

	ev, err := tr.ReadNextEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "view-mapped", ev.EventName())
}

func TestWatcherFiredAfterWholeFrameKeepsTransport(t *testing.T) {
	tr, rem := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := tr.watch(ctx)
	require.NoError(t, tr.unwatch(ctx, w, nil))
	require.NoError(t, tr.Err())

	// The deadline set by the watcher must be gone again.
	go rem.send(`{"event":"view-focused"}`)
	doc, err := tr.ReadMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "view-focused", doc.EventName())

	w = tr.watch(ctx)
	err = tr.unwatch(ctx, w, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, tr.Err(), ErrBroken)
}

func TestAlreadyCancelledContextKeepsTransport(t *testing.T) {
	tr, _ := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Send(ctx, message.NewRequest("expo/toggle", nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, tr.Err())
}

func TestFramingRoundTrip(t *testing.T) {
	docs := []string{
		`{}`,
		`{"event":"view-geometry-changed","view":{"id":1,"geometry":{"x":0,"y":0,"width":800,"height":600}}}`,
		`[{"id":1,"name":"DP-1"},{"id":2,"name":"HDMI-A-1"}]`,
		`{"layout":{"vertical-split":[{"view-id":3,"weight":1.5},{"horizontal-split":[]}]}}`,
		`{"s":"ünïcødé","n":null,"b":false,"big":18446744073709551615}`,
	}
	for _, raw := range docs {
		tr, rem := newPair(t)
		want, err := message.ParseDocument([]byte(raw))
		require.NoError(t, err)

		go rem.send(raw)

		got, err := tr.ReadMessage(context.Background())
		require.NoError(t, err, raw)
		assert.Equal(t, want.Value(), got.Value(), raw)
	}
}

func TestDial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		protocol.ReadFrame(conn)
		protocol.WriteFrame(conn, []byte(`{"api-version":20240112}`))
	}()

	tr, err := Dial(context.Background(), path, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer tr.Close()

	resp, err := tr.Send(context.Background(), message.NewRequest("wayfire/configuration", nil))
	require.NoError(t, err)
	v, _ := resp.Int("api-version")
	assert.Equal(t, int64(20240112), v)
}

func TestDialMissingSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.sock")

	_, err := Dial(context.Background(), path)
	require.Error(t, err)

	var cerr *ConnectError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, path, cerr.Path)
}
