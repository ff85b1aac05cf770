package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/manzanit0/skydash/pkg/location"
	"github.com/manzanit0/skydash/pkg/logger"
)

var (
	london = location.Coordinates{Latitude: 51.5074, Longitude: -0.1278}
	paris  = location.Coordinates{Latitude: 48.8566, Longitude: 2.3522}
)

type call struct {
	ctx   context.Context
	key   location.Coordinates
	reply chan reply
}

type reply struct {
	data *string
	err  error
}

// scripted returns a fetcher that parks every call until the test answers it.
func scripted() (Fetcher[string], chan call) {
	calls := make(chan call, 10)
	return func(ctx context.Context, c location.Coordinates) (*string, error) {
		r := make(chan reply, 1)
		calls <- call{ctx: ctx, key: c, reply: r}

		select {
		case rep := <-r:
			return rep.data, rep.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, calls
}

func nextCall(t *testing.T, calls chan call) call {
	t.Helper()
	select {
	case c := <-calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("fetcher was never called")
		return call{}
	}
}

func noCall(t *testing.T, calls chan call) {
	t.Helper()
	select {
	case c := <-calls:
		t.Fatalf("unexpected fetch for %v", c.key)
	case <-time.After(20 * time.Millisecond):
	}
}

func waitIdle[T any](t *testing.T, q *Query[T]) State[T] {
	t.Helper()

	ch, unsubscribe := q.Subscribe()
	defer unsubscribe()

	deadline := time.After(2 * time.Second)
	for {
		if s := q.State(); !s.IsFetching {
			return s
		}

		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("query never settled: %+v", q.State())
		}
	}
}

func ptr(s string) *string { return &s }

var errComparer = cmp.Comparer(func(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
})

func TestQueryDisabledByDefault(t *testing.T) {
	fetch, calls := scripted()
	q := New("test", fetch, logger.Discard())
	defer q.Close()

	q.Refetch()
	q.SetKey(nil)
	noCall(t, calls)

	if diff := cmp.Diff(State[string]{}, q.State(), errComparer); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestQuerySetKey(t *testing.T) {
	fetch, calls := scripted()
	q := New("test", fetch, logger.Discard())
	defer q.Close()

	q.SetKey(&london)
	if s := q.State(); !s.IsFetching || s.Data != nil {
		t.Fatalf("expected fetching without data, got %+v", s)
	}

	c := nextCall(t, calls)
	if c.key != london {
		t.Errorf("got key %v, want %v", c.key, london)
	}
	c.reply <- reply{data: ptr("sunny")}

	got := waitIdle(t, q)
	want := State[string]{Data: ptr("sunny"), Key: &london}
	if diff := cmp.Diff(want, got, errComparer); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	same := london
	q.SetKey(&same)
	noCall(t, calls)

	q.SetKey(&paris)
	if s := q.State(); s.Data != nil || !s.IsFetching || *s.Key != paris {
		t.Errorf("new key should drop data and fetch, got %+v", s)
	}
	nextCall(t, calls).reply <- reply{data: ptr("cloudy")}

	if got := waitIdle(t, q); *got.Data != "cloudy" {
		t.Errorf("got %q, want cloudy", *got.Data)
	}

	q.SetKey(nil)
	if diff := cmp.Diff(State[string]{}, q.State(), errComparer); diff != "" {
		t.Errorf("disabled state mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryRefetch(t *testing.T) {
	boom := errors.New("boom")

	fetch, calls := scripted()
	q := New("test", fetch, logger.Discard())
	defer q.Close()

	q.SetKey(&london)
	nextCall(t, calls).reply <- reply{data: ptr("v1")}
	waitIdle(t, q)

	testCases := []struct {
		desc         string
		reply        reply
		wantWhileRun State[string]
		want         State[string]
	}{
		{
			desc:         "failure keeps data",
			reply:        reply{err: boom},
			wantWhileRun: State[string]{Data: ptr("v1"), Key: &london, IsFetching: true},
			want:         State[string]{Data: ptr("v1"), Err: boom, Key: &london},
		},
		{
			desc:         "error stays visible while refetching",
			reply:        reply{data: ptr("v2")},
			wantWhileRun: State[string]{Data: ptr("v1"), Err: boom, Key: &london, IsFetching: true},
			want:         State[string]{Data: ptr("v2"), Key: &london},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			q.Refetch()
			c := nextCall(t, calls)

			if diff := cmp.Diff(tC.wantWhileRun, q.State(), errComparer); diff != "" {
				t.Errorf("in-flight state mismatch (-want +got):\n%s", diff)
			}

			c.reply <- tC.reply
			if diff := cmp.Diff(tC.want, waitIdle(t, q), errComparer); diff != "" {
				t.Errorf("settled state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuerySupersededFetchIsCancelled(t *testing.T) {
	fetch, calls := scripted()
	q := New("test", fetch, logger.Discard())
	defer q.Close()

	q.SetKey(&london)
	first := nextCall(t, calls)

	q.SetKey(&paris)
	second := nextCall(t, calls)

	select {
	case <-first.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}

	second.reply <- reply{data: ptr("paris")}
	got := waitIdle(t, q)

	if got.Data == nil || *got.Data != "paris" || *got.Key != paris {
		t.Errorf("got %+v, want paris", got)
	}
}

func TestQueryTraceIDs(t *testing.T) {
	fetch, calls := scripted()
	q := New("test", fetch, logger.Discard())
	defer q.Close()

	q.SetKey(&london)
	first := nextCall(t, calls)
	first.reply <- reply{data: ptr("a")}
	waitIdle(t, q)

	q.Refetch()
	second := nextCall(t, calls)
	second.reply <- reply{data: ptr("b")}
	waitIdle(t, q)

	a, b := logger.TraceID(first.ctx), logger.TraceID(second.ctx)
	if a == "" || b == "" {
		t.Fatalf("expected trace ids, got %q and %q", a, b)
	}

	if a == b {
		t.Errorf("expected a fresh trace id per fetch, got %q twice", a)
	}
}

func TestQueryClose(t *testing.T) {
	fetch, calls := scripted()
	q := New("test", fetch, logger.Discard())

	q.SetKey(&london)
	nextCall(t, calls)

	q.Close()

	want := State[string]{Key: &london, IsFetching: true}
	if diff := cmp.Diff(want, q.State(), errComparer, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("state after close mismatch (-want +got):\n%s", diff)
	}

	q.Refetch()
	q.SetKey(&paris)
	noCall(t, calls)
}
