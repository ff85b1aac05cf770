package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/manzanit0/skydash/pkg/dashboard"
	"github.com/manzanit0/skydash/pkg/watch"
)

type fakeDashboard struct {
	watch.Hub

	mu        sync.Mutex
	view      dashboard.View
	invokeErr error
	invoked   []dashboard.ActionKind
}

func (f *fakeDashboard) View() dashboard.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakeDashboard) Invoke(k dashboard.ActionKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoked = append(f.invoked, k)
	return f.invokeErr
}

var fetchError = dashboard.View{
	Kind:    dashboard.KindFetchError,
	Title:   dashboard.TitleFetchError,
	Message: dashboard.MsgFetchError,
	Variant: dashboard.VariantDestructive,
	Action:  &dashboard.Action{Kind: dashboard.ActionRetry, Label: dashboard.LabelRetry},
}

func TestExecute(t *testing.T) {
	testCases := []struct {
		desc      string
		view      dashboard.View
		invokeErr error
		cmd       string
		want      []dashboard.ActionKind
		wantErr   string
	}{
		{desc: "enable location", cmd: "l", want: []dashboard.ActionKind{dashboard.ActionEnableLocation}},
		{desc: "r retries on a fetch error", view: fetchError, cmd: "r", want: []dashboard.ActionKind{dashboard.ActionRetry}},
		{desc: "r refreshes otherwise", view: dashboard.View{Kind: dashboard.KindReady}, cmd: "r", want: []dashboard.ActionKind{dashboard.ActionRefresh}},
		{desc: "empty line", cmd: ""},
		{desc: "unknown", cmd: "x", wantErr: "unknown command"},
		{desc: "disabled", view: fetchError, invokeErr: dashboard.ErrActionDisabled, cmd: "r", want: []dashboard.ActionKind{dashboard.ActionRetry}, wantErr: "still fetching"},
		{desc: "unavailable", invokeErr: dashboard.ErrActionUnavailable, cmd: "l", want: []dashboard.ActionKind{dashboard.ActionEnableLocation}, wantErr: "not available"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			d := &fakeDashboard{view: tC.view, invokeErr: tC.invokeErr}

			err := execute(d, tC.cmd)
			if tC.wantErr == "" && err != nil {
				t.Errorf("unexpected error: %s", err)
			}

			if tC.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tC.wantErr)) {
				t.Errorf("got %v, want error containing %q", err, tC.wantErr)
			}

			if len(d.invoked) != len(tC.want) {
				t.Fatalf("got %v, want %v", d.invoked, tC.want)
			}
			for i := range tC.want {
				if d.invoked[i] != tC.want[i] {
					t.Errorf("got %v, want %v", d.invoked, tC.want)
				}
			}
		})
	}
}

func TestLoop(t *testing.T) {
	d := &fakeDashboard{view: dashboard.View{Kind: dashboard.KindLoading}}
	commands := make(chan string)

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		loop(context.Background(), d, commands, &buf)
		close(done)
	}()

	commands <- "l"
	commands <- "q"

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on q")
	}

	if !strings.Contains(buf.String(), "Loading weather...") {
		t.Errorf("expected the loading view to be drawn, got %q", buf.String())
	}

	if len(d.invoked) != 1 || d.invoked[0] != dashboard.ActionEnableLocation {
		t.Errorf("got %v, want enable-location", d.invoked)
	}
}
