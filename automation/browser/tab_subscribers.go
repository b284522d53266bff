package browser

import (
	"context"
	"encoding/json"

	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
)

func (t *Tab) subscribeBrowserEvents(ctx context.Context) {
	t.t.DOM.Enable()
	t.t.Inspector.Enable()
	t.t.Page.Enable()
	t.t.Runtime.Enable()

	t.subscribeTargetCrashed()
	t.subscribeTargetDetached()
	t.subscribeLoadEvent()
	t.subscribeDialogs()
}

func (t *Tab) subscribeTargetCrashed() {
	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		t.logger.Warn().Msg("tab crashed")
		t.disconnectedHandler(t, "crashed")
		if !t.IsNavigating() {
			return
		}
		select {
		case t.crashedCh <- "crashed":
		case <-t.exitCh:
		}
	})
}

func (t *Tab) subscribeTargetDetached() {
	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		err := json.Unmarshal(payload, header)
		reason := "detached"

		if err == nil {
			reason = header.Params.Reason
		}
		t.disconnectedHandler(t, reason)
		if !t.IsNavigating() {
			return
		}

		select {
		case t.crashedCh <- reason:
		case <-t.exitCh:
		}
	})
}

// every top level load invalidates a switched frame, Navigate also waits on it
func (t *Tab) subscribeLoadEvent() {
	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		t.resetFrame()
		if !t.IsNavigating() {
			return
		}
		select {
		case t.navigationCh <- struct{}{}:
		default:
		}
	})
}

// alerts would block every later call, dismiss them
func (t *Tab) subscribeDialogs() {
	t.t.Subscribe("Page.javascriptDialogOpening", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.PageJavascriptDialogOpeningEvent{}
		if err := json.Unmarshal(payload, header); err == nil {
			t.logger.Info().Str("type", header.Params.Type).Str("message", header.Params.Message).Msg("accepting dialog")
		}
		if _, err := t.t.Page.HandleJavaScriptDialog(true, ""); err != nil {
			t.logger.Warn().Err(err).Msg("failed to handle dialog")
		}
	})
}
