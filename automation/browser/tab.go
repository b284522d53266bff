package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/boxker/boxk"
)

const objectGroup = "boxker"

// Tab is a chromium browser tab we drive over the devtools protocol
type Tab struct {
	t                   *gcd.ChromeTarget
	id                  int64
	frameLock           sync.RWMutex
	frameObjectID       string        // object id of the switched frame's document, "" for the top document
	isNavigatingFlag    atomic.Value  // are we currently navigating (between Page.Navigate -> page.loadEventFired)
	navigationCh        chan struct{} // for receiving navigation complete messages while isNavigating is true
	crashedCh           chan string   // the chrome tab crashed with a reason
	exitCh              chan struct{} // for when we close the tab, kill go routines
	closeOnce           sync.Once
	disconnectedHandler TabDisconnectedHandler // called with reason the chrome tab was disconnected from the debugger service
	navigationTimeout   time.Duration          // amount of time to wait before failing navigation
	logger              zerolog.Logger
}

// NewTab wraps target and subscribes to the events we need
func NewTab(ctx context.Context, target *gcd.ChromeTarget) *Tab {
	t := &Tab{
		t:                 target,
		id:                boxk.GetSessionID(),
		navigationCh:      make(chan struct{}, 1),
		crashedCh:         make(chan string),
		exitCh:            make(chan struct{}),
		navigationTimeout: 30 * time.Second,
	}
	t.logger = log.With().Int64("tab", t.id).Logger()
	t.disconnectedHandler = t.defaultDisconnectedHandler
	t.subscribeBrowserEvents(ctx)
	return t
}

// SetDisconnectedHandler so caller can trap when the debugger was disconnected/crashed.
func (t *Tab) SetDisconnectedHandler(handlerFn TabDisconnectedHandler) {
	t.disconnectedHandler = handlerFn
}

func (t *Tab) defaultDisconnectedHandler(tab *Tab, reason string) {
	t.logger.Debug().Msgf("tab %s tabID: %s", reason, tab.t.Target.Id)
}

// SetNavigationTimeout to wait for navigations before giving up, default is 30 seconds
func (t *Tab) SetNavigationTimeout(timeout time.Duration) {
	t.navigationTimeout = timeout
}

// ID of this tab
func (t *Tab) ID() int64 {
	return t.id
}

// Close the exit channel
func (t *Tab) Close() {
	t.closeOnce.Do(func() {
		close(t.exitCh)
	})
}

func (t *Tab) setIsNavigating(set bool) {
	t.isNavigatingFlag.Store(set)
}

// IsNavigating answers if we currently navigating
func (t *Tab) IsNavigating() bool {
	if flag, ok := t.isNavigatingFlag.Load().(bool); ok {
		return flag
	}
	return false
}

// Navigate to url and wait for the load event
func (t *Tab) Navigate(ctx context.Context, url string) error {
	// drain any stale load signal
	select {
	case <-t.navigationCh:
	default:
	}

	t.releaseObjects()
	t.setIsNavigating(true)
	defer t.setIsNavigating(false)

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return errors.Wrap(boxk.ErrNavigation, err.Error())
	}
	if errText != "" {
		return errors.Wrapf(boxk.ErrNavigation, "%s %s", errText, url)
	}

	if err := t.waitLoad(ctx); err != nil {
		return err
	}
	t.resetFrame()

	if failed, code := t.DidNavigationFail(); failed {
		return errors.Wrapf(boxk.ErrNavigation, "chrome error page %s for %s", code, url)
	}
	return nil
}

func (t *Tab) waitLoad(ctx context.Context) error {
	navTimer := time.NewTimer(t.navigationTimeout)
	defer navTimer.Stop()

	select {
	case <-navTimer.C:
		return errors.Wrap(boxk.ErrNavigation, ErrNavigationTimedOut.Error())
	case <-ctx.Done():
		return ctx.Err()
	case <-t.exitCh:
		return ErrTabClosing
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	case <-t.navigationCh:
	}
	return nil
}

// DidNavigationFail uses an undocumented method of determining if chromium failed to load
// a page due to DNS or connection timeouts.
func (t *Tab) DidNavigationFail() (bool, string) {
	// if loadTimeData doesn't exist, or we get a js error, this means no error occurred.
	rro, err := t.EvaluateScript(navigationFailedScript)
	if err != nil || rro == nil {
		return false, ""
	}

	switch val := rro.Value.(type) {
	case string:
		return true, val
	case float64:
		return true, fmt.Sprintf("%v", val)
	}
	return false, ""
}

// EvaluateScript in the top level context, returning the value
func (t *Tab) EvaluateScript(scriptSource string) (*gcdapi.RuntimeRemoteObject, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:    scriptSource,
		ObjectGroup:   objectGroup,
		Silent:        true,
		ReturnByValue: true,
		Timeout:       1000,
	}
	r, exp, err := t.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		return nil, newScriptErr("failed to evaluate script", exp)
	}
	return r, nil
}

// topDocument returns the object id of the top level document
func (t *Tab) topDocument() (string, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:  "document",
		ObjectGroup: objectGroup,
		Silent:      true,
	}
	r, exp, err := t.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return "", err
	}
	if exp != nil {
		return "", newScriptErr("failed to get document", exp)
	}
	if r == nil || r.ObjectId == "" {
		return "", &ElementNotFoundErr{Message: "top document"}
	}
	return r.ObjectId, nil
}

// currentDocument returns the object id of the document lookups run in
func (t *Tab) currentDocument() (string, error) {
	t.frameLock.RLock()
	frame := t.frameObjectID
	t.frameLock.RUnlock()
	if frame != "" {
		return frame, nil
	}
	return t.topDocument()
}

func (t *Tab) setFrame(objectID string) {
	t.frameLock.Lock()
	t.frameObjectID = objectID
	t.frameLock.Unlock()
}

func (t *Tab) resetFrame() {
	t.setFrame("")
}

// callFunctionOn objectID returning either the value or, if byValue is false, the remote object
func (t *Tab) callFunctionOn(objectID, function string, byValue bool, args ...interface{}) (*gcdapi.RuntimeRemoteObject, error) {
	callArgs := make([]*gcdapi.RuntimeCallArgument, len(args))
	for i, arg := range args {
		callArgs[i] = &gcdapi.RuntimeCallArgument{Value: arg}
	}
	params := &gcdapi.RuntimeCallFunctionOnParams{
		FunctionDeclaration: function,
		ObjectId:            objectID,
		Arguments:           callArgs,
		Silent:              true,
		ReturnByValue:       byValue,
		ObjectGroup:         objectGroup,
	}
	r, exp, err := t.t.Runtime.CallFunctionOnWithParams(params)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		return nil, newScriptErr("failed to call function", exp)
	}
	return r, nil
}

// callString calls function on objectID expecting a string result
func (t *Tab) callString(objectID, function string, args ...interface{}) (string, error) {
	r, err := t.callFunctionOn(objectID, function, true, args...)
	if err != nil {
		return "", err
	}
	if r == nil || r.Value == nil {
		return "", nil
	}
	s, _ := r.Value.(string)
	return s, nil
}

// FindElements in the current document, returns immediately
func (t *Tab) FindElements(ctx context.Context, loc boxk.Locator) ([]*Element, error) {
	docID, err := t.currentDocument()
	if err != nil {
		return nil, err
	}

	r, err := t.callFunctionOn(docID, findScript, true, loc.Strategy.String(), loc.Value)
	if err != nil {
		if scriptErr, ok := err.(*ScriptEvaluationErr); ok {
			return nil, errors.Wrap(boxk.ErrInvalidLocatorStrategy, scriptErr.Error())
		}
		return nil, err
	}
	count, _ := r.Value.(float64)

	eles := make([]*Element, 0, int(count))
	for i := 0; i < int(count); i++ {
		obj, err := t.callFunctionOn(docID, resultScript, false, i)
		if err != nil {
			return nil, err
		}
		if obj == nil || obj.ObjectId == "" {
			continue
		}
		eles = append(eles, newElement(t, obj.ObjectId))
	}
	return eles, nil
}

// SwitchFrame moves lookups into the document of frame
func (t *Tab) SwitchFrame(ctx context.Context, frame boxk.FrameRef, find func(boxk.Locator) ([]*Element, error)) error {
	var r *gcdapi.RuntimeRemoteObject

	if frame.Locator != nil {
		eles, err := find(*frame.Locator)
		if err != nil {
			return err
		}
		if len(eles) == 0 {
			return errors.Wrapf(boxk.ErrElementNotFound, "no frame matched %s", frame)
		}
		r, err = t.callFunctionOn(eles[0].objectID, contentDocumentScript, false)
		if err != nil {
			return err
		}
	} else {
		docID, err := t.currentDocument()
		if err != nil {
			return err
		}
		index := -1
		if frame.IsIndex() {
			index = frame.Index
		}
		r, err = t.callFunctionOn(docID, frameScript, false, frame.Name, index)
		if err != nil {
			return err
		}
	}

	if r == nil || r.ObjectId == "" {
		return errors.Wrapf(boxk.ErrElementNotFound, "frame %s missing or cross origin", frame)
	}
	t.setFrame(r.ObjectId)
	return nil
}

// Screenshot returns a png of the viewport
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	params := &gcdapi.PageCaptureScreenshotParams{
		Format:      "png",
		FromSurface: true,
	}
	data, err := t.t.Page.CaptureScreenshotWithParams(params)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(data)
}

// Maximize the window holding this tab
func (t *Tab) Maximize(ctx context.Context) error {
	windowID, _, err := t.t.Browser.GetWindowForTargetWithParams(&gcdapi.BrowserGetWindowForTargetParams{
		TargetId: t.t.Target.Id,
	})
	if err != nil {
		return errors.Wrap(err, "failed to get window")
	}
	_, err = t.t.Browser.SetWindowBoundsWithParams(&gcdapi.BrowserSetWindowBoundsParams{
		WindowId: windowID,
		Bounds:   &gcdapi.BrowserBounds{WindowState: "maximized"},
	})
	return err
}

// releaseObjects frees every remote object handed out for this tab
func (t *Tab) releaseObjects() {
	if _, err := t.t.Runtime.ReleaseObjectGroup(objectGroup); err != nil {
		t.logger.Debug().Err(err).Msg("failed to release objects")
	}
}
