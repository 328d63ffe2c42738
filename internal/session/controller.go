// Package session implements the paste session controller. It owns the single
// active document, mirrors it onto the editor surface and the address, and
// turns navigation events and user actions into document transitions.
//
// All controller state is owned by one goroutine. Public methods post
// requests to it; remote calls run on worker goroutines and report back
// tagged with the document they were issued for, so completions for a
// replaced document are dropped.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/document"
	"github.com/starford/pastebin/internal/models"
	"github.com/starford/pastebin/internal/navigation"
)

type actionKind int

const (
	actSave actionKind = iota
	actNew
	actDuplicate
	actViewRaw
	actCopyLink
	actNavigate
	actState
)

type action struct {
	kind  actionKind
	path  string
	reply chan State
}

type opKind int

const (
	opLoad opKind = iota
	opSave
)

func (k opKind) String() string {
	if k == opSave {
		return "save"
	}
	return "load"
}

// operation is the one remote call in flight for the active document.
type operation struct {
	doc    *document.Document
	kind   opKind
	key    string
	cancel context.CancelFunc
}

type completion struct {
	doc  *document.Document
	kind opKind
	key  string
	res  document.Result
	err  error
}

// State is a point-in-time view of the controller.
type State struct {
	Key     string
	Locked  bool
	Pending bool
	Ready   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder records every paste the session saves or loads.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithNavigation subscribes the controller to back/forward events from src
// once it is ready.
func WithNavigation(src PathSource) Option {
	return func(c *Controller) {
		c.source = src
	}
}

// Controller mediates between navigation, the editor and the active document.
type Controller struct {
	remote   document.Remote
	links    Links
	view     View
	browser  Browser
	source   PathSource
	recorder Recorder
	logger   *slog.Logger

	actions chan action
	done    chan completion
	readyCh chan struct{}
	stopCh  chan struct{}
	stopped chan struct{}

	started   atomic.Bool
	closeOnce sync.Once

	// Owned by the loop goroutine.
	ctx    context.Context
	active *document.Document
	op     *operation
	ready  bool
	nav    chan string
}

// New creates a controller. Nothing happens until Start.
func New(remote document.Remote, links Links, view View, browser Browser, opts ...Option) *Controller {
	c := &Controller{
		remote:  remote,
		links:   links,
		view:    view,
		browser: browser,
		logger:  slog.Default(),
		actions: make(chan action, 64),
		done:    make(chan completion, 16),
		readyCh: make(chan struct{}),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the controller loop. It starts a fresh draft, resolves
// initialPath as if navigated to, then subscribes to navigation events and
// closes Ready. The loop stops when ctx is cancelled or Close is called.
func (c *Controller) Start(ctx context.Context, initialPath string) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("session: controller already started")
	}
	go c.run(ctx, initialPath)
	return nil
}

// Ready is closed once the initial path is resolved and navigation events
// are being received.
func (c *Controller) Ready() <-chan struct{} {
	return c.readyCh
}

// Done is closed when the loop has stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.stopped
}

// Close stops the loop, cancels any in-flight request and unsubscribes from
// navigation. It is safe to call more than once, and before Start.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.stopCh) })
	if c.started.Load() {
		<-c.stopped
	}
}

// Save locks the current editor text as a new paste.
func (c *Controller) Save() { c.post(action{kind: actSave}) }

// NewPaste discards the active document for a fresh draft.
func (c *Controller) NewPaste() { c.post(action{kind: actNew}) }

// Duplicate forks a locked paste into an editable draft.
func (c *Controller) Duplicate() { c.post(action{kind: actDuplicate}) }

// ViewRaw redirects to the plain-text view of the active paste.
func (c *Controller) ViewRaw() { c.post(action{kind: actViewRaw}) }

// CopyLink copies the share URL of the active paste.
func (c *Controller) CopyLink() { c.post(action{kind: actCopyLink}) }

// Navigate reconciles the controller with path, as a navigation event would.
func (c *Controller) Navigate(path string) { c.post(action{kind: actNavigate, path: path}) }

// State returns the controller state after all previously posted actions
// have been handled. A stopped controller returns the zero State.
func (c *Controller) State() State {
	reply := make(chan State, 1)
	if !c.started.Load() {
		return State{}
	}
	select {
	case c.actions <- action{kind: actState, reply: reply}:
	case <-c.stopped:
		return State{}
	}
	select {
	case s := <-reply:
		return s
	case <-c.stopped:
		return State{}
	}
}

func (c *Controller) post(a action) {
	if !c.started.Load() {
		c.logger.Debug("session: action ignored before start", slog.Int("action", int(a.kind)))
		return
	}
	select {
	case c.actions <- a:
	case <-c.stopped:
	}
}

func (c *Controller) run(ctx context.Context, initialPath string) {
	defer close(c.stopped)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.ctx = loopCtx

	c.startFresh(true)
	if key := navigation.KeyOf(initialPath); key != "" {
		c.loadAndDisplay(key)
	}

	if c.source != nil {
		c.nav = c.source.Subscribe()
		defer c.source.Unsubscribe(c.nav)
	}
	c.ready = true
	close(c.readyCh)
	c.logger.Debug("session: ready", slog.String("path", navigation.Clean(initialPath)))

	defer func() {
		if c.op != nil {
			c.op.cancel()
			c.op = nil
		}
	}()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-c.stopCh:
			return
		case a := <-c.actions:
			c.handle(a)
		case p, ok := <-c.nav:
			if !ok {
				c.nav = nil
				continue
			}
			c.navigationSync(p)
		case cmp := <-c.done:
			c.complete(cmp)
		}
	}
}

func (c *Controller) handle(a action) {
	switch a.kind {
	case actSave:
		c.lockCurrent()
	case actNew:
		_, hasKey := c.active.Key()
		c.startFresh(!hasKey)
	case actDuplicate:
		c.duplicate()
	case actViewRaw:
		c.viewRaw()
	case actCopyLink:
		c.copyLink()
	case actNavigate:
		c.navigationSync(a.path)
	case actState:
		key, _ := c.active.Key()
		a.reply <- State{
			Key:     key,
			Locked:  c.active.Locked(),
			Pending: c.op != nil,
			Ready:   c.ready,
		}
	}
}

// replace makes doc the active document, cancelling the superseded
// document's request.
func (c *Controller) replace(doc *document.Document) {
	if c.op != nil {
		c.logger.Debug("session: superseding in-flight request",
			slog.String("op", c.op.kind.String()),
			slog.String("key", c.op.key))
		c.op.cancel()
		c.op = nil
	}
	c.active = doc
}

func (c *Controller) startFresh(suppressHistoryPush bool) {
	c.replace(document.New(c.remote))
	c.view.SetText("")
	c.view.SetReadOnly(false)
	c.view.SetLabel(LabelNew)
	if !suppressHistoryPush {
		c.browser.PushPath(navigation.Root)
	}
}

func (c *Controller) loadAndDisplay(key string) {
	doc := document.New(c.remote)
	c.replace(doc)
	c.view.SetText("")
	c.view.SetReadOnly(true)
	c.view.SetLabel(labelLoading(key))
	c.launch(doc, opLoad, key, func(ctx context.Context) (document.Result, error) {
		return doc.Load(ctx, key)
	})
}

func (c *Controller) duplicate() {
	snap, locked := c.active.Snapshot()
	if !locked {
		return
	}
	c.startFresh(false)
	c.view.SetText(snap.Content)
}

func (c *Controller) lockCurrent() {
	text := c.view.Text()
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("session: blank content not saved")
		return
	}
	if c.op != nil {
		c.logger.Debug("session: save ignored while request in flight", slog.String("op", c.op.kind.String()))
		return
	}
	if c.active.Locked() {
		key, _ := c.active.Key()
		c.logger.Warn("session: save on locked document", slog.String("key", key),
			slog.String("error", apperr.ErrAlreadyLocked.Error()))
		return
	}

	doc := c.active
	c.view.SetReadOnly(true)
	c.view.SetLabel(LabelSaving)
	c.launch(doc, opSave, "", func(ctx context.Context) (document.Result, error) {
		return doc.Save(ctx, text)
	})
}

func (c *Controller) navigationSync(path string) {
	if !c.ready {
		c.logger.Debug("session: navigation before ready ignored", slog.String("path", path))
		return
	}
	key := navigation.KeyOf(path)
	if key == "" {
		if !c.active.Locked() && c.op == nil {
			return
		}
		c.startFresh(true)
		return
	}

	if current, ok := c.active.Key(); ok && current == key {
		return
	}
	if c.op != nil && c.op.kind == opLoad && c.op.key == key {
		return
	}
	c.loadAndDisplay(key)
}

func (c *Controller) viewRaw() {
	key, ok := c.active.Key()
	if !ok {
		return
	}
	if err := c.browser.Redirect(c.links.RawURL(key)); err != nil {
		c.logger.Error("session: redirect failed", slog.String("key", key), slog.String("error", err.Error()))
		c.view.Notify(Notice{Level: NoticeError, Message: NoticeRedirectFail})
	}
}

func (c *Controller) copyLink() {
	key, ok := c.active.Key()
	if !ok {
		return
	}
	if err := c.browser.WriteClipboard(c.links.ShareURL(key)); err != nil {
		c.logger.Warn("session: clipboard write failed", slog.String("error", err.Error()))
		c.view.Notify(Notice{Level: NoticeError, Message: NoticeCopyFailed})
		return
	}
	c.view.Notify(Notice{Level: NoticeInfo, Message: NoticeCopied})
}

func (c *Controller) launch(doc *document.Document, kind opKind, key string, fn func(context.Context) (document.Result, error)) {
	ctx, cancel := context.WithCancel(c.ctx)
	c.op = &operation{doc: doc, kind: kind, key: key, cancel: cancel}
	go func() {
		res, err := fn(ctx)
		select {
		case c.done <- completion{doc: doc, kind: kind, key: key, res: res, err: err}:
		case <-c.stopped:
		}
	}()
}

func (c *Controller) complete(cmp completion) {
	if cmp.doc != c.active {
		c.logger.Debug("session: stale completion ignored",
			slog.String("op", cmp.kind.String()),
			slog.String("key", cmp.key))
		return
	}
	if c.op != nil && c.op.doc == cmp.doc {
		c.op.cancel()
		c.op = nil
	}

	switch cmp.kind {
	case opLoad:
		if cmp.err != nil {
			c.report(cmp.kind, cmp.err)
			c.startFresh(false)
			return
		}
		c.showLocked(cmp.res)
		c.record(cmp.res, models.ActionLoaded)

	case opSave:
		if cmp.err != nil {
			c.report(cmp.kind, cmp.err)
			c.view.SetReadOnly(false)
			c.view.SetLabel(LabelNew)
			return
		}
		c.showLocked(cmp.res)
		c.browser.PushPath(navigation.PathOf(cmp.res.Key))
		c.record(cmp.res, models.ActionSaved)
	}
}

func (c *Controller) showLocked(res document.Result) {
	c.view.SetText(res.Content)
	c.view.SetReadOnly(true)
	c.view.SetLabel(LabelFor(res.Key))
}

func (c *Controller) report(kind opKind, err error) {
	switch {
	case errors.Is(err, apperr.ErrAlreadyLocked):
		c.logger.Warn("session: contract violation", slog.String("op", kind.String()), slog.String("error", err.Error()))
	case apperr.UserFacing(err):
		c.logger.Info("session: "+kind.String()+" rejected", slog.String("error", err.Error()))
		c.view.Notify(Notice{Level: NoticeWarning, Message: apperr.Notice(err)})
	default:
		c.logger.Error("session: "+kind.String()+" failed", slog.String("error", err.Error()))
		c.view.Notify(Notice{Level: NoticeError, Message: apperr.Notice(err)})
	}
}

func (c *Controller) record(res document.Result, action string) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordPaste(c.ctx, res.Key, action, res.Content); err != nil {
		c.logger.Warn("session: record paste failed", slog.String("key", res.Key), slog.String("error", err.Error()))
	}
}
