// Package browsertest provides a scriptable in-memory browser.Driver for
// tests that must not launch a real browser.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"attendance-backend/lib/browser"
)

// Page is the scripted state of a fake page. Waits never block: a wait
// on something that is not visible fails immediately with
// context.DeadlineExceeded, as a real wait would once its timeout elapses.
type Page struct {
	mutex sync.Mutex

	CurrentURL string
	HTMLSource string
	// Visible selectors, a visible selector also exists.
	Visible map[string]bool
	// Present selectors that exist but are hidden.
	Present map[string]bool
	// Texts is what InnerText returns per selector.
	Texts map[string]string
	// Errors makes an operation fail, keys are "navigate", "evaluate",
	// "url", "html", or "<op>:<selector>" where op is one of wait, click,
	// fill or text.
	Errors map[string]error
	// PanicOn makes the operation with the given key (see Errors) panic.
	PanicOn string

	OnNavigate func(p *Page, url string)
	OnClick    map[string]func(p *Page)
	// OnInnerText runs before InnerText reads Texts.
	OnInnerText func(p *Page, selector string)
	// OnEvaluate handles Evaluate, its result is json round-tripped into
	// the caller's out value.
	OnEvaluate func(p *Page, script string) (any, error)

	Filled    map[string]string
	Clicks    []string
	Navigated []string
	Evaluated []string
}

func NewPage() *Page {
	return &Page{
		CurrentURL: "about:blank",
		Visible:    map[string]bool{},
		Present:    map[string]bool{},
		Texts:      map[string]string{},
		Errors:     map[string]error{},
		OnClick:    map[string]func(p *Page){},
		Filled:     map[string]string{},
	}
}

// Show marks selectors visible, it is meant for use inside hooks where the
// page lock is already held.
func (p *Page) Show(selectors ...string) {
	for _, s := range selectors {
		p.Visible[s] = true
	}
}

func (p *Page) Hide(selectors ...string) {
	for _, s := range selectors {
		delete(p.Visible, s)
		p.Present[s] = true
	}
}

// Update runs fn with the page locked, for changing the page from outside
// a hook while a session may be using it.
func (p *Page) Update(fn func(p *Page)) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	fn(p)
}

func (p *Page) fail(key string) error {
	if p.PanicOn == key {
		panic(fmt.Sprintf("browsertest: panic on %s", key))
	}
	return p.Errors[key]
}

func (p *Page) FilledValue(selector string) string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.Filled[selector]
}

func (p *Page) ClickedSelectors() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.Clicks...)
}

func (p *Page) EvaluatedScripts() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.Evaluated...)
}

type Driver struct {
	// NewPage builds the page for every acquired session, a blank page is
	// used when nil.
	NewPage    func() *Page
	AcquireErr error

	mutex    sync.Mutex
	acquired int
	closed   int
	sessions []*Session
}

func (d *Driver) Acquire(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.AcquireErr != nil {
		return nil, d.AcquireErr
	}

	page := NewPage()
	if d.NewPage != nil {
		page = d.NewPage()
	}
	session := &Session{Page: page, driver: d}
	d.acquired++
	d.sessions = append(d.sessions, session)
	return session, nil
}

func (d *Driver) Acquired() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.acquired
}

// Closed counts Close calls across every session of the driver.
func (d *Driver) Closed() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.closed
}

func (d *Driver) Sessions() []*Session {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]*Session(nil), d.sessions...)
}

type Session struct {
	Page   *Page
	driver *Driver
	closes int
}

func (s *Session) Closes() int {
	s.driver.mutex.Lock()
	defer s.driver.mutex.Unlock()
	return s.closes
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.Navigated = append(p.Navigated, url)
	if err := p.fail("navigate"); err != nil {
		return err
	}
	p.CurrentURL = url
	if p.OnNavigate != nil {
		p.OnNavigate(p, url)
	}
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	_, err := s.WaitAnyVisible(ctx, selector)
	return err
}

func (s *Session) WaitAnyVisible(ctx context.Context, selectors ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, sel := range selectors {
		if err := p.fail("wait:" + sel); err != nil {
			return "", err
		}
	}
	for _, sel := range selectors {
		if p.Visible[sel] {
			return sel, nil
		}
	}
	return "", fmt.Errorf("wait for %v: %w", selectors, context.DeadlineExceeded)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.fail("click:" + selector); err != nil {
		return err
	}
	if !p.Visible[selector] {
		return fmt.Errorf("click %s: %w", selector, context.DeadlineExceeded)
	}
	p.Clicks = append(p.Clicks, selector)
	if hook := p.OnClick[selector]; hook != nil {
		hook(p)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.fail("fill:" + selector); err != nil {
		return err
	}
	if !p.Visible[selector] {
		return fmt.Errorf("fill %s: %w", selector, context.DeadlineExceeded)
	}
	p.Filled[selector] = value
	return nil
}

func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.Evaluated = append(p.Evaluated, script)
	if err := p.fail("evaluate"); err != nil {
		return err
	}
	if p.OnEvaluate == nil {
		return nil
	}
	value, err := p.OnEvaluate(p, script)
	if err != nil || out == nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.Visible[selector] || p.Present[selector], nil
}

func (s *Session) Visible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.Visible[selector], nil
}

func (s *Session) InnerText(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.fail("text:" + selector); err != nil {
		return "", err
	}
	if p.OnInnerText != nil {
		p.OnInnerText(p, selector)
	}
	return p.Texts[selector], nil
}

func (s *Session) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.fail("url"); err != nil {
		return "", err
	}
	return p.CurrentURL, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := s.Page
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.fail("html"); err != nil {
		return "", err
	}
	return p.HTMLSource, nil
}

func (s *Session) Close() error {
	s.driver.mutex.Lock()
	defer s.driver.mutex.Unlock()
	s.closes++
	s.driver.closed++
	return nil
}
