// Package session loads a page and drives the ports dispatcher over it,
// either from a JavaScript application or from a recorded scenario.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domports/config"
	"github.com/chrisuehlinger/domports/css"
	"github.com/chrisuehlinger/domports/dom"
	"github.com/chrisuehlinger/domports/html"
	"github.com/chrisuehlinger/domports/js"
	"github.com/chrisuehlinger/domports/layout"
	"github.com/chrisuehlinger/domports/network"
	"github.com/chrisuehlinger/domports/observability"
	"github.com/chrisuehlinger/domports/ports"
)

// Emitted is one emission as written to output.
type Emitted struct {
	Port    string `json:"port"`
	Payload any    `json:"payload"`
}

// Script is JavaScript source and the name it runs under.
type Script struct {
	Name string
	Code string
}

// Session owns one loaded page and its dispatcher.
type Session struct {
	ID string

	cfg        *config.Config
	logger     *zap.Logger
	client     *network.Client
	preloader  *network.Preloader
	doc        *dom.Document
	dispatcher *ports.Dispatcher
	sinks      []ports.Emitter
	// fetchedURL is where the page came from, before any base_url override.
	fetchedURL string
}

// New creates a session with no page loaded. Every emission is passed to
// sinks in order.
func New(cfg *config.Config, logger *zap.Logger, sinks ...ports.Emitter) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	s := &Session{
		ID:     id,
		cfg:    cfg,
		logger: logger.Named("session").With(zap.String("session", id)),
		sinks:  sinks,
	}

	client, err := network.NewClient(
		network.WithTimeout(cfg.Network.Timeout),
		network.WithUserAgent(cfg.Network.UserAgent),
		network.WithMaxRedirects(cfg.Network.MaxRedirects),
	)
	if err != nil {
		return nil, fmt.Errorf("create network client: %w", err)
	}
	s.client = client

	if cfg.Network.Preload {
		s.preloader = network.NewPreloader(client,
			network.WithPreloadLogger(s.logger),
			network.WithPreloadCache(network.NewCache(cfg.Network.CacheSize)),
			network.WithRateLimit(cfg.Network.RateLimit, cfg.Network.Burst),
		)
	}
	return s, nil
}

// Emit passes e to every sink.
func (s *Session) Emit(e ports.Emission) {
	for _, sink := range s.sinks {
		sink.Emit(e)
	}
}

// Document returns the loaded page, or nil.
func (s *Session) Document() *dom.Document {
	return s.doc
}

// Dispatcher returns the dispatcher for the loaded page, or nil.
func (s *Session) Dispatcher() *ports.Dispatcher {
	return s.dispatcher
}

// Load fetches page, an http(s) URL or a file path, and builds the
// dispatcher for it. A configured page.base_url replaces the URL the page
// was fetched from.
func (s *Session) Load(ctx context.Context, page string) error {
	markup, docURL, err := s.fetch(ctx, page, "")
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	s.fetchedURL = docURL
	if cookies := s.Cookies(); len(cookies) > 0 {
		s.logger.Debug("Page set cookies",
			zap.String("url", docURL),
			zap.Int("count", len(cookies)))
	}
	if s.cfg.Page.BaseURL != "" {
		docURL = s.cfg.Page.BaseURL
	}
	return s.LoadHTML(markup, docURL)
}

// Cookies returns the cookies the session's jar holds for the page it
// fetched. Local pages have none.
func (s *Session) Cookies() []*http.Cookie {
	if !isRemote(s.fetchedURL) {
		return nil
	}
	u, err := url.Parse(s.fetchedURL)
	if err != nil {
		return nil
	}
	return s.client.Cookies(u)
}

// LoadHTML builds the dispatcher over markup with the given document URL.
func (s *Session) LoadHTML(markup []byte, docURL string) error {
	doc, err := html.Parse(bytes.NewReader(markup), docURL)
	if err != nil {
		return err
	}
	doc.DefaultView().SetViewport(s.cfg.Page.ViewportWidth, s.cfg.Page.ViewportHeight)

	opts := []ports.Option{
		ports.WithEmitter(s),
		ports.WithLogger(s.logger),
	}
	if s.cfg.Page.Layout {
		opts = append(opts, ports.WithLayout(layout.NewEngine(layout.WithLogger(s.logger))))
	}
	if s.preloader != nil {
		opts = append(opts, ports.WithPreloader(s.preloader))
	}
	if s.cfg.Logger.LogPorts {
		opts = append(opts, ports.WithLogFunc(observability.PortLogger(s.logger)))
	}

	s.doc = doc
	s.dispatcher = ports.NewDispatcher(doc, opts...)
	s.logger.Info("Page loaded",
		zap.String("url", doc.URL()),
		zap.String("title", doc.Title()))
	return nil
}

// fetch reads ref, resolved against base when base is set. It returns the
// content and its URL.
func (s *Session) fetch(ctx context.Context, ref, base string) ([]byte, string, error) {
	if base != "" {
		u, err := network.ResolveReference(base, ref)
		if err != nil {
			return nil, "", err
		}
		ref = u.String()
	}

	if isRemote(ref) {
		resp, err := s.client.Get(ctx, ref, "text/html,application/javascript,*/*")
		if err != nil {
			return nil, "", err
		}
		if !resp.OK() {
			return nil, "", fmt.Errorf("GET %s: %s", ref, resp.Status)
		}
		return resp.Body, resp.URL.String(), nil
	}

	path := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", err
	}
	return data, (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// PageScripts returns the page's <script> elements as scripts, in
// document order. External sources are fetched relative to the document
// URL. Scripts with a non-JavaScript type are skipped.
func (s *Session) PageScripts(ctx context.Context) ([]Script, error) {
	if s.doc == nil {
		return nil, errors.New("no page loaded")
	}
	elements, err := css.QuerySelectorAll(s.doc.AsNode(), "script")
	if err != nil {
		return nil, err
	}

	var scripts []Script
	for i, el := range elements {
		switch strings.ToLower(strings.TrimSpace(el.GetAttribute("type"))) {
		case "", "text/javascript", "application/javascript":
		default:
			continue
		}
		src := el.GetAttribute("src")
		if src == "" {
			scripts = append(scripts, Script{
				Name: fmt.Sprintf("%s#script%d", s.doc.URL(), i),
				Code: el.TextContent(),
			})
			continue
		}
		code, name, err := s.fetch(ctx, src, s.doc.URL())
		if err != nil {
			return nil, fmt.Errorf("load script %s: %w", src, err)
		}
		scripts = append(scripts, Script{Name: name, Code: string(code)})
	}
	return scripts, nil
}

// ReadScript loads a script file or URL.
func (s *Session) ReadScript(ctx context.Context, ref string) (Script, error) {
	code, name, err := s.fetch(ctx, ref, "")
	if err != nil {
		return Script{}, fmt.Errorf("load script %s: %w", ref, err)
	}
	return Script{Name: name, Code: string(code)}, nil
}

// RunApp starts a JavaScript application against the page. The app handle
// is bound to the configured global; its ports are registered with the
// dispatcher and receive every emission. Scripts run in order, then the
// event loop is drained for at most the configured script timeout. An
// unfinished loop at that deadline is not an error.
func (s *Session) RunApp(ctx context.Context, scripts []Script) (*js.Runtime, error) {
	if s.dispatcher == nil {
		return nil, errors.New("no page loaded")
	}

	rt := js.NewRuntime(js.WithLogger(s.logger))
	ps := js.NewPortSet(rt)
	s.sinks = append(s.sinks, ps)
	js.Register(ps, s.dispatcher)
	if err := rt.SetGlobal(s.cfg.Script.Global, ps.App()); err != nil {
		return nil, err
	}

	for _, script := range scripts {
		if err := rt.ExecuteScript(script.Code, script.Name); err != nil {
			return rt, fmt.Errorf("run %s: %w", script.Name, err)
		}
	}

	loopCtx, cancel := context.WithTimeout(ctx, s.cfg.Script.Timeout)
	defer cancel()
	if err := rt.RunEventLoop(loopCtx); err != nil {
		if ctx.Err() != nil {
			return rt, ctx.Err()
		}
		s.logger.Info("Event loop deadline reached with work pending",
			zap.Duration("timeout", s.cfg.Script.Timeout))
	}
	return rt, nil
}

// Markup returns the serialized document element, or "" with no page.
func (s *Session) Markup() string {
	if s.doc == nil || s.doc.DocumentElement() == nil {
		return ""
	}
	return s.doc.DocumentElement().OuterHTML()
}

// Close stops pending image preloads and releases network connections.
func (s *Session) Close() error {
	if s.preloader == nil {
		s.client.CloseIdleConnections()
		return nil
	}
	stats := s.preloader.Stats()
	s.logger.Debug("Closing session",
		zap.Int64("preloaded", stats.Fetched),
		zap.Int64("preloadCacheHits", stats.CacheHits),
		zap.Int64("preloadFailures", stats.Failed))
	err := s.preloader.Close()
	if errors.Is(err, network.ErrPreloaderClosed) {
		return nil
	}
	return err
}
