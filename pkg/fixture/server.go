// Package fixture provides an in-process stand-in for the RSS reader
// application the harness is built to test. It emulates the observed
// HTTP contract: a list page with unread filtering, pagination and
// one-shot scroll restoration, item pages that mark articles read, and
// a feed-add endpoint with the full set of user-facing outcome
// messages. Both mobile and desktop DOM subtrees are always present
// and toggled by CSS media queries, which is exactly the layout
// ambiguity the locator package exists to police.
package fixture

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Outcome messages returned by the feed-add endpoint, matching the
// application under test verbatim.
const (
	MsgEmptyURL       = "Please enter a URL"
	MsgDuplicate      = "Already subscribed to: "
	MsgAdded          = "Feed added successfully"
	MsgPartialFailure = "Feed added but background update failed - refresh manually"
	MsgAddFailed      = "Failed to add feed: "
)

const sessionCookie = "session_id"

// Feed is one subscribed feed.
type Feed struct {
	ID    int
	URL   string
	Title string
}

// Item is one article.
type Item struct {
	ID     int
	FeedID int
	Title  string
	Body   string
}

// Options configures the fixture server.
type Options struct {
	// DefaultUnread controls whether the list page defaults to the
	// unread filter. The application's default shifted during its own
	// development, so it is configuration here, not a constant.
	DefaultUnread bool

	// ItemsPerFeed seeds this many articles per feed. Defaults to 8.
	ItemsPerFeed int

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions matches the application's current behavior.
func DefaultOptions() Options {
	return Options{DefaultUnread: true, ItemsPerFeed: 8, Logger: slog.Default()}
}

// session is one cookie-scoped user state. Sessions never share
// state; a fresh browser context gets a fresh session.
type session struct {
	feeds  []Feed
	items  []Item
	read   map[int]bool
	nextID int
}

// Server is the fixture HTTP server.
type Server struct {
	opts Options
	srv  *httptest.Server

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer starts the fixture on an ephemeral port.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ItemsPerFeed <= 0 {
		opts.ItemsPerFeed = 8
	}
	s := &Server{opts: opts, sessions: make(map[string]*session)}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/item/", s.handleItem)
	mux.HandleFunc("/api/feed/add", s.handleAddFeed)
	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// getSession finds or creates the request's session, seeding a new
// one with two feeds and their articles.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) (string, *session) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	} else {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = s.seedSession()
		s.sessions[id] = sess
	}
	return id, sess
}

func (s *Server) seedSession() *session {
	sess := &session{read: make(map[int]bool), nextID: 1}
	for _, seed := range []struct{ url, title string }{
		{"https://news.example.com/rss.xml", "Example News"},
		{"https://blog.example.org/feed", "Example Blog"},
	} {
		feed := Feed{ID: sess.nextID, URL: seed.url, Title: seed.title}
		sess.nextID++
		sess.feeds = append(sess.feeds, feed)
		for i := 1; i <= s.opts.ItemsPerFeed; i++ {
			sess.items = append(sess.items, Item{
				ID:     sess.nextID,
				FeedID: feed.ID,
				Title:  fmt.Sprintf("%s article %d", feed.Title, i),
				Body:   fmt.Sprintf("Body of %s article %d.", feed.Title, i),
			})
			sess.nextID++
		}
	}
	return sess
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, sess := s.getSession(w, r)

	q := r.URL.Query()
	unread := s.opts.DefaultUnread
	if v := q.Get("unread"); v != "" {
		unread = v == "1"
	}
	feedID, _ := strconv.Atoi(q.Get("feed_id"))
	page, _ := strconv.Atoi(q.Get("page"))
	scroll, _ := strconv.Atoi(q.Get("_scroll"))

	s.mu.Lock()
	view := s.buildIndexView(sess, indexQuery{unread: unread, feedID: feedID, page: page, scroll: scroll})
	s.mu.Unlock()

	s.render(w, view)
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	_, sess := s.getSession(w, r)

	idStr := strings.TrimPrefix(r.URL.Path, "/item/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	unreadView := q.Get("unread_view") == "1"
	scroll, _ := strconv.Atoi(q.Get("_scroll"))

	s.mu.Lock()
	var found *Item
	for i := range sess.items {
		if sess.items[i].ID == id {
			found = &sess.items[i]
			break
		}
	}
	if found != nil {
		sess.read[id] = true
	}
	s.mu.Unlock()

	if found == nil {
		http.NotFound(w, r)
		return
	}

	backUnread := "0"
	if unreadView {
		backUnread = "1"
	}
	s.renderItem(w, *found, fmt.Sprintf("/?unread=%s&_scroll=%d", backUnread, scroll))
}

func (s *Server) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, sess := s.getSession(w, r)

	url := strings.TrimSpace(r.FormValue("new_feed_url"))

	s.mu.Lock()
	message := s.applyAddFeed(sess, url)
	view := s.buildIndexView(sess, indexQuery{unread: s.opts.DefaultUnread, message: message})
	s.mu.Unlock()

	// An htmx submit gets the outcome fragment plus an out-of-band
	// sidebar swap; a plain form post gets the whole page.
	if r.Header.Get("HX-Request") == "true" {
		s.renderAddFeedFragment(w, view)
		return
	}
	s.render(w, view)
}

// applyAddFeed mutates the session and returns the user-facing
// outcome message. Caller holds the lock.
func (s *Server) applyAddFeed(sess *session, url string) string {
	switch {
	case url == "":
		return MsgEmptyURL
	case strings.Contains(url, "invalid"):
		return MsgAddFailed + "not a valid feed URL"
	}
	for _, f := range sess.feeds {
		if f.URL == url {
			return MsgDuplicate + f.Title
		}
	}

	feed := Feed{ID: sess.nextID, URL: url, Title: "Loading..."}
	sess.nextID++
	sess.feeds = append(sess.feeds, feed)

	if strings.Contains(url, "partial") {
		return MsgPartialFailure
	}
	return MsgAdded
}
