package fixture

import (
	"html/template"
	"net/http"
)

// indexView is the template model for the list page.
type indexView struct {
	Feeds   []feedView
	Items   []itemView
	Message string
	Unread  bool
	Scroll  int
}

type feedView struct {
	ID    int
	Title string
}

type itemView struct {
	ID         int
	Title      string
	Unread     bool
	UnreadView string
}

// pageSize is the number of list items per page.
const pageSize = 20

// indexQuery carries the parsed list-page parameters.
type indexQuery struct {
	unread  bool
	feedID  int
	page    int
	scroll  int
	message string
}

// buildIndexView assembles the list page model. Caller holds the lock.
func (s *Server) buildIndexView(sess *session, q indexQuery) indexView {
	view := indexView{Message: q.message, Unread: q.unread, Scroll: q.scroll}
	for _, f := range sess.feeds {
		view.Feeds = append(view.Feeds, feedView{ID: f.ID, Title: f.Title})
	}
	unreadView := "0"
	if q.unread {
		unreadView = "1"
	}
	for _, it := range sess.items {
		if q.feedID != 0 && it.FeedID != q.feedID {
			continue
		}
		if q.unread && sess.read[it.ID] {
			continue
		}
		view.Items = append(view.Items, itemView{
			ID:         it.ID,
			Title:      it.Title,
			Unread:     !sess.read[it.ID],
			UnreadView: unreadView,
		})
	}

	page := q.page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(view.Items) {
		view.Items = nil
	} else {
		end := start + pageSize
		if end > len(view.Items) {
			end = len(view.Items)
		}
		view.Items = view.Items[start:end]
	}
	return view
}

func (s *Server) render(w http.ResponseWriter, view indexView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, view); err != nil {
		s.opts.Logger.Error("render index", "error", err)
	}
}

func (s *Server) renderItem(w http.ResponseWriter, item Item, backHref string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := itemTmpl.Execute(w, struct {
		Item     Item
		BackHref string
	}{item, backHref})
	if err != nil {
		s.opts.Logger.Error("render item", "error", err)
	}
}

// renderAddFeedFragment answers an htmx submit: the outcome message
// for the primary swap target plus the refreshed feed list as an
// out-of-band fragment.
func (s *Server) renderAddFeedFragment(w http.ResponseWriter, view indexView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := addFeedFragmentTmpl.Execute(w, view); err != nil {
		s.opts.Logger.Error("render add-feed fragment", "error", err)
	}
}

var addFeedFragmentTmpl = template.Must(template.New("add-feed-fragment").Parse(
	`<div class="feed-message">{{.Message}}</div>
<ul id="feeds" class="feeds-list" hx-swap-oob="true">
  {{range .Feeds}}<li class="feed-entry"><a href="/?feed_id={{.ID}}">{{.Title}}</a></li>
  {{end}}
</ul>
`))

// The list page carries both layout subtrees at all times. CSS media
// queries at the 1024px boundary decide which is visible, mirroring
// the application under test.
var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Feed Reader</title>
<style>
  body { margin: 0; font-family: sans-serif; }
  #summary { height: 600px; overflow-y: auto; list-style: none; margin: 0; padding: 0; }
  li[data-testid="feed-item"] { min-height: 88px; box-sizing: border-box; padding: 12px; border-bottom: 1px solid #ddd; }
  .unread-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; }
  .bg-blue-600 { background-color: #2563eb; }
  .read-dot { visibility: hidden; }
  .item-title.unread { font-weight: 700; }
  .item-title { font-weight: 400; }
  .feed-message { padding: 8px; color: #b45309; }
  #mobile-sidebar { display: none; }
  #mobile-sidebar.open { display: block; position: fixed; top: 0; left: 0; width: 280px; height: 100%; background: #fff; z-index: 10; }
  @media (max-width: 1023.98px) {
    #mobile-header { display: block; }
    #desktop-feeds-content { display: none; }
  }
  @media (min-width: 1024px) {
    #mobile-header { display: none; }
    #mobile-sidebar { display: none !important; }
    #desktop-feeds-content { display: block; float: left; width: 280px; }
  }
</style>
</head>
<body>
<div id="app-root">
  <header id="mobile-header">
    <button id="mobile-menu-button" aria-label="Open menu"
            onclick="document.getElementById('mobile-sidebar').classList.toggle('open')">&#9776;</button>
  </header>

  <aside id="mobile-sidebar">
    <form method="post" action="/api/feed/add">
      <input type="text" name="new_feed_url" placeholder="Feed URL">
      <button type="submit" hx-post="/api/feed/add">Add Feed</button>
    </form>
    {{if .Message}}<div class="feed-message">{{.Message}}</div>{{end}}
    <ul class="feeds-list">
      {{range .Feeds}}<li class="feed-entry"><a href="/?feed_id={{.ID}}">{{.Title}}</a></li>
      {{end}}
    </ul>
  </aside>

  <aside id="desktop-feeds-content">
    <form method="post" action="/api/feed/add">
      <input type="text" name="new_feed_url" placeholder="Feed URL">
      <button type="submit" hx-post="/api/feed/add">Add Feed</button>
    </form>
    {{if .Message}}<div class="feed-message">{{.Message}}</div>{{end}}
    <ul id="feeds" class="feeds-list">
      {{range .Feeds}}<li class="feed-entry"><a href="/?feed_id={{.ID}}">{{.Title}}</a></li>
      {{end}}
    </ul>
  </aside>

  <main>
    <nav>
      <a id="tab-unread" href="/?unread=1">Unread</a>
      <a id="tab-all" href="/?unread=0">All</a>
    </nav>
    <ul id="summary">
      {{range .Items}}<li data-testid="feed-item">
        <span class="unread-dot {{if .Unread}}bg-blue-600{{else}}read-dot{{end}}"></span>
        <a href="/item/{{.ID}}?unread_view={{.UnreadView}}"
           onclick="this.href += '&_scroll=' + document.getElementById('summary').scrollTop">
          <span class="item-title{{if .Unread}} unread{{end}}">{{.Title}}</span>
        </a>
      </li>
      {{end}}
    </ul>
  </main>
</div>
<script>
  (function () {
    var scroll = {{.Scroll}};
    if (scroll > 0) {
      document.getElementById('summary').scrollTop = scroll;
    }
    // The scroll offset is consumed exactly once: strip it so a
    // reload does not replay the restoration.
    var url = new URL(window.location.href);
    if (url.searchParams.has('_scroll')) {
      url.searchParams.delete('_scroll');
      history.replaceState(null, '', url.toString());
    }
  })();
</script>
<script>
  // Minimal htmx runtime for the hx-post forms: the request, swap and
  // settle lifecycle with the events a settle wait observes, so partial
  // updates behave in a real browser the way the full application's do.
  (function () {
    function fire(name) {
      document.dispatchEvent(new CustomEvent(name, { bubbles: true }));
    }
    function applyFragment(html) {
      var tpl = document.createElement('template');
      tpl.innerHTML = html;
      fire('htmx:beforeSwap');
      document.body.classList.add('htmx-settling');
      var msg = tpl.content.querySelector('.feed-message');
      ['mobile-sidebar', 'desktop-feeds-content'].forEach(function (id) {
        var aside = document.getElementById(id);
        if (!aside || !msg) return;
        var next = msg.cloneNode(true);
        var old = aside.querySelector('.feed-message');
        if (old) {
          old.replaceWith(next);
        } else {
          aside.insertBefore(next, aside.querySelector('.feeds-list'));
        }
      });
      var oob = tpl.content.querySelector('[hx-swap-oob]');
      if (oob) {
        fire('htmx:oobBeforeSwap');
        var target = document.getElementById(oob.id);
        oob.removeAttribute('hx-swap-oob');
        if (target) target.replaceWith(oob);
        fire('htmx:oobAfterSwap');
      }
      setTimeout(function () {
        document.body.classList.remove('htmx-settling');
        fire('htmx:afterSettle');
      }, 20);
    }
    document.querySelectorAll('form').forEach(function (form) {
      var btn = form.querySelector('[hx-post]');
      if (!btn) return;
      form.addEventListener('submit', function (ev) {
        ev.preventDefault();
        document.body.classList.add('htmx-request');
        fire('htmx:beforeRequest');
        fetch(btn.getAttribute('hx-post'), {
          method: 'POST',
          headers: {
            'HX-Request': 'true',
            'Content-Type': 'application/x-www-form-urlencoded'
          },
          body: new URLSearchParams(new FormData(form)).toString()
        }).then(function (resp) {
          return resp.text();
        }).then(function (html) {
          fire('htmx:afterRequest');
          document.body.classList.remove('htmx-request');
          applyFragment(html);
        }).catch(function () {
          fire('htmx:sendError');
          document.body.classList.remove('htmx-request');
        });
      });
    });
  })();
</script>
</body>
</html>
`))

var itemTmpl = template.Must(template.New("item").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Item.Title}}</title></head>
<body>
<article id="item-detail">
  <a id="back-to-list" href="{{.BackHref}}">&larr; Back</a>
  <h1>{{.Item.Title}}</h1>
  <p>{{.Item.Body}}</p>
</article>
</body>
</html>
`))
