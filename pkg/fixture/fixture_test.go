package fixture

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(DefaultOptions())
	t.Cleanup(s.Close)
	return s
}

// newClient returns a client with a cookie jar so requests share one
// fixture session, the way a browser would.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func getDoc(t *testing.T, client *http.Client, url string) *goquery.Document {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func postFeed(t *testing.T, client *http.Client, base, feedURL string) *goquery.Document {
	t.Helper()
	resp, err := client.PostForm(base+"/api/feed/add", url.Values{"new_feed_url": {feedURL}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// feedEntries counts feeds in the desktop sidebar only; the mobile
// subtree duplicates the list.
func feedEntries(doc *goquery.Document) int {
	return doc.Find("#desktop-feeds-content .feed-entry").Length()
}

func TestIndexDefaultUnreadFilter(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := getDoc(t, client, s.URL()+"/")
	items := doc.Find("li[data-testid='feed-item']")
	assert.Equal(t, 16, items.Length(), "2 seeded feeds x 8 articles, all unread")
	assert.Equal(t, 16, doc.Find(".unread-dot.bg-blue-600").Length())
	assert.Equal(t, 2, feedEntries(doc))
}

func TestBothLayoutSubtreesPresent(t *testing.T) {
	s := newTestServer(t)
	doc := getDoc(t, newClient(t), s.URL()+"/")

	assert.Equal(t, 1, doc.Find("#mobile-sidebar").Length())
	assert.Equal(t, 1, doc.Find("#desktop-feeds-content").Length())
	assert.Equal(t, 2, doc.Find("input[name='new_feed_url']").Length(),
		"one add-feed form per layout subtree")
}

func TestAddFeedEmptyURL(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := postFeed(t, client, s.URL(), "")
	assert.Contains(t, doc.Find(".feed-message").First().Text(), MsgEmptyURL)
	assert.Equal(t, 2, feedEntries(doc), "feed count must not change")
}

func TestAddFeedDuplicate(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)
	getDoc(t, client, s.URL()+"/") // establish session

	doc := postFeed(t, client, s.URL(), "https://news.example.com/rss.xml")
	assert.Contains(t, doc.Find(".feed-message").First().Text(), MsgDuplicate+"Example News")
	assert.Equal(t, 2, feedEntries(doc))
}

func TestAddFeedSuccess(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := postFeed(t, client, s.URL(), "https://fresh.example.net/atom.xml")
	assert.Contains(t, doc.Find(".feed-message").First().Text(), MsgAdded)
	assert.Equal(t, 3, feedEntries(doc))
}

func TestAddFeedPartialFailure(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := postFeed(t, client, s.URL(), "https://partial.example.net/feed")
	assert.Contains(t, doc.Find(".feed-message").First().Text(), MsgPartialFailure)
	assert.Equal(t, 3, feedEntries(doc), "partial failure still subscribes the feed")
}

func TestAddFeedInvalid(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := postFeed(t, client, s.URL(), "https://invalid.example.net/nope")
	assert.Contains(t, doc.Find(".feed-message").First().Text(), MsgAddFailed)
	assert.Equal(t, 2, feedEntries(doc))
}

func TestItemViewMarksRead(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := getDoc(t, client, s.URL()+"/")
	href, ok := doc.Find("li[data-testid='feed-item'] a").First().Attr("href")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(href, "/item/"))

	detail := getDoc(t, client, s.URL()+href)
	back, ok := detail.Find("#back-to-list").Attr("href")
	require.True(t, ok)
	assert.Contains(t, back, "unread=1")
	assert.Contains(t, back, "_scroll=")

	after := getDoc(t, client, s.URL()+"/")
	assert.Equal(t, 15, after.Find("li[data-testid='feed-item']").Length(),
		"unread filter drops the read article")
}

func TestAllTabKeepsReadItems(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	getDoc(t, client, s.URL()+"/item/2")
	doc := getDoc(t, client, s.URL()+"/?unread=0")
	assert.Equal(t, 16, doc.Find("li[data-testid='feed-item']").Length())
	assert.Equal(t, 15, doc.Find(".unread-dot.bg-blue-600").Length())
	assert.Equal(t, 1, doc.Find(".unread-dot.read-dot").Length(),
		"read item keeps its dot element, hidden")
}

func TestFeedFilter(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	doc := getDoc(t, client, s.URL()+"/?feed_id=1")
	assert.Equal(t, 8, doc.Find("li[data-testid='feed-item']").Length())
}

func TestScrollParamFlowsIntoRestoreScript(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(s.URL() + "/?_scroll=412")
	require.NoError(t, err)
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	script := doc.Find("script").First().Text()
	assert.Contains(t, script, "412")
	assert.Contains(t, script, "_scroll", "restore script strips the one-shot param")
}

func TestIndexPageCarriesPartialUpdateRuntime(t *testing.T) {
	// The add-feed forms must drive the fragment endpoint from a real
	// browser: the page ships a script that intercepts submits, sends
	// the HX-Request header, applies the out-of-band feed-list swap and
	// fires the lifecycle events a settle wait listens for.
	s := newTestServer(t)
	doc := getDoc(t, newClient(t), s.URL()+"/")

	script := doc.Find("script").Last().Text()
	assert.Contains(t, script, "HX-Request")
	assert.Contains(t, script, "hx-post")
	assert.Contains(t, script, "hx-swap-oob")
	for _, event := range []string{
		"htmx:beforeRequest", "htmx:afterRequest", "htmx:sendError",
		"htmx:beforeSwap", "htmx:afterSettle",
		"htmx:oobBeforeSwap", "htmx:oobAfterSwap",
	} {
		assert.Contains(t, script, event)
	}
	assert.Contains(t, script, "htmx-request")
	assert.Contains(t, script, "htmx-settling")
}

func TestPagination(t *testing.T) {
	opts := DefaultOptions()
	opts.ItemsPerFeed = 15 // 30 items across the two seeded feeds
	s := NewServer(opts)
	t.Cleanup(s.Close)
	client := newClient(t)

	first := getDoc(t, client, s.URL()+"/?unread=0")
	assert.Equal(t, 20, first.Find("li[data-testid='feed-item']").Length())

	second := getDoc(t, client, s.URL()+"/?unread=0&page=2")
	assert.Equal(t, 10, second.Find("li[data-testid='feed-item']").Length())

	beyond := getDoc(t, client, s.URL()+"/?unread=0&page=9")
	assert.Zero(t, beyond.Find("li[data-testid='feed-item']").Length())
}

func TestAddFeedHTMXFragment(t *testing.T) {
	s := newTestServer(t)
	client := newClient(t)

	req, err := http.NewRequest(http.MethodPost, s.URL()+"/api/feed/add",
		strings.NewReader(url.Values{"new_feed_url": {"https://fresh.example.net/atom.xml"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, doc.Find(".feed-message").Text(), MsgAdded)
	oob, ok := doc.Find("ul#feeds").Attr("hx-swap-oob")
	require.True(t, ok, "feed list must swap out of band")
	assert.Equal(t, "true", oob)
	assert.Equal(t, 3, doc.Find("#feeds .feed-entry").Length())
	assert.Zero(t, doc.Find("#summary").Length(), "fragment response is not a full page")
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	a := newClient(t)
	b := newClient(t)

	postFeed(t, a, s.URL(), "https://only-a.example.com/feed")
	docA := getDoc(t, a, s.URL()+"/")
	docB := getDoc(t, b, s.URL()+"/")

	assert.Equal(t, 3, feedEntries(docA))
	assert.Equal(t, 2, feedEntries(docB))
}
