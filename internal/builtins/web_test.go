// ABOUTME: Tests for the web pack.
// ABOUTME: Points every tool at local httptest servers via the services config.

package builtins

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbbisht2004/Yogi/internal/config"
)

func newWebPackWith(t *testing.T, cfg config.ServicesConfig) *webHandlers {
	t.Helper()
	cfg.HTTPTimeout = 5 * time.Second
	return &webHandlers{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		logger: testLogger(),
	}
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestWeather(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Dehradun" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "3" {
			t.Errorf("format = %q", r.URL.Query().Get("format"))
		}
		fmt.Fprintln(w, "Dehradun: ⛅️ +24°C")
	})

	h := newWebPackWith(t, config.ServicesConfig{WeatherBase: srv.URL})
	got := call(t, h.Weather, `{"city":"Dehradun"}`)
	if got != "Dehradun: ⛅️ +24°C" {
		t.Errorf("weather = %q", got)
	}
}

func TestWeatherServiceDown(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	h := newWebPackWith(t, config.ServicesConfig{WeatherBase: srv.URL})
	got := call(t, h.Weather, `{"city":"Dehradun"}`)
	if got != "Couldn't fetch weather for Dehradun." {
		t.Errorf("weather = %q", got)
	}
}

const searchResultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://go.dev">The Go Programming Language</a>
  <a class="result__snippet">Go is an open source programming language.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com">Second Hit</a>
  <a class="result__snippet">Another snippet here.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org">Third Hit</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.net">Fourth Hit never read</a>
</div>
</body></html>`

func TestSearch(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("q = %q", got)
		}
		fmt.Fprint(w, searchResultsPage)
	})

	h := newWebPackWith(t, config.ServicesConfig{SearchBase: srv.URL})
	got := call(t, h.Search, `{"query":"golang"}`)

	lines := strings.Split(got, "\n")
	if len(lines) != maxSearchResults {
		t.Fatalf("got %d results, want %d:\n%s", len(lines), maxSearchResults, got)
	}
	if lines[0] != "The Go Programming Language: Go is an open source programming language." {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[2] != "Third Hit" {
		t.Errorf("snippetless line = %q", lines[2])
	}
	if strings.Contains(got, "Fourth Hit") {
		t.Error("result cap not applied")
	}
}

func TestSearchNoResults(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>no results block</body></html>")
	})

	h := newWebPackWith(t, config.ServicesConfig{SearchBase: srv.URL})
	got := call(t, h.Search, `{"query":"xyzzy"}`)
	if got != "Could not perform search for 'xyzzy'." {
		t.Errorf("search = %q", got)
	}
}

func TestWikipediaSummary(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page/summary/Go_(programming_language)" && r.URL.Path != "/page/summary/Go_%28programming_language%29" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"type":"standard","extract":"Go is a statically typed language. It was designed at Google. It is often called Golang."}`)
	})

	h := newWebPackWith(t, config.ServicesConfig{WikiBase: srv.URL})
	got := call(t, h.WikipediaSummary, `{"topic":"Go_(programming_language)"}`)
	want := "Go is a statically typed language. It was designed at Google."
	if got != want {
		t.Errorf("summary = %q, want first two sentences %q", got, want)
	}
}

func TestWikipediaNotFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	h := newWebPackWith(t, config.ServicesConfig{WikiBase: srv.URL})
	if got := call(t, h.WikipediaSummary, `{"topic":"Xyzzy"}`); got != "Topic not found." {
		t.Errorf("summary = %q", got)
	}
}

func TestWikipediaDisambiguation(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/page/summary/"):
			fmt.Fprint(w, `{"type":"disambiguation","extract":"Mercury may refer to:"}`)
		case strings.HasPrefix(r.URL.Path, "/page/related/"):
			fmt.Fprint(w, `{"pages":[{"title":"Mercury (planet)"},{"title":"Mercury (element)"},{"title":"Freddie Mercury"}]}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	h := newWebPackWith(t, config.ServicesConfig{WikiBase: srv.URL})
	got := call(t, h.WikipediaSummary, `{"topic":"Mercury"}`)
	want := "Topic is ambiguous. Options: Mercury (planet), Mercury (element), Freddie Mercury..."
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestNewsHeadlines(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("country") != "us" || q.Get("pageSize") != "5" || q.Get("apiKey") != "test-key" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"status":"ok","articles":[{"title":"First headline"},{"title":"Second headline"}]}`)
	})

	h := newWebPackWith(t, config.ServicesConfig{NewsBase: srv.URL, NewsAPIKey: "test-key"})
	got := call(t, h.NewsHeadlines, `{}`)
	if got != "First headline\nSecond headline" {
		t.Errorf("headlines = %q", got)
	}
}

func TestNewsAPIError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","message":"Your API key is invalid"}`)
	})

	h := newWebPackWith(t, config.ServicesConfig{NewsBase: srv.URL, NewsAPIKey: "bad"})
	got := call(t, h.NewsHeadlines, `{}`)
	if got != "Error from news API: Your API key is invalid" {
		t.Errorf("headlines = %q", got)
	}
}

func TestNewsNoHeadlines(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","articles":[]}`)
	})

	h := newWebPackWith(t, config.ServicesConfig{NewsBase: srv.URL})
	if got := call(t, h.NewsHeadlines, `{}`); got != "No headlines found." {
		t.Errorf("headlines = %q", got)
	}
}

func TestJoke(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/random_joke" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"setup":"Why do programmers prefer dark mode?","punchline":"Because light attracts bugs."}`)
	})

	h := newWebPackWith(t, config.ServicesConfig{JokeBase: srv.URL})
	got := call(t, h.JokeOrQuote, `{}`)
	want := "Why do programmers prefer dark mode?\nBecause light attracts bugs."
	if got != want {
		t.Errorf("joke = %q", got)
	}
}

func TestQuote(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/random" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"content":"Stay hungry, stay foolish.","author":"Stewart Brand"}`)
	})

	h := newWebPackWith(t, config.ServicesConfig{QuoteBase: srv.URL})
	got := call(t, h.JokeOrQuote, `{"type":"quote"}`)
	want := "Stay hungry, stay foolish. — Stewart Brand"
	if got != want {
		t.Errorf("quote = %q", got)
	}
}

func TestJokeServiceDown(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	h := newWebPackWith(t, config.ServicesConfig{JokeBase: srv.URL})
	if got := call(t, h.JokeOrQuote, `{"type":"joke"}`); got != "Couldn't fetch a joke." {
		t.Errorf("joke = %q", got)
	}
}

func TestWebPackShape(t *testing.T) {
	pack := WebPack(config.ServicesConfig{HTTPTimeout: time.Second}, testLogger())
	if pack.ID != "core.web" {
		t.Errorf("pack ID = %q", pack.ID)
	}
	for _, name := range []string{"get_weather", "search_web", "wikipedia_summary", "get_news_headlines", "get_joke_or_quote"} {
		findHandler(t, pack, name)
	}
}
