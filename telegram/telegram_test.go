package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamsmusic/scpulse/data"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSummary() data.RunSummary {
	return data.RunSummary{
		SnapshotDate:  "2024-06-01",
		Timestamp:     "2024-06-01 09:30:00",
		RunSeconds:    12.34,
		ArtistsIn:     3,
		ArtistsOK:     2,
		ArtistsFailed: 1,
		TracksTotal:   40,
		AlbumsTotal:   5,
		ErrorsTotal:   1,
	}
}

func TestSummaryText(t *testing.T) {
	text := summaryText(sampleSummary(), "https://drive.example/view")

	assert.Contains(t, text, "2024-06-01")
	assert.Contains(t, text, "2 از 3")
	assert.Contains(t, text, "(1 ناموفق)")
	assert.Contains(t, text, "12.34")
	assert.Contains(t, text, "https://drive.example/view")

	clean := sampleSummary()
	clean.ArtistsOK = 3
	clean.ArtistsFailed = 0
	text = summaryText(clean, "")
	assert.NotContains(t, text, "ناموفق")
	assert.NotContains(t, text, "لینک درایو")
}

func TestNotifySendsMessageAndDocument(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(report, []byte("workbook bytes"), 0644))

	var gotMessage, gotDocument bool
	var messageText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			gotMessage = true
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "42", r.Form.Get("chat_id"))
			assert.Equal(t, "true", r.Form.Get("disable_web_page_preview"))
			messageText = r.Form.Get("text")
		case strings.HasSuffix(r.URL.Path, "/sendDocument"):
			gotDocument = true
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "42", r.FormValue("chat_id"))
			f, hdr, err := r.FormFile("document")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "report.xlsx", hdr.Filename)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := New("tok", "42", testLogger())
	n.base = srv.URL
	n.Notify(context.Background(), sampleSummary(), report, "https://drive.example/view")

	assert.True(t, gotMessage)
	assert.True(t, gotDocument)
	assert.Contains(t, messageText, "https://drive.example/view")
}

func TestNotifyDisabledDoesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when notifier is disabled")
	}))
	defer srv.Close()

	n := New("", "", testLogger())
	n.base = srv.URL
	n.Notify(context.Background(), sampleSummary(), "missing.xlsx", "")
}
