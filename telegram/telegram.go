// Package telegram delivers the end-of-run summary message and the workbook
// itself to a chat. Delivery is best-effort: a failed send is logged, never
// returned, because the report already exists on disk by the time we get here.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shamsmusic/scpulse/data"
)

const apiBase = "https://api.telegram.org"

type Notifier struct {
	base   string
	token  string
	chatID string
	hc     *http.Client
	log    *slog.Logger
}

func New(token, chatID string, log *slog.Logger) *Notifier {
	return &Notifier{
		base:   apiBase,
		token:  token,
		chatID: chatID,
		hc:     &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Notify sends the summary text and the workbook document. The two sends are
// independent; one failing does not stop the other.
func (n *Notifier) Notify(ctx context.Context, summary data.RunSummary, reportPath, driveLink string) {
	if !n.Enabled() {
		n.log.Info("telegram disabled, skipping notification")
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		return n.sendMessage(ctx, summaryText(summary, driveLink))
	})
	g.Go(func() error {
		caption := fmt.Sprintf("گزارش ساندکلاد %s", summary.SnapshotDate)
		return n.sendDocument(ctx, reportPath, caption)
	})
	if err := g.Wait(); err != nil {
		n.log.Warn("telegram delivery incomplete", "error", err)
	} else {
		n.log.Info("telegram notification sent", "chat_id", n.chatID)
	}
}

func summaryText(s data.RunSummary, driveLink string) string {
	var b strings.Builder
	b.WriteString("سلام آقای شمس، بفرمایید قهوه ☕\n\n")
	b.WriteString("خلاصه‌ی گزارش امروز:\n")
	fmt.Fprintf(&b, "تاریخ: %s\n", s.SnapshotDate)
	fmt.Fprintf(&b, "آرتیست‌ها: %d از %d موفق", s.ArtistsOK, s.ArtistsIn)
	if s.ArtistsFailed > 0 {
		fmt.Fprintf(&b, " (%d ناموفق)", s.ArtistsFailed)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "ترک‌ها: %d | آلبوم‌ها: %d\n", s.TracksTotal, s.AlbumsTotal)
	fmt.Fprintf(&b, "خطاها: %d\n", s.ErrorsTotal)
	fmt.Fprintf(&b, "زمان اجرا: %.2f ثانیه\n", s.RunSeconds)
	if driveLink != "" {
		fmt.Fprintf(&b, "\nلینک درایو: %s", driveLink)
	}
	return b.String()
}

func (n *Notifier) sendMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.base, n.token)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error making sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return n.do(req, "sendMessage")
}

func (n *Notifier) sendDocument(ctx context.Context, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening report '%s': %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", n.chatID); err != nil {
		return fmt.Errorf("error writing chat_id field: %w", err)
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return fmt.Errorf("error writing caption field: %w", err)
		}
	}
	part, err := w.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("error creating document part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("error copying report into request: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("error finalizing multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", n.base, n.token)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &body)
	if err != nil {
		return fmt.Errorf("error making sendDocument request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return n.do(req, "sendDocument")
}

func (n *Notifier) do(req *http.Request, method string) error {
	resp, err := n.hc.Do(req)
	if err != nil {
		return fmt.Errorf("error in telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram %s returned %d: %s", method, resp.StatusCode, string(body))
	}
	return nil
}
