// Package drive wraps the two Google Drive interactions the pipeline has:
// pulling the artist list down and pushing the finished workbook up. Nothing
// here is allowed to fail the run; callers log and move on.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type Service struct {
	srv *drivev3.Service
	log *slog.Logger
}

// authorizedUser is the shape of a token.json written by an OAuth
// installed-app flow.
type authorizedUser struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// NewService builds a Drive client from an authorized-user token file. The
// refresh token inside it is exchanged lazily; an expired access token does
// not surface here.
func NewService(ctx context.Context, tokenPath string, log *slog.Logger) (*Service, error) {
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("error reading drive token '%s': %w", tokenPath, err)
	}
	var user authorizedUser
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, fmt.Errorf("error parsing drive token '%s': %w", tokenPath, err)
	}
	if user.RefreshToken == "" {
		return nil, fmt.Errorf("drive token '%s' has no refresh token", tokenPath)
	}

	conf := &oauth2.Config{
		ClientID:     user.ClientID,
		ClientSecret: user.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drivev3.DriveScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: user.RefreshToken})

	srv, err := drivev3.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("error building drive service: %w", err)
	}
	return &Service{srv: srv, log: log}, nil
}

// Upload pushes the file into the given folder and returns its id and view
// link. A failed share is tolerated: some accounts forbid public links by
// policy, and the upload itself still succeeded.
func (s *Service) Upload(ctx context.Context, path, folderID string, shareAnyone bool) (fileID, webLink string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("error opening '%s': %w", path, err)
	}
	defer f.Close()

	meta := &drivev3.File{Name: filepath.Base(path)}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	created, err := s.srv.Files.Create(meta).
		Media(f).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("error uploading '%s': %w", path, err)
	}

	if shareAnyone {
		_, err := s.srv.Permissions.Create(created.Id, &drivev3.Permission{
			Role: "reader",
			Type: "anyone",
		}).Context(ctx).Do()
		if err != nil {
			s.log.Warn("could not share uploaded file", "file_id", created.Id, "error", err)
		}
	}

	return created.Id, created.WebViewLink, nil
}

// ExportSheetCSV exports the first sheet of a Google Sheet as CSV.
func (s *Service) ExportSheetCSV(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.srv.Files.Export(fileID, "text/csv").Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("error exporting sheet '%s': %w", fileID, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// DownloadFile fetches a Drive-hosted file's raw contents.
func (s *Service) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("error downloading file '%s': %w", fileID, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
