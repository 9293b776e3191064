// Package drive uploads invoice PDFs to Google Drive and produces
// public download links for them.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Uploader writes PDFs into a fixed Drive folder using an offline OAuth2
// refresh token, then opens them to anyone with the link.
type Uploader struct {
	tokenSource oauth2.TokenSource
	folderID    string
}

func NewUploader(clientID, clientSecret, redirectURL, refreshToken, folderID string) *Uploader {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}
	return &Uploader{
		tokenSource: cfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: refreshToken}),
		folderID:    folderID,
	}
}

// UploadInvoicePDF stores the PDF under the configured folder, grants
// link-read access and returns the file's webViewLink.
func (u *Uploader) UploadInvoicePDF(ctx context.Context, name string, pdf []byte) (string, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(u.tokenSource))
	if err != nil {
		return "", fmt.Errorf("drive: service: %w", err)
	}

	meta := &drive.File{
		Name:    name,
		Parents: []string{u.folderID},
	}
	f, err := svc.Files.Create(meta).
		Media(bytes.NewReader(pdf), googleapi.ContentType("application/pdf")).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive: upload %s: %w", name, err)
	}

	_, err = svc.Permissions.Create(f.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive: share %s: %w", name, err)
	}

	return f.WebViewLink, nil
}

var fileIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]{25,})`)

// DirectDownloadLink rewrites a Drive share link into the uc?export=download
// form that serves the raw file. Links without a recognizable file id are
// returned unchanged.
func DirectDownloadLink(shareLink string) string {
	m := fileIDPattern.FindStringSubmatch(shareLink)
	if m == nil {
		return shareLink
	}
	return "https://drive.google.com/uc?export=download&id=" + m[1]
}
