// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// HTTP is a registry served over http(s).
type HTTP struct {
	base   string
	client *http.Client
	logger *log.Logger
}

// NewHTTP returns the registry at base. A nil client uses http.DefaultClient
// and a nil logger discards debug records.
func NewHTTP(base string, client *http.Client, logger *log.Logger) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = output.Discard()
	}
	return &HTTP{base: strings.TrimSuffix(base, "/"), client: client, logger: logger}
}

// Packages implements Registry.
func (r *HTTP) Packages(ctx context.Context) ([]*pkginfo.PackageInfo, error) {
	var sb strings.Builder
	if err := r.get(ctx, r.base+"/"+IndexFileName, &sb); err != nil {
		return nil, fmt.Errorf("failed to download registry index: %w", err)
	}
	idx, err := ParseIndex([]byte(sb.String()))
	if err != nil {
		return nil, err
	}
	return idx.PackageInfos(r.resolve)
}

// Fetch implements Fetcher.
func (r *HTTP) Fetch(ctx context.Context, id pkginfo.Identity, version, pinned string, dst io.Writer) error {
	src := pinned
	if src == "" {
		src = r.resolve(fmt.Sprintf("%s/%s/%s.zip", id.Kind, url.PathEscape(id.Name), url.PathEscape(version)))
	}
	r.logger.Debug("downloading package", "pkg", id, "version", version, "url", src)

	if err := r.get(ctx, src, dst); err != nil {
		return fmt.Errorf("failed to download %s@%s: %w", id, version, err)
	}
	return nil
}

func (r *HTTP) resolve(file string) string {
	if isURL(file) {
		return file
	}
	return r.base + "/" + strings.TrimPrefix(file, "/")
}

func (r *HTTP) get(ctx context.Context, src string, dst io.Writer) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.client.Do(req) //nolint:gosec // URL comes from the configured registry
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	_, err = io.Copy(dst, resp.Body)
	return err
}
