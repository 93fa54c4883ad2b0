// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

const progressThrottle = 100 * time.Millisecond

// Download is a [Resolver] fetching a file via HTTP GET.
type Download struct {
	URL string
	// Client is used for the request. [http.DefaultClient] if nil.
	Client *http.Client
	// Progress receives a progress bar if not nil.
	Progress io.Writer
}

// Resolve downloads the file. Any status other than 2xx is an error.
func (d *Download) Resolve(ctx context.Context) ([]byte, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	slog.InfoContext(ctx, "Downloading", slog.String("url", d.URL))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	var (
		buf bytes.Buffer
		dst io.Writer = &buf
	)

	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	if d.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(d.Progress),
			progressbar.OptionSetDescription(d.URL),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(progressThrottle),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish() //nolint:errcheck

		dst = io.MultiWriter(&buf, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	slog.InfoContext(ctx, "Download completed",
		slog.String("url", d.URL),
		slog.String("size", humanize.IBytes(uint64(buf.Len()))),
	)

	return buf.Bytes(), nil
}

func (d *Download) String() string {
	return "download " + d.URL
}
