package release

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// ProgressFunc receives the number of bytes read so far and the expected
// total, which is zero when unknown.
type ProgressFunc func(done, total int64)

// Download reads the whole asset into memory.
func (c *Client) Download(ctx context.Context, asset Asset, progress ProgressFunc) ([]byte, error) {
	if asset.DownloadURL == "" {
		return nil, fmt.Errorf("asset %s has no download url", asset.Name)
	}

	resp, err := c.get(ctx, asset.DownloadURL, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	total := resp.ContentLength
	if total <= 0 {
		total = asset.Size
	}
	if total < 0 {
		total = 0
	}

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	var src io.Reader = resp.Body
	if progress != nil {
		src = &progressReader{r: resp.Body, total: total, fn: progress}
	}
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, fmt.Errorf("download %s: %w", asset.Name, err)
	}

	c.log.Debug().Str("asset", asset.Name).Int("bytes", buf.Len()).Msg("downloaded")
	return buf.Bytes(), nil
}

type progressReader struct {
	r     io.Reader
	done  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.fn(p.done, p.total)
	}
	return n, err
}
