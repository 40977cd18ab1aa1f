package ingestion

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// uploadFile streams a multipart body through a pipe so large documents are
// never buffered in memory.
func (c *Client) uploadFile(ctx context.Context, endpoint, path string, onProgress func(percent int)) (*Response, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{
			reader:     file,
			total:      info.Size(),
			onProgress: onProgress,
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.attachAuth(req)

	return c.do(c.uploadClient, req)
}

// progressReader reports upload progress as a whole percentage while the
// body is streamed out.
type progressReader struct {
	reader     io.Reader
	total      int64
	read       int64
	last       int
	onProgress func(percent int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	p.read += int64(n)
	if p.onProgress != nil && p.total > 0 {
		percent := int(p.read * 100 / p.total)
		if percent != p.last {
			p.last = percent
			p.onProgress(percent)
		}
	}
	return n, err
}
