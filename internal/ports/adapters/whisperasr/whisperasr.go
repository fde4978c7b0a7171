package whisperasr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/highcut/internal/domain/transcript"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/types"
)

type Options struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
}

// Client talks to a whisper-asr-webservice compatible /asr endpoint.
type Client struct {
	base     string
	language string
	http     *http.Client
}

type asrSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type asrResponse struct {
	Text     string       `json:"text"`
	Segments []asrSegment `json:"segments"`
	Language string       `json:"language"`
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 40 * time.Minute
	}
	return &Client{
		base:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		language: strings.TrimSpace(opts.Language),
		http:     &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads audioPath and writes the returned segments as SRT.
func (c *Client) Transcribe(ctx context.Context, audioPath, outSRT string) error {
	resp, err := c.request(ctx, audioPath)
	if err != nil {
		return err
	}
	if len(resp.Segments) == 0 {
		return faults.Wrap(faults.ErrMissingPrerequisite, "transcribing", "asr", "service returned no timed segments", nil)
	}
	blocks := make([]types.TranscriptBlock, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		blocks = append(blocks, types.TranscriptBlock{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	return transcript.WriteSRTFile(outSRT, blocks)
}

func (c *Client) request(ctx context.Context, audioPath string) (*asrResponse, error) {
	if c.base == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, "transcribing", "asr", "service url is not set", nil)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeAudio(mw, audioPath))
	}()

	q := url.Values{}
	q.Set("task", "transcribe")
	q.Set("encode", "true")
	q.Set("output", "json")
	q.Set("word_timestamps", "true")
	if c.language != "" {
		q.Set("language", c.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/asr?"+q.Encode(), pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.Wrap(faults.ErrExternalTool, "transcribing", "asr", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.ErrExternalTool, "transcribing", "asr", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, faults.Wrap(faults.ErrExternalTool, "transcribing", "asr", fmt.Sprintf("%s: %s", resp.Status, faults.Snippet(string(body), 200)), nil)
	}

	var out asrResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, faults.Wrap(faults.ErrExternalTool, "transcribing", "asr", "decode response", err)
	}
	return &out, nil
}

func writeAudio(mw *multipart.Writer, audioPath string) error {
	f, err := os.Open(audioPath)
	if err != nil {
		return err
	}
	defer f.Close()
	fw, err := mw.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return err
	}
	return mw.Close()
}
