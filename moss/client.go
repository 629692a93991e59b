// Package moss is a client for the MOSS software similarity service.
package moss

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost = "moss.stanford.edu"
	DefaultPort = 7690
)

// ErrLanguageRejected is returned when the server does not support the language tag.
var ErrLanguageRejected = errors.New("moss rejected the language")

type File struct {
	// Name is shown in the report, spaces are replaced with underscores.
	Name    string
	Content []byte
}

type Options struct {
	// Directory groups files by directory instead of by file.
	Directory bool
	// Experimental enables the server's experimental mode.
	Experimental bool
	MaxMatches   int
	Show         int
	Comment      string
}

func DefaultOptions() Options {
	return Options{MaxMatches: 10, Show: 250}
}

type Client struct {
	userID     string
	addr       string
	httpClient *http.Client
}

func NewClient(userID string, host string, port int) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	return &Client{
		userID:     userID,
		addr:       net.JoinHostPort(host, strconv.Itoa(port)),
		httpClient: &http.Client{Timeout: time.Minute},
	}
}

// Send uploads base files (id 0) and submissions (ids 1..n) and returns the report URL.
// The connection honours the context deadline.
func (c *Client) Send(ctx context.Context, language string, base []File, files []File, opts Options) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to moss: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set moss deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	w := bufio.NewWriter(conn)
	r := bufio.NewReader(conn)

	fmt.Fprintf(w, "moss %s\n", c.userID)
	fmt.Fprintf(w, "directory %d\n", boolInt(opts.Directory))
	fmt.Fprintf(w, "X %d\n", boolInt(opts.Experimental))
	fmt.Fprintf(w, "maxmatches %d\n", opts.MaxMatches)
	fmt.Fprintf(w, "show %d\n", opts.Show)
	fmt.Fprintf(w, "language %s\n", language)
	if err := w.Flush(); err != nil {
		return "", wrapIO(ctx, "failed to send moss header", err)
	}

	reply, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && reply != "") {
		return "", wrapIO(ctx, "failed to read language reply", err)
	}
	if strings.TrimSpace(reply) == "no" {
		fmt.Fprint(w, "end\n")
		_ = w.Flush()
		return "", fmt.Errorf("%w: %s", ErrLanguageRejected, language)
	}

	for _, f := range base {
		if err := writeFile(w, 0, language, f); err != nil {
			return "", wrapIO(ctx, "failed to upload base file", err)
		}
	}
	for i, f := range files {
		if err := writeFile(w, i+1, language, f); err != nil {
			return "", wrapIO(ctx, "failed to upload file", err)
		}
	}

	fmt.Fprintf(w, "query 0 %s\n", opts.Comment)
	if err := w.Flush(); err != nil {
		return "", wrapIO(ctx, "failed to send moss query", err)
	}

	url, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && url != "") {
		return "", wrapIO(ctx, "failed to read moss report url", err)
	}

	fmt.Fprint(w, "end\n")
	_ = w.Flush()

	return strings.TrimSpace(url), nil
}

func writeFile(w *bufio.Writer, id int, language string, f File) error {
	name := strings.ReplaceAll(strings.ReplaceAll(f.Name, "\\", "/"), " ", "_")
	if _, err := fmt.Fprintf(w, "file %d %s %d %s\n", id, language, len(f.Content), name); err != nil {
		return err
	}
	_, err := w.Write(f.Content)
	return err
}

// FetchReport downloads the report page at url.
func (c *Client) FetchReport(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create report request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch moss report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch moss report: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read moss report: %w", err)
	}
	return body, nil
}

// wrapIO reports deadline hits as the context error, the connection deadline
// may fire before the context notices.
func wrapIO(ctx context.Context, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", msg, ctxErr)
	}
	var netErr net.Error
	if _, ok := ctx.Deadline(); ok && errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", msg, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
