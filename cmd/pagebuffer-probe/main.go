// Command pagebuffer-probe points a single pagebuffer.Client at a
// running buffer endpoint and drains it to stdout, logging every status
// transition. It's a thin cmd/ binary for exercising Client end-to-end
// against a live endpoint, not a library.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/pagebuffer/pkg/logging"
	"github.com/Sternrassler/pagebuffer/pkg/pagebuffer"
)

func main() {
	var (
		endpoint    = flag.String("endpoint", "", "buffer endpoint URI, e.g. http://localhost:8080/v1/buffer/peer-1")
		maxSize     = flag.Int64("max-size", 16<<20, "X-Presto-Max-Size, in bytes")
		minErrorDur = flag.Duration("min-error-duration", 5*time.Second, "error-streak duration above which a transient failure becomes fatal")
		pretty      = flag.Bool("pretty", true, "use human-readable console logging instead of JSON")
	)
	flag.Parse()

	logging.Setup(logging.Config{Level: logging.LevelDebug, Pretty: *pretty, Output: os.Stderr})
	log := logging.NewLogger("pagebuffer-probe")

	if *endpoint == "" {
		log.Fatal().Msg("--endpoint is required")
	}
	uri, err := url.Parse(*endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid --endpoint")
	}

	done := make(chan struct{})
	sink := &probeCallback{log: log, done: done}

	client, err := pagebuffer.New(pagebuffer.Config{
		EndpointURI:      uri,
		MaxResponseSize:  *maxSize,
		MinErrorDuration: *minErrorDur,
		Callback:         sink,
		Deserializer:     newlineDeserializer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client.ScheduleRequest()

	select {
	case <-done:
	case <-ctx.Done():
		log.Info().Msg("interrupted, closing client")
		client.Close()
	}

	log.Info().Str("status", client.Status().String()).Msg("exiting")
}

// probeCallback prints each page to stdout and re-arms the client after
// every finished attempt, the way a real owner would.
type probeCallback struct {
	log  zerolog.Logger
	done chan struct{}
}

func (p *probeCallback) AddPage(client *pagebuffer.Client, page pagebuffer.Page) {
	os.Stdout.Write(page)
	os.Stdout.Write([]byte("\n"))
}

func (p *probeCallback) RequestComplete(client *pagebuffer.Client) {
	p.log.Debug().Str("status", client.Status().String()).Msg("request complete")
	client.ScheduleRequest()
}

func (p *probeCallback) ClientFinished(client *pagebuffer.Client) {
	p.log.Info().Msg("buffer drained, client finished")
	close(p.done)
}

func (p *probeCallback) ClientFailed(client *pagebuffer.Client, cause error) {
	p.log.Error().Err(cause).Msg("client failed, closing")
	client.Close()
	close(p.done)
}

// newlineDeserializer treats the response body as newline-delimited
// opaque records. The real page wire format is the owner's choice; this
// is just enough of a default deserializer to make the probe runnable
// against a test fixture server.
func newlineDeserializer(r io.Reader) ([]pagebuffer.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pagebuffer-probe: read body: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var pages []pagebuffer.Page
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				pages = append(pages, pagebuffer.Page(data[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(data) {
		pages = append(pages, pagebuffer.Page(data[start:]))
	}
	return pages, nil
}
