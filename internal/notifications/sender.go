package notifications

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"sync"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

const sendTimeout = 10 * time.Second

// Notifier is the platform notification capability injected into the
// scheduler. Implementations must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// Sender delivers reminders through shoutrrr service URLs (ntfy, gotify,
// telegram, ...). Nil-safe: when not configured, sends are logged no-ops
// so the rest of the pipeline keeps exercising its state machine.
type Sender struct {
	urls   []string
	logger *slog.Logger

	mu     sync.Mutex
	router *router.ServiceRouter
}

// NewSender creates a sender from shoutrrr URLs. Returns nil when no
// URLs are configured (push delivery disabled).
func NewSender(urls []string, logger *slog.Logger) *Sender {
	if len(urls) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{urls: urls, logger: logger}
}

// connect builds the shoutrrr router on first use, validating the URLs.
func (s *Sender) connect() (*router.ServiceRouter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.router != nil {
		return s.router, nil
	}
	r, err := shoutrrr.CreateSender(s.urls...)
	if err != nil {
		return nil, fmt.Errorf("create shoutrrr sender: %w", err)
	}
	r.Timeout = sendTimeout
	r.SetLogger(stdlog.New(io.Discard, "", 0))
	s.router = r
	return r, nil
}

func (s *Sender) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.router != nil
}

// Send delivers one notification to every configured URL. Returns the
// first delivery error; partial failures count as failure.
func (s *Sender) Send(ctx context.Context, title, body string) error {
	if s == nil {
		// Not configured; log so single-instance setups still see reminders.
		slog.Default().Info("Reminder (push disabled)", "title", title, "body", body)
		return nil
	}
	// shoutrrr sends are context-free and bounded by the router timeout;
	// cancellation can only be honored before handing off.
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := s.connect()
	if err != nil {
		return err
	}

	params := stypes.Params{}
	params.SetTitle(title)

	for _, err := range r.Send(body, &params) {
		if err != nil {
			return fmt.Errorf("shoutrrr send: %w", err)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Transport-backed permission API
// --------------------------------------------------------------------------

// TransportPermission adapts the push transport to the PermissionAPI the
// gatekeeper expects. "Asking" means validating the configured URLs by
// building the shoutrrr router. A nil sender is the log-delivery
// fallback, which is always available, so it reports granted.
type TransportPermission struct {
	sender *Sender
}

// NewTransportPermission wraps a (possibly nil) sender.
func NewTransportPermission(sender *Sender) *TransportPermission {
	return &TransportPermission{sender: sender}
}

func (t *TransportPermission) Current(context.Context) (PermissionState, error) {
	if t.sender == nil {
		return PermissionGranted, nil
	}
	if t.sender.connected() {
		return PermissionGranted, nil
	}
	return PermissionDefault, nil
}

func (t *TransportPermission) Request(context.Context) (PermissionState, error) {
	if t.sender == nil {
		return PermissionGranted, nil
	}
	if _, err := t.sender.connect(); err != nil {
		return PermissionDefault, err
	}
	return PermissionGranted, nil
}
