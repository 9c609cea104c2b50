package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ferretcode/lovebug/internal/cache"
	pkgtypes "github.com/ferretcode/lovebug/pkg/types"
)

const (
	Version     = "1.0.0"
	pingTimeout = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SchedulerState interface {
	Running() bool
}

type ConnectionCounter interface {
	ConnectionCount() int
}

type Banner struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Version   string    `json:"version"`
}

type Health struct {
	Api              string    `json:"api"`
	Mongodb          string    `json:"mongodb"`
	Redis            string    `json:"redis"`
	Scheduler        string    `json:"scheduler"`
	WebsocketClients int       `json:"websocket_clients"`
	CorsOrigins      string    `json:"cors_origins"`
	Environment      string    `json:"environment"`
	Timestamp        time.Time `json:"timestamp"`
}

type Dashboard struct {
	config    *pkgtypes.LovebugConfig
	store     Pinger
	cache     Pinger
	scheduler SchedulerState
	hub       ConnectionCounter
	now       func() time.Time
}

func New(config *pkgtypes.LovebugConfig, store, cache Pinger, scheduler SchedulerState, hub ConnectionCounter) *Dashboard {
	return &Dashboard{
		config:    config,
		store:     store,
		cache:     cache,
		scheduler: scheduler,
		hub:       hub,
		now:       time.Now,
	}
}

func (d *Dashboard) Banner() Banner {
	return Banner{
		Message:   "러브버그 맵 API가 실행 중입니다",
		Timestamp: d.now().UTC(),
		Status:    "healthy",
		Version:   Version,
	}
}

// Health never fails; dependency errors are reported in the payload.
func (d *Dashboard) Health(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	scheduler := "stopped"
	if d.scheduler.Running() {
		scheduler = "running"
	}

	return Health{
		Api:              "running",
		Mongodb:          pingStatus(ctx, d.store),
		Redis:            pingStatus(ctx, d.cache),
		Scheduler:        scheduler,
		WebsocketClients: d.hub.ConnectionCount(),
		CorsOrigins:      strings.Join(d.config.AllowedOrigins, ","),
		Environment:      d.config.Environment,
		Timestamp:        d.now().UTC(),
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	err := p.Ping(ctx)
	switch {
	case err == nil:
		return "connected"
	case errors.Is(err, cache.ErrDisabled):
		return "disabled"
	}
	return "error: " + err.Error()
}
