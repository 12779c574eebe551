package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwise1/complaint_portal/config"
	deps "github.com/bwise1/complaint_portal/internal/debs"
	"github.com/bwise1/complaint_portal/internal/events"
	"github.com/bwise1/complaint_portal/internal/filterstate"
	"github.com/bwise1/complaint_portal/internal/http/google"
	"github.com/bwise1/complaint_portal/internal/vote"
	"github.com/bwise1/complaint_portal/util/storage"
	"github.com/bwise1/complaint_portal/util/values"
	"github.com/bwise1/complaint_portal/util/websockets"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

type API struct {
	Server *http.Server
	Config *config.Config
	Deps   *deps.Dependencies

	Store     Store
	Votes     *vote.Caster
	Filters   *filterstate.Store
	Images    storage.ImageStore
	Events    events.Publisher
	WebSocket *websockets.WebSocketManager
	Google    google.UserInfoFetcher
	Pinger    Pinger

	submitLimiter *IPRateLimiter
	signInLimiter *IPRateLimiter
}

// Init wires the API from its dependency bag. Fields already set are
// kept, which lets tests substitute fakes.
func (api *API) Init() {
	if api.Deps != nil {
		if api.Store == nil {
			api.Store = NewRepo(api.Deps.DB)
		}
		if api.Images == nil && api.Deps.Images != nil {
			api.Images = api.Deps.Images
		}
		if api.Events == nil {
			api.Events = api.Deps.Events
		}
		if api.WebSocket == nil {
			api.WebSocket = api.Deps.WebSocket
		}
		if api.Google == nil {
			api.Google = api.Deps.Google
		}
		if api.Pinger == nil {
			api.Pinger = api.Deps.DB
		}
	}
	if api.Filters == nil {
		api.Filters = filterstate.New()
	}
	if api.Votes == nil {
		var guard vote.Guard
		if api.Deps != nil {
			guard = api.Deps.VoteGuard
		}
		api.Votes = vote.NewCaster(api.Store, guard, api)
	}

	perMinute := 6
	burst := 3
	if api.Config != nil && api.Config.SubmitRatePerMin > 0 {
		perMinute = api.Config.SubmitRatePerMin
		burst = max(api.Config.SubmitBurst, 1)
	}
	api.submitLimiter = NewIPRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
	api.signInLimiter = NewIPRateLimiter(rate.Every(6*time.Second), 5)
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/health", Handler(api.Health))
	mux.Method(http.MethodGet, "/ready", Handler(api.Ready))
	if api.WebSocket != nil {
		mux.Get("/ws", api.WebSocket.HandleConnections)
	}

	mux.Group(func(r chi.Router) {
		r.Use(RequestTracing)
		r.Mount("/auth", api.AuthRoutes())
		r.Mount("/categories", api.CategoryRoutes())
		r.Mount("/sub-categories", api.SubCategoryRoutes())
		r.Mount("/complaints", api.ComplaintRoutes())
		r.Mount("/admin", api.AdminRoutes())
		r.Mount("/filters", api.FilterRoutes())
	})

	return mux
}

// ComplaintsChanged fans a confirmed mutation out to websocket clients
// and the event stream.
func (api *API) ComplaintsChanged(ctx context.Context, ticketID uuid.UUID, reason string) {
	api.publish(ctx, events.VoteChanged, ticketID, reason, nil)
}

func (api *API) publish(ctx context.Context, event string, ticketID uuid.UUID, reason string, payload map[string]any) {
	if api.WebSocket != nil {
		api.WebSocket.ComplaintsChanged(ctx, ticketID, reason)
	}
	if api.Events != nil {
		if payload == nil {
			payload = map[string]any{}
		}
		payload["reason"] = reason
		api.Events.Publish(context.WithoutCancel(ctx), event, ticketID, payload)
	}
}

func (a *API) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
	defer cancel()

	if a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}
