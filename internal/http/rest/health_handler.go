package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/bwise1/complaint_portal/util/values"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func (api *API) Health(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	return respondWithData("ok", values.Success, map[string]string{"status": "ok"})
}

// Ready reports whether the database answers.
func (api *API) Ready(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	if api.Pinger == nil {
		return respondWithData("ready", values.Success, map[string]string{"database": "skipped"})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := api.Pinger.Ping(ctx); err != nil {
		return respondWithError(err, "database unavailable", values.Error, nil)
	}
	return respondWithData("ready", values.Success, map[string]string{"database": "ok"})
}
