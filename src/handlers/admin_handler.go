package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	appdb "mpdee-accounts/src/db"
	"mpdee-accounts/src/util"
)

func ClearCache(cache *appdb.Cache, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := cache.ClearAll()
		log.Info().Int("keys", n).Msg("Cleared listing cache")
		util.WriteJSON(w, http.StatusOK, map[string]int{"cleared": n})
	}
}

// Health answers 200 while ping succeeds. A nil ping always succeeds.
func Health(ping func(ctx context.Context) error, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				util.WriteError(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
