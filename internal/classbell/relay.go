package classbell

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/notify"
)

// RelayChanges reloads the user named by each value received on changes so
// that writes from other processes reach this process's subscribers. It
// returns when ctx is done or changes is closed.
func RelayChanges(ctx context.Context, changes <-chan string, store *Store, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case userID, ok := <-changes:
			if !ok {
				return
			}

			changed, err := store.Reload(ctx, userID)
			var corrupt *notify.CorruptDataError
			switch {
			case errors.As(err, &corrupt):
				log.Warn().Err(err).Str("user_id", userID).Msg("ignoring corrupt notification log")
			case err != nil:
				log.Error().Err(err).Str("user_id", userID).Msg("reload failed")
			case changed:
				log.Debug().Str("user_id", userID).Msg("notification log reloaded")
			}
		}
	}
}
