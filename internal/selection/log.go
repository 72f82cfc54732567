package selection

import (
	"context"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"go.klb.dev/clipotp/internal/policy"
)

// logRequest logs a content request at INFO (who asked for what) and DEBUG
// (the raw atoms behind it). The payload is never part of either.
func logRequest(ctx context.Context, log *slog.Logger, ev xproto.SelectionRequestEvent, req policy.Request, property string) {
	log.Info("selection request",
		"requestor", req.Describe(),
		"title", req.Title,
		"target", req.Target,
		"property", property,
	)

	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	log.Debug("selection request atoms",
		"window", ev.Requestor,
		"selection", ev.Selection,
		"target", ev.Target,
		"property", ev.Property,
		"time", ev.Time,
	)
}
