// Package hostlog adapts zap to the host engine's log.
//
// The host's logging entry point is printf-shaped; every encoded line
// travels as a %s data argument under a fixed format so log content can
// never be interpreted as a format string.
package hostlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/domekit/domekit/hostapi"
)

type hostWriter struct {
	core *hostapi.CoreAPIv0
	ctx  hostapi.Context
}

func (w hostWriter) Write(p []byte) (int, error) {
	w.core.Log(w.ctx, "%s", string(p))
	return len(p), nil
}

// New builds a logger writing through the given core table. The host log
// timestamps lines itself, so the encoder only carries level and message.
func New(core *hostapi.CoreAPIv0, ctx hostapi.Context) *zap.Logger {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	enc := zapcore.NewConsoleEncoder(cfg)
	sink := zapcore.Lock(zapcore.AddSync(hostWriter{core: core, ctx: ctx}))
	return zap.New(zapcore.NewCore(enc, sink, zapcore.InfoLevel))
}
