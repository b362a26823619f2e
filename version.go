package netcore

import (
	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/walkon/netcore/internal/logging"
)

// validateHandlerVersion parses raw as semver purely for diagnostics: a
// Handler's advertised version never gates bind, it only gets logged so
// an operator can correlate a deployed handler build with core logs.
func validateHandlerVersion(raw string) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		logging.Warnf("handler reported unparseable version",
			zap.String("version", raw), zap.Error(err))
		return
	}
	logging.Infof("handler version", zap.String("version", v.String()))
}
