package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tutor-hub/internal/repository"
)

// StartOTPCleanup programa el barrido de codigos de reset expirados. Postgres
// no expira filas solo, asi que este job cumple el rol del TTL del store.
func StartOTPCleanup(spec string, otps repository.OTPRepository, logger *zap.Logger) (*cron.Cron, error) {
	if spec == "" {
		spec = "@every 1m"
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		removed, err := otps.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			if logger != nil {
				logger.Warn("otp cleanup failed", zap.Error(err))
			}
			return
		}
		if removed > 0 && logger != nil {
			logger.Debug("otp cleanup", zap.Int64("removed", removed))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
