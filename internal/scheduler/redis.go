package scheduler

import (
	"crypto/tls"
	"fmt"

	"kpi_coach_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// RedisConnOpt builds the asynq connection options from the configured
// Redis URL. Managed Redis offerings often terminate TLS with certificates
// the container image cannot verify; the insecure flag opts out of
// verification for those deployments only.
func RedisConnOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	connOpt := asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLSConfig != nil {
		tlsConfig := opts.TLSConfig.Clone()
		if cfg.GetRedisTLSInsecure() {
			tlsConfig.InsecureSkipVerify = true
		}
		connOpt.TLSConfig = tlsConfig
	} else if cfg.GetRedisTLSInsecure() {
		connOpt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return connOpt, nil
}
