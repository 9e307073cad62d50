package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrNilClient                    = errors.New("redis client is nil")
	ErrEncodeSession                = errors.New("failed to encode session")
	ErrDecodeSession                = errors.New("failed to decode session")
	ErrNoDigestKey                  = errors.New("session store has no digest key")
	ErrEmptyCSRFID                  = errors.New("empty csrf id")
)
