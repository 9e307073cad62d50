// Package config loads env-tagged structs from the environment, reading a
// .env file first when one exists. Parsing is done by caarlos0/env.
//
//	var cfg forgery.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	protector, err := forgery.NewFromConfig(cfg)
//
// Each struct type is parsed once and cached, so later Load calls for the
// same type return the first result. Types are cached independently:
//
//	config.MustLoad(&server.Config{})
//	config.MustLoad(&redis.Config{})
//
// Nested structs without a prefix share the flat namespace, which is how
// app/simple.Config composes the configs of every package.
package config
