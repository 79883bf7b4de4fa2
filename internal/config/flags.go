package config

import (
	"flag"
	"os"
	"time"

	"github.com/psergee/authd/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-k string   Redis address
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-g int      register token validity, minutes
//	-f int      forgot-password token validity, minutes
//
// Storage and mail settings are JSON-file only. Arguments are filtered with
// flagx.FilterArgs first so unrelated flags do not break parsing. Duration
// flags are integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-s", "-t", "-r", "-g", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "k", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMins := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	refreshMins := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (minutes)")
	registerMins := fs.Int("g", int(config.RegisterTokenValidityDuration.Minutes()), "register token validity (minutes)")
	forgotMins := fs.Int("f", int(config.ForgotPwdTokenValidityDuration.Minutes()), "forgot-password token validity (minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessMins) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshMins) * time.Minute
	config.RegisterTokenValidityDuration = time.Duration(*registerMins) * time.Minute
	config.ForgotPwdTokenValidityDuration = time.Duration(*forgotMins) * time.Minute
}
