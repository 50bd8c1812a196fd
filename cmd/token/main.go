// Command token mints an access token for a learner. It is meant for local
// development and operator scripts.
//
// Usage:
//
//	token --learner=l-42
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/auth"
	"github.com/heartmarshall/tutor-backend/internal/config"
)

func main() {
	learner := flag.String("learner", "", "learner id to embed as the token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to AUTH_ACCESS_TOKEN_TTL")
	flag.Parse()

	if *learner == "" {
		fmt.Fprintln(os.Stderr, "Usage: token --learner=ID [--ttl=24h]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lifetime := cfg.Auth.AccessTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, expires, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, lifetime).GenerateAccessToken(*learner)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expires.Format(time.RFC3339))
}
