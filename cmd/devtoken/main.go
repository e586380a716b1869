// Command devtoken prints a bearer token for local testing of the gateway.
//
//	JWT_SECRET=... go run ./cmd/devtoken -user 42 -name "Ada Lovelace"
package main

import (
	"dm-lab/auth"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	user := flag.String("user", "", "participant id carried by the token")
	name := flag.String("name", "", "display name")
	role := flag.String("role", "", "role shown to counterparts")
	avatar := flag.String("avatar", "", "avatar url")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	token, err := mint(os.Getenv("JWT_SECRET"), os.Getenv("JWT_ISSUER"), auth.Identity{
		ParticipantID: *user,
		DisplayName:   *name,
		Role:          *role,
		AvatarURL:     *avatar,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(token)
}

func mint(secret, issuer string, identity auth.Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}
	if err := auth.ValidateIdentity(identity); err != nil {
		return "", err
	}
	if issuer == "" {
		issuer = "dm-lab"
	}
	return auth.NewTokenIssuer(secret, issuer).GenerateToken(identity, ttl)
}
