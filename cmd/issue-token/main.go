package main

import (
	"flag"
	"fmt"
	"os"

	"go-asso-stock/pkg/config"
	"go-asso-stock/pkg/jwt"
)

// issue-token mints an identity token signed with the API's JWT settings,
// for local development without an identity provider.
func main() {
	email := flag.String("email", "", "email of the association (required)")
	name := flag.String("name", "", "association name, used on first contact")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpirationHours)
	token, err := tokens.GenerateToken(*email, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	fmt.Println(token)
}
