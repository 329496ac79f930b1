// Package main provides a CLI tool for minting service tokens for the biogate
// API. Tokens are signed with the key the server would load from the same
// environment, which defaults to the development key.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	jwttoken "biogate/internal/jwt_token"
	"biogate/internal/platform/config"
	platformstrings "biogate/pkg/platform/strings"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	serviceCmd := flag.NewFlagSet("service", flag.ExitOnError)
	caller := serviceCmd.String("caller", "tokengen", "Calling service name (token subject)")
	scopes := serviceCmd.String("scopes", strings.Join(jwttoken.AllScopes, ","), "Comma-separated scopes")
	ttl := serviceCmd.Duration("ttl", 0, "Token time-to-live (defaults to the configured TOKEN_TTL)")
	jsonOut := serviceCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "service":
		serviceCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateServiceToken(*caller, *scopes, *ttl, *jsonOut)
	case "scopes":
		for _, s := range jwttoken.AllScopes {
			fmt.Println(s)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate service tokens for the biogate API

Reads JWT_SIGNING_KEY, TOKEN_TTL and BIOGATE_CONFIG like the server does.
Without them the development signing key is used; such tokens are rejected
by any server configured with its own key.

Usage:
  tokengen <command> [flags]

Commands:
  service   Generate a service token (JWT)
  scopes    List the scopes a token can carry

Examples:
  # Token with every scope
  tokengen service

  # Verification-only token for a named caller
  tokengen service -caller kiosk-gateway -scopes biometric:verify -ttl 1h

  # Output as JSON
  tokengen service -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generateServiceToken(caller, scopes string, ttl time.Duration, jsonOutput bool) {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}
	keyType := "configured"
	if cfg.Auth.JWTSigningKey == config.DevSigningKey {
		keyType = "dev"
	}

	scopeList := platformstrings.SplitList(scopes)
	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, ttl)
	svc.SetEnv(cfg.Server.Environment)

	token, jti, err := svc.GenerateServiceToken(context.Background(), caller, scopeList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "service_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub":   caller,
				"scope": scopeList,
				"iss":   cfg.Auth.Issuer,
				"aud":   cfg.Auth.Audience,
				"jti":   jti,
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Service Token (JWT)")
	fmt.Println("===================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Caller:      %s\n", caller)
	fmt.Printf("Scopes:      %v\n", scopeList)
	fmt.Printf("JTI:         %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println(`  curl -H "Authorization: Bearer <token>" -F user_id=u1 -F file=@print.png http://localhost:8080/enroll/fingerprint`)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
