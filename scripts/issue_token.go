//go:build ignore

package main

import (
	"flag"
	"fmt"
	"os"

	"storefront/internal/auth"

	"github.com/google/uuid"
)

// Issues a session token for a user, for exercising the API by hand:
//
//	JWT_SECRET=... go run scripts/issue_token.go -user <uuid>
func main() {
	userFlag := flag.String("user", "", "user id to issue the token for")
	remember := flag.Bool("remember", false, "issue a long-lived token")
	flag.Parse()

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -user: %v\n", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(os.Getenv("JWT_SECRET"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	token, err := tokens.Issue(userID, *remember)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
