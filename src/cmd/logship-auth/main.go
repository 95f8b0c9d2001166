// FILE: logship/src/cmd/logship-auth/main.go
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/sender"

	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("logship-auth", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		genToken  = fs.Bool("t", false, "Generate random bearer token")
		genSecret = fs.Bool("s", false, "Generate random JWT signing secret")
		signJWT   = fs.Bool("jwt", false, "Sign a test JWT (secret is prompted if -secret is empty)")
		secret    = fs.String("secret", "", "JWT signing secret")
		issuer    = fs.String("iss", "", "JWT issuer")
		audience  = fs.String("aud", "", "JWT audience")
		ttl       = fs.Int64("ttl", 300, "JWT lifetime in seconds")
		length    = fs.Int("l", 32, "Random value length in bytes")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "LogShip Credential Utility\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  Generate bearer token: logship-auth -t [-l <length>]\n")
		fmt.Fprintf(stderr, "  Generate JWT secret:   logship-auth -s [-l <length>]\n")
		fmt.Fprintf(stderr, "  Sign a test JWT:       logship-auth -jwt [-secret <s>] [-iss <i>] [-aud <a>] [-ttl <sec>]\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	switch {
	case *genToken:
		return printRandom(stdout, stderr, *length, "token", "[http.auth]\ntype = \"token\"")
	case *genSecret:
		return printRandom(stdout, stderr, *length, "jwt_secret", "[http.auth]\ntype = \"jwt\"")
	case *signJWT:
		s := *secret
		if s == "" {
			var err error
			if s, err = promptSecret(stderr, "Enter JWT secret: "); err != nil {
				fmt.Fprintf(stderr, "Error reading secret: %v\n", err)
				return 1
			}
		}
		signed, err := sender.SignJWT(config.AuthConfig{
			Type:        "jwt",
			JWTSecret:   s,
			JWTIssuer:   *issuer,
			JWTAudience: *audience,
			JWTTTLSec:   *ttl,
		}, time.Now())
		if err != nil {
			fmt.Fprintf(stderr, "Error signing token: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Authorization: Bearer %s\n", signed)
		return 0
	default:
		fs.Usage()
		return 2
	}
}

func printRandom(stdout, stderr io.Writer, length int, key, section string) int {
	if length < 16 {
		fmt.Fprintf(stderr, "Warning: length < 16 bytes is insecure\n")
	}
	if length <= 0 {
		fmt.Fprintf(stderr, "Error: length must be positive\n")
		return 1
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(stderr, "Error generating random value: %v\n", err)
		return 1
	}
	b64 := base64.RawURLEncoding.EncodeToString(buf)

	fmt.Fprintf(stdout, "\n# Add to logship.toml:\n")
	fmt.Fprintf(stdout, "%s\n%s = \"%s\"\n", section, key, b64)
	fmt.Fprintf(stdout, "\n# Or set %s\n", config.EnvName("http.auth."+key))
	return 0
}

func promptSecret(stderr io.Writer, prompt string) (string, error) {
	fmt.Fprint(stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
