package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sngm3741/pcb-intake-services/api/internal/auth"
)

// hashsecret prints the bcrypt hash to provision as ADMIN_PASSWORD_HASH.
// The secret is read from stdin so it stays out of shell history.
func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "read secret: %v\n", err)
		os.Exit(1)
	}
	secret := strings.TrimRight(line, "\r\n")

	hash, err := auth.HashSecret(secret, *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash secret: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
