package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"

	"session-lab/auth"
)

// hashpw reads a password on stdin and prints the ADMIN_PASSWORD_HASH value for it.
func main() {
	fmt.Fprint(os.Stderr, "Admin password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		color.Red.Println("no password read")
		os.Exit(2)
	}
	password := strings.TrimRight(line, "\r\n")

	if err := auth.ValidateNewPassword(auth.NewPasswordRequest{Password: password}); err != nil {
		color.Red.Printf("rejected: %v\n", err)
		os.Exit(2)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		color.Red.Printf("hashing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
