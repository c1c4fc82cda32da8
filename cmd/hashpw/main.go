// Command hashpw prints the argon2id hash of a password read from stdin, for
// seeding the admin table.
//
//	echo -n 'secret' | hashpw
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"netclass-console/internal/auth"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "usage: echo -n <password> | hashpw")
		os.Exit(2)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "password must not be empty")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
