package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"attendance-backend/services/attendance"

	"golang.org/x/term"
)

const (
	usernameEnv = "MITS_USERNAME"
	passwordEnv = "MITS_PASSWORD"
)

// promptCredential asks for whatever MITS_USERNAME and MITS_PASSWORD (which
// may come from .env) do not provide. The password is read without echo when
// stdin is a terminal.
func promptCredential(in *os.File, out io.Writer) (attendance.Credential, error) {
	reader := bufio.NewReader(in)

	username := os.Getenv(usernameEnv)
	if username == "" {
		fmt.Fprint(out, "Roll number: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return attendance.Credential{}, fmt.Errorf("read roll number: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password := os.Getenv(passwordEnv)
	if password == "" {
		fmt.Fprint(out, "Password: ")
		if term.IsTerminal(int(in.Fd())) {
			secret, err := term.ReadPassword(int(in.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return attendance.Credential{}, fmt.Errorf("read password: %w", err)
			}
			password = string(secret)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return attendance.Credential{}, fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
	}

	cred := attendance.Credential{Identifier: strings.TrimSpace(username), Secret: password}
	return cred, cred.Validate()
}
