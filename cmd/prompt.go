// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"crosscheck/internal/core"
	"crosscheck/internal/security"
)

// terminalPrompter asks for passwords on the terminal without echoing them
type terminalPrompter struct {
	fd  int
	out io.Writer
}

func (p *terminalPrompter) Credential(path string, attempt int) (string, error) {
	if attempt > 1 {
		fmt.Fprintf(p.out, "Incorrect password for %s (attempt %d)\n", filepath.Base(path), attempt)
	}
	fmt.Fprintf(p.out, "Password for %s (empty to skip): ", filepath.Base(path))
	password, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}

	secret := security.FromBytes(password)
	defer secret.Clear()
	if secret.Empty() {
		return "", core.ErrNoCredential
	}
	return secret.String(), nil
}

// newPrompter picks the credential source: the --password flag, an
// interactive prompt when stdin is a terminal, or none
func newPrompter(password string, stdin *os.File, out io.Writer) core.CredentialPrompter {
	if password != "" {
		return core.StaticCredential(password)
	}
	if stdin != nil && isTerminal(stdin) {
		return &terminalPrompter{fd: int(stdin.Fd()), out: out}
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
