// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/pinvault/internal/gate"
	"github.com/toeirei/pinvault/internal/i18n"
	"github.com/toeirei/pinvault/internal/model"
)

// keyEnvVar is the variable handed to child processes by `pinvault run`.
const keyEnvVar = "OPENROUTER_API_KEY"

// maxPinAttempts bounds interactive PIN prompts per invocation.
const maxPinAttempts = 3

// readSecret prompts on stderr and reads a line without echo when stdin is
// a terminal, falling back to a plain line read for pipes and tests.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptUnlock asks for the PIN until the gate opens or attempts run out.
func promptUnlock(g *gate.Gate) (string, error) {
	if g.Mode() != model.StatePinEntry {
		return "", fmt.Errorf("%s", i18n.T("error.no_credentials"))
	}
	for attempt := 1; attempt <= maxPinAttempts; attempt++ {
		pin, err := readSecret(i18n.T("cli.enter_pin"))
		if err != nil {
			return "", err
		}
		key, err := g.SubmitPin(pin)
		if err == nil {
			return key, nil
		}
		fmt.Fprintln(os.Stderr, errText(err))
	}
	return "", fmt.Errorf("%s", i18n.T("error.wrong_pin"))
}

// errText localizes auth errors for CLI output.
func errText(err error) string {
	if ae, ok := err.(*model.AuthError); ok {
		return i18n.T("error." + string(ae.Kind))
	}
	return err.Error()
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register a provider API key without the TUI",
	Long: `Validates a provider API key against the balance endpoint and, on
success, stores it together with a freshly generated 4-digit PIN.

The PIN is printed exactly once and cannot be recovered later; resetting
the vault is the only way out of a lost PIN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := buildGate(nil)
		if g.Mode() != model.StateFirstRun {
			return fmt.Errorf("vault already configured; run 'pinvault reset' first")
		}

		key, err := readSecret(i18n.T("cli.enter_key"))
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("%s", i18n.T("error.empty_key"))
		}

		issued, err := g.SubmitAPIKey(context.Background(), key)
		if err != nil {
			return fmt.Errorf("%s", errText(err))
		}
		g.ConfirmPinIssued()

		fmt.Println(i18n.Tf("cli.setup_done", map[string]any{"PIN": issued.PIN}))
		return nil
	},
}

var printKey bool

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the vault with your PIN",
	Long: `Prompts for the PIN and verifies it against the stored digest. With
--print-key the unlocked secret is written to stdout for scripting; treat
that output accordingly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := buildGate(nil)
		key, err := promptUnlock(g)
		if err != nil {
			return err
		}
		if printKey {
			fmt.Println(key)
			return nil
		}
		fmt.Println(i18n.T("cli.unlock_ok"))
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [--] command [args...]",
	Short: "Unlock the vault and run a command with the key in its environment",
	Long: fmt.Sprintf(`Prompts for the PIN and, on success, executes the given command with the
unlocked key exported as %s. This is the supported way to hand
the secret to a host application.`, keyEnvVar),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := buildGate(nil)
		key, err := promptUnlock(g)
		if err != nil {
			return err
		}

		child := exec.Command(args[0], args[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		child.Env = append(os.Environ(), keyEnvVar+"="+key)
		return child.Run()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the vault is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := buildGate(nil)
		if g.Mode() == model.StatePinEntry {
			fmt.Println(i18n.T("cli.status_configured"))
		} else {
			fmt.Println(i18n.T("cli.status_empty"))
		}

		if a := openAudit(); a != nil {
			if n, err := a.Count(); err == nil {
				fmt.Println(i18n.Tf("cli.status_audit_ok", map[string]any{"Count": n}))
			} else {
				fmt.Println(i18n.Tf("cli.status_audit_err", map[string]any{"Error": err.Error()}))
			}
		}
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the stored key and PIN",
	Long: `Clears the credential record, returning the vault to its first-run
state. The stored key cannot be recovered afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			fmt.Fprint(os.Stderr, i18n.T("cli.reset_confirm"))
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				fmt.Println(i18n.T("cli.reset_aborted"))
				return nil
			}
		}

		g := buildGate(nil)
		if err := g.Reset(); err != nil {
			return fmt.Errorf("%s", errText(err))
		}
		fmt.Println(i18n.T("cli.reset_done"))
		return nil
	},
}

func init() {
	unlockCmd.Flags().BoolVar(&printKey, "print-key", false, "print the unlocked key to stdout")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
}
