package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/antiforgery/core/forgery"
)

var errMissingFlag = errors.New("missing required flag")

// staticSession is a session known only by its id.
type staticSession struct {
	id     string
	csrfID string
}

func (s *staticSession) SessionID() string   { return s.id }
func (s *staticSession) CSRFID() string      { return s.csrfID }
func (s *staticSession) SetCSRFID(id string) { s.csrfID = id }

func newTokenCmd() *cobra.Command {
	var (
		secret    string
		sessionID string
		digest    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the authenticity token for a session",
		Long: `Print the token a secret-keyed group expects from the given session.

Compare the output with the token a client submitted to tell a stale page
from a misconfigured secret or digest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case secret == "":
				return fmt.Errorf("%w: --secret", errMissingFlag)
			case sessionID == "":
				return fmt.Errorf("%w: --session", errMissingFlag)
			}

			token, err := forgery.ComputeToken(&staticSession{id: sessionID}, nil, forgery.ProtectionConfig{
				Enabled: true,
				Secret:  secret,
				Digest:  digest,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret of the action group")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id the token is bound to")
	cmd.Flags().StringVar(&digest, "digest", forgery.DefaultDigest,
		"digest algorithm ("+strings.Join(forgery.Digests(), ", ")+")")
	return cmd
}

func newDigestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digests",
		Short: "List supported digest algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range forgery.Digests() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
