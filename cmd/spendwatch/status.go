package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// newStatusCmd is the poller side of the protocol: dial a running daemon,
// send STATUS, print the reply line.
func newStatusCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running daemon and print its verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.DialTimeout("tcp", addr, timeout)
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer func() { _ = conn.Close() }()

			_ = conn.SetDeadline(time.Now().Add(timeout))

			if _, err := fmt.Fprint(conn, "STATUS\n"); err != nil {
				return fmt.Errorf("send command: %w", err)
			}
			reply, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read reply: %w", err)
			}

			fmt.Println(strings.TrimSpace(reply))
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:5555", "daemon address")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "dial and exchange timeout")
	return cmd
}
