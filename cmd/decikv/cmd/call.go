package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/client"
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call <method> [params-json]",
	Short: "Call a method on a running server",
	Long: `Call a protocol method on a running decikv server over UDP.

Params are passed as one JSON object matching the method. When no
params are given an empty object is sent. The address defaults to the
configured UDP listener.

Examples:
  decikv call create '{"key":"balance","value":"100.50"}'
  decikv call read '{"key":"balance"}' --addr 127.0.0.1:9999
  decikv call add '{"a":"0.1","b":"0.2"}'`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		method := args[0]

		params := json.RawMessage(`{}`)
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				fmt.Printf("Error: params must be valid JSON\n")
				return
			}
			params = json.RawMessage(args[1])
		}

		// Get config from context
		cfg, ok := configFromContext(cmd)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = fmt.Sprintf("%s:%d", cfg.UDP.Bind, cfg.UDP.Port)
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")

		cl, err := client.New(addr, client.WithCallTimeout(timeout))
		if err != nil {
			fmt.Printf("Error connecting to %s: %v\n", addr, err)
			return
		}
		defer cl.Close()

		resp, err := cl.Call(cmd.Context(), method, params)
		if err != nil {
			fmt.Printf("Error calling %s: %v\n", method, err)
			return
		}

		if resp.Error != nil {
			fmt.Printf("Error %d: %s\n", resp.Error.Code, resp.Error.Message)
			return
		}
		if resp.Result != nil {
			fmt.Printf("%s\n", *resp.Result)
			return
		}
		fmt.Printf("OK\n")
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().String("addr", "", "Server address host:port (default: from config)")
	callCmd.Flags().Duration("timeout", client.DefaultCallTimeout, "Per-call timeout")
}
