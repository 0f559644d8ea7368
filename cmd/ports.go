package cmd

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chrisuehlinger/domports/ports"
)

// portList is the output of the ports command.
type portList struct {
	Inbound  []string `json:"inbound" yaml:"inbound"`
	Outbound []string `json:"outbound" yaml:"outbound"`
}

func newPortList() portList {
	return portList{
		Inbound:  append([]string{}, ports.CommandNames...),
		Outbound: append([]string{"on<Event>"}, ports.EmissionNames...),
	}
}

func newPortsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List the inbound command ports and outbound emission ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := newPortList()
			w := cmd.OutOrStdout()
			switch output {
			case "text":
				fmt.Fprintln(w, "inbound:")
				fmt.Fprintln(w, "  "+strings.Join(list.Inbound, "\n  "))
				fmt.Fprintln(w, "outbound:")
				fmt.Fprintln(w, "  "+strings.Join(list.Outbound, "\n  "))
				return nil
			case "json":
				data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(list, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(data))
				return nil
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(list); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}
