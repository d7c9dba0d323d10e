package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/logging"
)

func editCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <resource> <id> field=value...",
		Short: "Update fields of one record",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ops, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			fields, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}

			raw, err := c.client.Update(cmd.Context(), ops.endpoint, args[1], fields)
			ev := journal.Event{Kind: journal.KindEdit, Resource: ops.name, Count: len(fields), Msg: "id " + args[1]}
			if err != nil {
				ev.Err = err.Error()
				c.journal.Emit(ev)
				return err
			}
			c.journal.Emit(ev)
			logging.Info("edited", "resource", ops.name, "id", args[1], "fields", len(fields))

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, raw, "", "  "); err != nil {
				pretty.Reset()
				pretty.Write(raw)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}
}

// parseAssignments turns field=value arguments into a patch body. Values
// that parse as JSON scalars (numbers, true, false, null) keep their type;
// everything else is a string.
func parseAssignments(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("bad assignment %q: want field=value", arg)
		}
		fields[name] = scalar(value)
	}
	return fields, nil
}

func scalar(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case float64, bool, nil:
			return json.RawMessage(s)
		}
	}
	return s
}
