package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/nauticalab/propbind/internal/client"
	"github.com/nauticalab/propbind/pkg/config"
)

// DescribeRun prints the properties of a module as a table
func DescribeRun(ctx context.Context, opts CheckOptions) error {
	opts.defaults()

	var infos []config.PropertyInfo
	if opts.ServerURL != "" {
		c := client.NewClient(client.ClientConfig{BaseURL: opts.ServerURL, TokenPath: opts.TokenPath})
		resp, err := c.Describe(ctx, opts.Module)
		if err != nil {
			return err
		}
		infos = resp.Properties
	} else {
		var err error
		if infos, err = opts.Catalog.Describe(opts.Module); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(opts.Out, 0, 0, 3, ' ', 0)
	if opts.Verbose {
		fmt.Fprintln(w, "KEY\tTYPE\tDEFAULT\tNOTES\tCLASS\tDESCRIPTION")
	} else {
		fmt.Fprintln(w, "KEY\tTYPE\tDEFAULT\tNOTES")
	}
	for _, info := range infos {
		typ, def := info.Type, info.Default
		if info.Defunct {
			typ, def = "-", "-"
		}
		if def == "" {
			def = `""`
		}
		if opts.Verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", info.Key, typ, def, notes(info), info.Class, info.Description)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Key, typ, def, notes(info))
		}
	}
	return w.Flush()
}

func notes(info config.PropertyInfo) string {
	var parts []string
	if info.Defunct {
		parts = append(parts, "defunct")
	}
	if info.Deprecated {
		parts = append(parts, "deprecated")
	}
	if info.Secret {
		parts = append(parts, "secret")
	}
	if len(info.Legacy) > 0 {
		parts = append(parts, "replaces "+strings.Join(info.Legacy, ","))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}
