package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okra-platform/pojogen/internal/record"
)

// Inspect prints the record types inferred from the input: every field
// with its type and accessor pair
func (c *Controller) Inspect(ctx context.Context, o Overrides) error {
	cfg, root, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}
	if err := o.Apply(cfg, c.registry()); err != nil {
		return err
	}

	result, err := NewPipeline(cfg, root, c.registry(), c.out(), c.Logger).Infer()
	if err != nil {
		return err
	}
	return WriteTypes(c.out(), result.Types)
}

// WriteTypes renders types as aligned tables, one per type
func WriteTypes(w io.Writer, types []*record.Type) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, typ := range types {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "type %s\n", typ.Name())
		for _, f := range typ.Fields() {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Name, f.Type, f.Getter, f.Setter)
		}
		// Flush per type so each table aligns on its own
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
