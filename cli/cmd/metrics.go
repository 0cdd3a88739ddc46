package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ardnew/criteria/observe"
)

// reportMetrics writes the totals collected by rec to w and shuts rec down.
func reportMetrics(ctx context.Context, rec *observe.Recorder, w io.Writer) error {
	rep, err := rec.Collect(ctx)
	if err == nil {
		_, err = fmt.Fprintln(w, rep)
	}

	return errors.Join(err, rec.Shutdown(ctx))
}
