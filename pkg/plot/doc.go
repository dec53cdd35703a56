// Package plot assembles Figures out of Traces and Commands and sends them
// to a renderer.
//
// A Trace pairs a renderer function (for example graph_objects "Scatter")
// with a [dict.Dictionary] of keyword arguments. A Figure collects Traces in
// render order plus Commands applied after all traces are loaded, and
// carries a uuid the renderer uses to tell figures apart.
//
// # Ownership
//
// Dictionaries handed to NewTrace, AddTrace, AddCommand and SetTraceKwargs
// are consumed: their contents move into the Trace or Figure and the
// argument is left empty. Copy and Trace.Clone are the only ways to
// duplicate data.
//
// # Sending
//
// Send encodes the Figure, publishes it with one call to a [Sender] and then
// clears the traces and commands, keeping the uuid:
//
//	fig := plot.New("t1")
//	fig.AddTraceOf(plot.GraphObjects, "Scatter", dict.New(
//	    "x", []int{1, 2, 3},
//	    "mode", "markers",
//	))
//	if err := fig.Send(ctx, pub); err != nil {
//	    return err
//	}
//	// fig.Len() == 0
//
// A failed send leaves the Figure as it was. Nothing is retried.
package plot
