// Package pkg provides the libraries behind plotmsg.
//
// # Overview
//
// plotmsg builds plot descriptions in one process and ships them to a
// separate viewer over a publish socket. A figure is an ordered list of
// traces (one plotted series each, described by keyword arguments) plus
// layout commands applied after the traces are drawn. The pkg directory is
// organized into four areas:
//
//  1. [dict], [plot] - In-memory model (dictionaries, traces, figures)
//  2. [wire] - Protobuf encoding of figures and bare dictionaries
//  3. [transport], [archive] - Publishing, subscribing and recording messages
//  4. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through plotmsg:
//
//	Go values (scalars, slices, nested maps)
//	         ↓
//	    [dict] package (Value, Dictionary, Proxy)
//	         ↓
//	    [plot] package (Trace, Figure)
//	         ↓
//	    [wire] package (MessageContainer bytes)
//	         ↓
//	    [transport] package (ZeroMQ or MQTT publish)
//
// # Quick Start
//
// Build a scatter trace and publish it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/plotmsg/pkg/dict"
//	    "github.com/matzehuels/plotmsg/pkg/plot"
//	    "github.com/matzehuels/plotmsg/pkg/transport"
//	)
//
//	// 1. Open a publisher (binds lazily on the first send)
//	pub := transport.NewPublisher(transport.NewZMQPubSocket(ctx), transport.Options{})
//	defer pub.Close()
//
//	// 2. Build the figure
//	fig := plot.New("t1")
//	fig.AddTraceOf(plot.GraphObjects, "Scatter", dict.New(
//	    "x", []int{1, 2, 3},
//	    "mode", "markers",
//	))
//	fig.AddCommand("update_layout", dict.New("title", "demo"))
//
//	// 3. Send (the figure is emptied on success)
//	err := fig.Send(ctx, pub)
//
// # Main Packages
//
// [dict] - The recursively typed key-value container. Values hold scalars,
// homogeneous series, null-gapped "any" series or nested dictionaries.
// Nested slots are written through [dict.Proxy] with auto-vivification.
//
// [plot] - Traces and figures. Adding a trace or a command consumes its
// kwargs; sending consumes the figure.
//
// [templates] - Ready-styled traces for common charts (scatter, contour,
// heatmap, edges with null gaps, vector fields).
//
// [wire] - Deterministic protobuf encoding and a tolerant decoder for the
// PlotMsgProto schema, plus BLAKE3 content digests.
//
// [transport] - Publish and subscribe sockets over ZeroMQ and MQTT, the
// lazily initialized [transport.Publisher] and an in-memory recorder.
//
// [archive] - Content-addressed stores for received messages (filesystem,
// SQLite, null).
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Encode, publish and archive hooks with no-op defaults.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/wire/...     # Specific package
//	go test -run Example       # Examples only
//
// [dict]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/dict
// [dict.Proxy]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/dict#Proxy
// [plot]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/plot
// [templates]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/templates
// [wire]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/wire
// [transport]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/transport
// [transport.Publisher]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/transport#Publisher
// [archive]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/archive
// [errors]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/plotmsg/pkg/buildinfo
package pkg
