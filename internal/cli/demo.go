package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
	"github.com/matzehuels/plotmsg/pkg/templates"
)

// demos maps a demo name to the figure it publishes. Every figure uses the
// demo name as its uuid so repeated runs update the same window.
var demos = map[string]func() (*plot.Figure, error){
	"scatter": demoScatter,
	"graph":   demoGraph,
	"contour": demoContour,
	"heatmap": demoHeatmap,
	"boxplot": demoBoxplot,
	"quiver":  demoQuiver,
	"cone":    demoCone,
}

// demoNames returns the demo names in order.
func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// demoOptions holds the flags of the demo command.
type demoOptions struct {
	transportFlags
	delay time.Duration
	list  bool
}

// demoCommand creates the demo command for publishing template figures.
func (c *CLI) demoCommand() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo [NAME...]",
		Short: "Publish example figures",
		Long: fmt.Sprintf(`Publish figures built from the trace templates. Without names every demo
is published.

Available demos: %s`, strings.Join(demoNames(), ", ")),
		ValidArgs: demoNames(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				for _, name := range demoNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return c.runDemo(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	opts.transportFlags.register(cmd)
	cmd.Flags().DurationVar(&opts.delay, "delay", 200*time.Millisecond, "pause between figures")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list the available demos")

	return cmd
}

func (c *CLI) runDemo(ctx context.Context, w io.Writer, names []string, opts demoOptions) error {
	if len(names) == 0 {
		names = demoNames()
	}

	figs := make([]*plot.Figure, 0, len(names))
	for _, name := range names {
		build, ok := demos[name]
		if !ok {
			return perr.New(perr.ErrCodeInvalidInput, "unknown demo %q", name)
		}
		fig, err := build()
		if err != nil {
			return perr.Wrap(perr.ErrCodeInternal, err, "build demo %s", name)
		}
		figs = append(figs, fig)
	}

	cfg, err := opts.apply(c.cfg)
	if err != nil {
		return err
	}
	sender, err := c.newCaptureSender(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer sender.Close()

	prog := newProgress(loggerFromContext(ctx))
	for i, fig := range figs {
		if i > 0 && opts.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.delay):
			}
		}
		if err := fig.Send(ctx, sender); err != nil {
			return err
		}
		sum, _, err := summarize(ctx, sender.last)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s\n", styleIconSuccess.Render(iconSuccess), sum.render())
	}
	prog.done(fmt.Sprintf("Published %s", plural(len(figs), "demo figure")))
	return nil
}

// linspace returns n evenly spaced values from lo to hi.
func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return xs
}

func demoScatter() (*plot.Figure, error) {
	fig := plot.New("scatter")
	x := linspace(0, 2*math.Pi, 50)
	sin, cos := make([]float64, len(x)), make([]float64, len(x))
	for i, v := range x {
		sin[i], cos[i] = math.Sin(v), math.Cos(v)
	}
	fig.AddTrace(templates.ScatterWithColour(x, sin, cos))
	tr := templates.Scatter(x, cos)
	tr.At("name").Set("cos")
	fig.AddTrace(tr)
	if err := fig.AddKwargs(-1, "line_dash", "dot"); err != nil {
		return nil, err
	}
	fig.AddCommand("update_layout", dict.New("title", "sin and cos"))
	return fig, nil
}

// demoGraph draws a ring of vertices with chords, exercising null gaps.
func demoGraph() (*plot.Figure, error) {
	const n = 8
	xs, ys := make([]float64, n), make([]float64, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / n
		xs[i], ys[i] = math.Cos(a), math.Sin(a)
	}
	var ex, ey [][2]float64
	for i := range n {
		for _, j := range []int{(i + 1) % n, (i + 3) % n} {
			ex = append(ex, [2]float64{xs[i], xs[j]})
			ey = append(ey, [2]float64{ys[i], ys[j]})
		}
	}

	fig := plot.New("graph")
	edges, err := templates.Edges2D(ex, ey)
	if err != nil {
		return nil, err
	}
	fig.AddTrace(edges)

	degree := make([]int, n)
	for i := range degree {
		degree[i] = i % 3
	}
	fig.AddTrace(templates.VerticesWithColour(xs, ys, degree))
	templates.SetEqualAxis(fig)
	return fig, nil
}

func demoContour() (*plot.Figure, error) {
	x, y, z := grid(func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) })
	fig := plot.New("contour")
	fig.AddTrace(templates.Contour(x, y, z, true, false))
	return fig, nil
}

func demoHeatmap() (*plot.Figure, error) {
	x, y, z := grid(func(x, y float64) float64 { return math.Exp(-(x*x + y*y) / 4) })
	fig := plot.New("heatmap")
	fig.AddTrace(templates.Heatmap(x, y, z))
	templates.SetEqualAxis(fig)
	return fig, nil
}

// grid samples f on a 20x20 grid over [-3, 3]² as flat x, y, z series.
func grid(f func(x, y float64) float64) (x, y, z []float64) {
	axis := linspace(-3, 3, 20)
	for _, yv := range axis {
		for _, xv := range axis {
			x = append(x, xv)
			y = append(y, yv)
			z = append(z, f(xv, yv))
		}
	}
	return x, y, z
}

func demoBoxplot() (*plot.Figure, error) {
	fig := plot.New("boxplot")
	groups := []string{"a", "a", "a", "b", "b", "b"}
	templates.Boxplot(fig, []templates.Box{
		{Name: "baseline", X: groups, Y: []float64{1.2, 1.9, 1.4, 2.2, 2.8, 2.5}},
		{Name: "tuned", X: groups, Y: []float64{0.8, 1.1, 0.9, 1.7, 1.5, 1.9}},
	})
	return fig, nil
}

func demoQuiver() (*plot.Figure, error) {
	var x, y, u, v []float64
	for _, yv := range linspace(-2, 2, 9) {
		for _, xv := range linspace(-2, 2, 9) {
			x, y = append(x, xv), append(y, yv)
			u, v = append(u, -yv), append(v, xv)
		}
	}
	fig := plot.New("quiver")
	fig.AddTrace(templates.Quiver(x, y, u, v))
	templates.SetEqualAxis(fig)
	return fig, nil
}

func demoCone() (*plot.Figure, error) {
	var x, y, z, u, v, w []float64
	for _, zv := range linspace(-1, 1, 3) {
		for _, yv := range linspace(-1, 1, 4) {
			for _, xv := range linspace(-1, 1, 4) {
				x, y, z = append(x, xv), append(y, yv), append(z, zv)
				u, v, w = append(u, -yv), append(v, xv), append(w, 0.3)
			}
		}
	}
	fig := plot.New("cone")
	fig.AddTrace(templates.Cone(x, y, z, u, v, w))
	fig.AddTrace(templates.VectorField3D(x, y, z, u, v, w, 0.2))
	return fig, nil
}
