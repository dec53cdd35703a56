package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plotmsg/pkg/archive"
	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
	"github.com/matzehuels/plotmsg/pkg/transport"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

// testCLI returns a CLI whose sockets are in-memory recorders and whose
// config and archive live in temporary directories.
func testCLI(t *testing.T) (*CLI, *transport.Recorder) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("PLOTMSG_ADDRESS", "")
	t.Setenv("PLOTMSG_TRANSPORT", "")

	rec := transport.NewRecorder()
	c := New(io.Discard, log.InfoLevel)
	c.newSocket = func(context.Context, transport.Kind, transport.MQTTOptions) (transport.Socket, error) {
		return rec, nil
	}
	return c, rec
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func decodeFigure(t *testing.T, msg []byte) *wire.Figure {
	t.Helper()
	env, err := wire.Unmarshal(msg)
	require.NoError(t, err)
	require.NotNil(t, env.Figure, "expected a figure message")
	return env.Figure
}

func TestSendFromFlags(t *testing.T) {
	c, rec := testCLI(t)

	out, err := execute(t, c, "send", "--warmup", "0",
		"--uuid", "demo", "--func", "Scatter",
		"--set", "x=[1, 2, 3]", "--set", "mode=markers", "--set", "marker.size=10",
		"--command", "update_layout")
	require.NoError(t, err)
	assert.Contains(t, out, "Published figure demo")

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{transport.DefaultAddress}, rec.Listens())

	fig := decodeFigure(t, msgs[0])
	assert.Equal(t, "demo", fig.UUID)
	require.Len(t, fig.Traces, 1)
	assert.Equal(t, "Scatter", fig.Traces[0].MethodFunc)
	assert.Equal(t, wire.GraphObjects, fig.Traces[0].Method)

	kw := fig.Traces[0].Kwargs
	x, _ := kw.Get("x")
	assert.Equal(t, []int64{1, 2, 3}, x.Ints())
	marker, _ := kw.Get("marker")
	size, _ := marker.Dict().Get("size")
	assert.Equal(t, int64(10), size.Int())

	require.Len(t, fig.Commands, 1)
	assert.Equal(t, "update_layout", fig.Commands[0].Func)
	assert.Equal(t, 0, fig.Commands[0].Kwargs.Len())
}

func TestSendKwargsFileAndMethod(t *testing.T) {
	c, rec := testCLI(t)
	kwargs := writeFile(t, "kw.json", `{"x": [1, 2], "y": [0.5, 1.5], "name": "pts"}`)
	layout := writeFile(t, "layout.yaml", "title: hello\nshowlegend: false\n")

	_, err := execute(t, c, "send", "--warmup", "0", "--uuid", "q",
		"--method", "ff", "--func", "create_quiver", "--kwargs", kwargs,
		"--command", "update_layout="+layout)
	require.NoError(t, err)

	fig := decodeFigure(t, rec.Messages()[0])
	assert.Equal(t, wire.FigureFactory, fig.Traces[0].Method)
	y, _ := fig.Traces[0].Kwargs.Get("y")
	assert.Equal(t, []float64{0.5, 1.5}, y.Doubles())

	title, _ := fig.Commands[0].Kwargs.Get("title")
	assert.Equal(t, "hello", title.Str())
	legend, _ := fig.Commands[0].Kwargs.Get("showlegend")
	assert.Equal(t, dict.KindBool, legend.Kind())
}

func TestSendFigureDocument(t *testing.T) {
	c, _ := testCLI(t)
	doc := writeFile(t, "fig.yaml", `
uuid: fromfile
traces:
  - func: Scatter
    kwargs: {x: [1, 2, 3], y: [3, null, 1]}
  - method: custom
    func: vector_field
    kwargs: {scale: 0.5}
commands:
  - func: update_layout
    kwargs: {title: doc}
`)
	out := filepath.Join(t.TempDir(), "fig.pb")

	stdout, err := execute(t, c, "send", "--figure", doc, "--dry-run", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Encoded figure fromfile")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	fig := decodeFigure(t, data)
	require.Len(t, fig.Traces, 2)
	assert.Equal(t, wire.Custom, fig.Traces[1].Method)

	y, _ := fig.Traces[0].Kwargs.Get("y")
	require.Equal(t, dict.KindAnySeries, y.Kind())
	assert.True(t, y.Anys()[1].IsNull())
}

func TestSendDictionary(t *testing.T) {
	c, rec := testCLI(t)

	out, err := execute(t, c, "send", "--warmup", "0", "--dict", "--set", "a=1", "--set", "b=text")
	require.NoError(t, err)
	assert.Contains(t, out, "Published dict")

	env, err := wire.Unmarshal(rec.Messages()[0])
	require.NoError(t, err)
	require.NotNil(t, env.Dict)
	assert.Equal(t, []string{"a", "b"}, env.Dict.Keys())
}

func TestSendRecord(t *testing.T) {
	c, rec := testCLI(t)

	out, err := execute(t, c, "send", "--warmup", "0", "--uuid", "kept", "--func", "Scatter", "--record")
	require.NoError(t, err)

	key := wire.Digest(rec.Messages()[0])
	assert.Contains(t, out, key[:12])

	store, err := archive.Open(context.Background(), c.cfg.Archive.Backend, c.cfg.Archive.Path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, transport.DefaultAddress, got.Source)
}

func TestSendErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code perr.Code
	}{
		{"kwargs without func", []string{"--set", "a=1"}, perr.ErrCodeInvalidInput},
		{"bad assignment", []string{"--func", "Scatter", "--set", "novalue"}, perr.ErrCodeInvalidInput},
		{"bad method", []string{"--func", "Scatter", "--method", "px"}, perr.ErrCodeInvalidInput},
		{"missing kwargs file", []string{"--func", "Scatter", "--kwargs", "/nonexistent/kw.yaml"}, perr.ErrCodeInvalidInput},
		{"bad transport", []string{"--transport", "udp"}, perr.ErrCodeInvalidConfig},
		{"bad address", []string{"--address", "localhost"}, perr.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := testCLI(t)
			_, err := execute(t, c, append([]string{"send", "--warmup", "0"}, tt.args...)...)
			require.Error(t, err)
			assert.True(t, perr.Is(err, tt.code), "got %v", err)
			assert.Empty(t, rec.Messages())
		})
	}
}

func TestSendTransportFailure(t *testing.T) {
	c, rec := testCLI(t)
	rec.Err = assert.AnError

	_, err := execute(t, c, "send", "--warmup", "0", "--func", "Scatter")
	require.Error(t, err)
	assert.True(t, perr.Is(err, perr.ErrCodeTransport))
}

func TestDemo(t *testing.T) {
	c, rec := testCLI(t)

	out, err := execute(t, c, "demo", "--warmup", "0", "--delay", "0", "graph", "boxplot")
	require.NoError(t, err)
	assert.Contains(t, out, "figure graph")
	assert.Contains(t, out, "figure boxplot")

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	graph := decodeFigure(t, msgs[0])
	require.Len(t, graph.Traces, 2)
	x, _ := graph.Traces[0].Kwargs.Get("x")
	assert.Equal(t, dict.KindAnySeries, x.Kind(), "edges use null gaps")
}

func TestDemoAllBuild(t *testing.T) {
	for _, name := range demoNames() {
		t.Run(name, func(t *testing.T) {
			fig, err := demos[name]()
			require.NoError(t, err)
			assert.Equal(t, name, fig.UUID())
			assert.Positive(t, fig.Len())
			_, err = fig.Encode()
			assert.NoError(t, err)
		})
	}
}

func TestDemoRejectsUnknown(t *testing.T) {
	c, _ := testCLI(t)
	_, err := execute(t, c, "demo", "nope")
	assert.Error(t, err)
}

func TestInspectFile(t *testing.T) {
	c, _ := testCLI(t)
	fig := plot.New("inspect-me")
	fig.AddTraceOf(plot.GraphObjects, "Scatter", dict.New("x", []int{1, 2}))
	fig.AddCommand("update_layout", dict.New("title", "t"))
	payload, err := fig.Encode()
	require.NoError(t, err)
	path := writeFile(t, "fig.pb", string(payload))

	out, err := execute(t, c, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "inspect-me")
	assert.Contains(t, out, "Trace 0")
	assert.Contains(t, out, "Scatter")
	assert.Contains(t, out, "Command 0")
	assert.Contains(t, out, wire.Digest(payload))

	out, err = execute(t, c, "inspect", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"uuid": "inspect-me"`)
	assert.Contains(t, out, `"method": "graph_objects"`)
	assert.Contains(t, out, `"title": "t"`)
}

func TestInspectArchiveKey(t *testing.T) {
	c, rec := testCLI(t)
	_, err := execute(t, c, "send", "--warmup", "0", "--uuid", "stored", "--func", "Bar", "--record")
	require.NoError(t, err)
	key := wire.Digest(rec.Messages()[0])

	out, err := execute(t, c, "inspect", key[:10])
	require.NoError(t, err)
	assert.Contains(t, out, "stored")
	assert.Contains(t, out, transport.DefaultAddress)
}

func TestInspectMissing(t *testing.T) {
	c, _ := testCLI(t)
	_, err := execute(t, c, "inspect", "no-such-file.pb")
	require.Error(t, err)
	assert.True(t, perr.Is(err, perr.ErrCodeNotFound))
}

func TestInspectMalformed(t *testing.T) {
	c, _ := testCLI(t)
	path := writeFile(t, "junk.pb", "\xff\xff\xff")
	_, err := execute(t, c, "inspect", path)
	require.Error(t, err)
	assert.True(t, perr.Is(err, perr.ErrCodeMalformedMessage))
}

func TestReplay(t *testing.T) {
	c, rec := testCLI(t)
	for _, id := range []string{"one", "two", "three"} {
		_, err := execute(t, c, "send", "--warmup", "0", "--uuid", id, "--func", "Scatter", "--record")
		require.NoError(t, err)
	}
	sent := rec.Messages()
	require.Len(t, sent, 3)

	out, err := execute(t, c, "replay", "--warmup", "0", wire.Digest(sent[2])[:8], wire.Digest(sent[0]))
	require.NoError(t, err)
	assert.Contains(t, out, "figure three")

	msgs := rec.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, sent[2], msgs[3])
	assert.Equal(t, sent[0], msgs[4])

	_, err = execute(t, c, "replay", "--warmup", "0", "--latest", "2")
	require.NoError(t, err)
	assert.Len(t, rec.Messages(), 7)
}

func TestReplayUnknownKey(t *testing.T) {
	c, _ := testCLI(t)
	_, err := execute(t, c, "replay", "--warmup", "0", strings.Repeat("a", 64))
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestArchiveCommands(t *testing.T) {
	c, rec := testCLI(t)
	_, err := execute(t, c, "send", "--warmup", "0", "--uuid", "listed", "--func", "Scatter", "--record")
	require.NoError(t, err)
	key := wire.Digest(rec.Messages()[0])

	out, err := execute(t, c, "archive", "list")
	require.NoError(t, err)
	assert.Contains(t, out, shortKey(key))
	assert.Contains(t, out, "listed")

	out, err = execute(t, c, "archive", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CACHE_HOME"), "plotmsg", "archive"), strings.TrimSpace(out))

	_, err = execute(t, c, "archive", "rm", key[:8])
	require.NoError(t, err)
	_, err = execute(t, c, "inspect", key)
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	c, _ := testCLI(t)
	path := writeFile(t, "config.toml", "[publisher]\naddress = \"tcp://127.0.0.1:9999\"\n")

	out, err := execute(t, c, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "tcp://127.0.0.1:9999")
}

func TestConfigFileDrivesSend(t *testing.T) {
	c, rec := testCLI(t)
	path := writeFile(t, "config.toml", "[publisher]\naddress = \"tcp://127.0.0.1:9999\"\nwarmup = \"0s\"\nmode = \"block\"\n")

	_, err := execute(t, c, "--config", path, "send", "--func", "Scatter")
	require.NoError(t, err)
	assert.Equal(t, []string{"tcp://127.0.0.1:9999"}, rec.Listens())
	assert.Equal(t, []transport.Mode{transport.ModeBlock}, rec.Modes())
}

func TestCompletion(t *testing.T) {
	c, _ := testCLI(t)
	out, err := execute(t, c, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "plotmsg")
}

func TestVersionReportsSchema(t *testing.T) {
	c, _ := testCLI(t)
	out, err := execute(t, c, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "plotmsg version")
	assert.Contains(t, out, "schema: PlotMsgProto")
}
