package cli

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
)

// readFile reads path, or stdin when path is "-".
func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readKwargs loads a YAML or JSON mapping from path as a Dictionary.
func readKwargs(path string) (*dict.Dictionary, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "read %s", path)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "parse %s", path)
	}
	d, err := dict.FromMap(doc)
	if err != nil {
		return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "%s", path)
	}
	return d, nil
}

// applyAssignments sets each "key=value" pair on d. Dotted keys address
// nested dictionaries ("marker.size=10"). Values are parsed as YAML, so
// "[1, 2, 3]" is a series and "true" a bool.
func applyAssignments(d *dict.Dictionary, assignments []string) error {
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return perr.New(perr.ErrCodeInvalidInput, "expected key=value, got %q", a)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return perr.Wrap(perr.ErrCodeInvalidInput, err, "value of %s", key)
		}
		val, err := dict.FromDocument(v)
		if err != nil {
			return perr.Wrap(perr.ErrCodeInvalidInput, err, "value of %s", key)
		}

		path := strings.Split(key, ".")
		p := d.At(path[0])
		for _, k := range path[1:] {
			p = p.At(k)
		}
		if err := p.TrySet(val); err != nil {
			return err
		}
	}
	return nil
}

// figureDoc is the YAML/JSON shape accepted by "send --figure".
type figureDoc struct {
	UUID   string `yaml:"uuid"`
	Traces []struct {
		Method string         `yaml:"method"`
		Func   string         `yaml:"func"`
		Kwargs map[string]any `yaml:"kwargs"`
	} `yaml:"traces"`
	Commands []struct {
		Func   string         `yaml:"func"`
		Kwargs map[string]any `yaml:"kwargs"`
	} `yaml:"commands"`
}

// readFigure loads a figure description:
//
//	uuid: demo
//	traces:
//	  - method: go
//	    func: Scatter
//	    kwargs: {x: [1, 2, 3], y: [4, 5, 6]}
//	commands:
//	  - func: update_layout
//	    kwargs: {title: demo}
func readFigure(path string) (*plot.Figure, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "read %s", path)
	}
	var doc figureDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "parse %s", path)
	}

	fig := plot.New(doc.UUID)
	for i, tr := range doc.Traces {
		method, err := plot.ParseCreationMethod(tr.Method)
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "%s: trace %d", path, i)
		}
		if tr.Func == "" {
			return nil, perr.New(perr.ErrCodeInvalidInput, "%s: trace %d has no func", path, i)
		}
		kwargs, err := dict.FromMap(tr.Kwargs)
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "%s: trace %d", path, i)
		}
		fig.AddTraceOf(method, tr.Func, kwargs)
	}
	for i, cmd := range doc.Commands {
		if cmd.Func == "" {
			return nil, perr.New(perr.ErrCodeInvalidInput, "%s: command %d has no func", path, i)
		}
		kwargs, err := dict.FromMap(cmd.Kwargs)
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeInvalidInput, err, "%s: command %d", path, i)
		}
		fig.AddCommand(cmd.Func, kwargs)
	}
	return fig, nil
}

// parseCommandFlag splits "func=FILE" (or a bare "func") into the command
// name and its kwargs.
func parseCommandFlag(s string) (string, *dict.Dictionary, error) {
	fn, path, _ := strings.Cut(s, "=")
	if fn == "" {
		return "", nil, perr.New(perr.ErrCodeInvalidInput, "expected func=FILE, got %q", s)
	}
	if path == "" {
		return fn, dict.New(), nil
	}
	kwargs, err := readKwargs(path)
	if err != nil {
		return "", nil, err
	}
	return fn, kwargs, nil
}
