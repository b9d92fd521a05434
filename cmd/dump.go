package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/term"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/session"
	"github.com/thiagokokada/branchview/internal/source"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// dumpPayload is the -dump json document.
type dumpPayload struct {
	Session  string        `json:"session"`
	Status   string        `json:"status"`
	Base     string        `json:"base"`
	Branches []string      `json:"branches"`
	Selected []string      `json:"selected"`
	Visible  []string      `json:"visible"`
	Mode     graph.Mode    `json:"mode"`
	Depth    int           `json:"depth"`
	Query    string        `json:"query,omitempty"`
	Layout   *graph.Layout `json:"layout"`
}

// dump loads one session without a UI and prints its layout.
func dump(ctx context.Context, src source.Source, opts session.Options, format string, w io.Writer) error {
	opts.Dispatch = session.Inline
	sess := session.New(src, opts)
	defer sess.Close()
	if err := sess.Load(ctx); err != nil {
		return err
	}
	sess.Wait()
	snap := sess.Snapshot()
	if snap.Status == session.StatusError {
		return snap.Err
	}
	if format == dumpText {
		_, err := io.WriteString(w, snap.Layout.Text())
		return err
	}
	data, err := json.MarshalIndent(payloadFor(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')
	if isTerminal(w) {
		return writeColored(w, string(data))
	}
	_, err = w.Write(data)
	return err
}

func payloadFor(snap session.Snapshot) dumpPayload {
	return dumpPayload{
		Session:  snap.ID,
		Status:   snap.Status.String(),
		Base:     snap.Base,
		Branches: snap.Branches,
		Selected: snap.Visibility.Selected(),
		Visible:  snap.Visibility.Visible(),
		Mode:     snap.Mode,
		Depth:    snap.Depth,
		Query:    snap.Query,
		Layout:   snap.Layout,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeColored(w io.Writer, text string) error {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get("github-dark")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		_, werr := io.WriteString(w, text)
		return werr
	}
	return formatter.Format(w, style, iterator)
}
