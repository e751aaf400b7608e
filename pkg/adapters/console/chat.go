// Package console runs the conversation as a local line-based chat.
//
// Lines are sent as text messages, except for the meta commands:
//
//	:upload <path>    send a .csv or .json file
//	:press <n|token>  press the n-th button of the last menu, or a raw token
//	:quit             leave the chat
//
// A literal \n in a line is turned into a newline, which is how two-line
// filter input is typed.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/aretw0/datadesk/pkg/ports"
)

// DefaultUserID identifies the console user in the session store.
const DefaultUserID = "console"

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// Chat is an interactive console session.
type Chat struct {
	dispatcher ports.Dispatcher
	in         *bufio.Reader
	out        io.Writer
	userID     string
	render     Renderer
	outputDir  string
	readFile   func(string) ([]byte, error)
	logger     *zap.Logger

	menu navigation.Frame
}

// Option configures a Chat.
type Option func(*Chat)

func WithUserID(id string) Option {
	return func(c *Chat) {
		if id != "" {
			c.userID = id
		}
	}
}

// WithRenderer renders menus and messages as markdown. Without one the chat
// prints plain text.
func WithRenderer(r Renderer) Option {
	return func(c *Chat) {
		c.render = r
	}
}

// WithOutputDir sets where exported files are written.
func WithOutputDir(dir string) Option {
	return func(c *Chat) {
		c.outputDir = dir
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Chat) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a chat reading from in and writing to out.
func New(dispatcher ports.Dispatcher, in io.Reader, out io.Writer, opts ...Option) *Chat {
	c := &Chat{
		dispatcher: dispatcher,
		in:         bufio.NewReader(in),
		out:        out,
		userID:     DefaultUserID,
		outputDir:  ".",
		readFile:   os.ReadFile,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var errQuit = errors.New("quit")

// Run reads lines until EOF, :quit or ctx is done.
func (c *Chat) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			if herr := c.handleLine(ctx, line); herr != nil {
				if errors.Is(herr, errQuit) {
					return nil
				}
				return herr
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Chat) handleLine(ctx context.Context, line string) error {
	ev, err := c.parse(line)
	if errors.Is(err, errQuit) {
		return err
	}
	if err != nil {
		fmt.Fprintf(c.out, "! %v\n", err)
		return nil
	}

	cmds, err := c.dispatcher.Dispatch(ctx, ev)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		c.show(cmd)
	}
	return nil
}

// parse maps one input line to an event.
func (c *Chat) parse(line string) (domain.Event, error) {
	if !strings.HasPrefix(line, ":") {
		return domain.TextReceived(c.userID, strings.ReplaceAll(line, `\n`, "\n")), nil
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "quit", "q":
		return domain.Event{}, errQuit
	case "upload":
		if arg == "" {
			return domain.Event{}, errors.New("usage: :upload <path>")
		}
		data, err := c.readFile(arg)
		if err != nil {
			return domain.Event{}, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		return domain.DatasetUploaded(c.userID, data, filepath.Base(arg)), nil
	case "press", "p":
		token, err := c.resolveChoice(arg)
		if err != nil {
			return domain.Event{}, err
		}
		return domain.ActionSelected(c.userID, token), nil
	default:
		return domain.Event{}, fmt.Errorf("unknown command :%s (use :upload, :press or :quit)", name)
	}
}

// resolveChoice accepts a 1-based button number of the last menu or a raw
// token.
func (c *Chat) resolveChoice(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("usage: :press <number|token>")
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	choices := c.menu.Choices()
	if n < 1 || n > len(choices) {
		return "", fmt.Errorf("no button %d in the current menu", n)
	}
	return choices[n-1].Token, nil
}

func (c *Chat) show(cmd domain.Command) {
	switch p := cmd.Payload.(type) {
	case domain.RenderMenu:
		c.menu = p.Frame
		c.print(menuMarkdown(p.Frame))
	case domain.PlainText:
		text := p.Text
		if len(p.Suggestions) > 0 {
			text += "\n\n_Try: " + strings.Join(p.Suggestions, ", ") + "_"
		}
		c.print(text)
	case domain.FileAttachment:
		path := filepath.Join(c.outputDir, p.Name)
		if err := os.WriteFile(path, p.Data, 0o644); err != nil {
			c.logger.Error("Failed to save export", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(c.out, "! cannot save %s: %v\n", path, err)
			return
		}
		c.print(fmt.Sprintf("%s: saved `%s` (%d bytes)", p.Caption, path, len(p.Data)))
	}
}

func (c *Chat) print(markdown string) {
	if c.render != nil {
		if out, err := c.render(markdown); err == nil {
			fmt.Fprint(c.out, out)
			return
		}
	}
	fmt.Fprintln(c.out, markdown)
}

// menuMarkdown numbers the buttons so they can be pressed with :press n.
func menuMarkdown(f navigation.Frame) string {
	var sb strings.Builder
	sb.WriteString(f.Prompt + "\n\n")
	for i, ch := range f.Choices() {
		fmt.Fprintf(&sb, "%d. %s `%s`\n", i+1, ch.Label, ch.Token)
	}
	return sb.String()
}
