package main

import (
	"bufio"
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/samber/lo"
)

const consoleHelp = `Commands:
  message <user> <text>   send a message
  contacts                refresh and list contacts
  add <user>              add a contact
  del <user>              remove a contact
  users                   refresh and list known users
  history [user]          saved messages, with one user or everyone
  search <words>          search saved messages
  help                    this help
  exit                    disconnect`

// session is the part of the transport the console drives.
type session interface {
	Name() string
	SendMessage(to, text string) error
	AddContact(contact string) error
	RemoveContact(contact string) error
	UsersRequest() ([]string, error)
	ContactsRequest() ([]string, error)
	Messages() <-chan domain.Frame
	ConnectionLost() <-chan struct{}
}

type console struct {
	mu      sync.Mutex
	out     io.Writer
	session session
	storage contract.IClientStorage
}

func newConsole(out io.Writer, session session, storage contract.IClientStorage) *console {
	return &console{out: out, session: session, storage: storage}
}

// Run prints incoming messages while reading commands, until exit, end of input,
// a lost connection or ctx cancellation.
func (c *console) Run(ctx context.Context, in io.Reader) {
	c.printf("Connected as %s\n%s\n", color.FgGreen.Render(c.session.Name()), consoleHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.session.ConnectionLost():
			c.printf("%s\n", color.FgRed.Render("Connection to the server lost"))
			return
		case frame := <-c.session.Messages():
			c.printf("%s %s\n", color.New(color.FgCyan, color.OpBold).Render(frame.From+":"), frame.Text)
		case line, ok := <-lines:
			if !ok || !c.Execute(ctx, line) {
				return
			}
		}
	}
}

// Execute runs one command line and reports whether the console keeps going.
func (c *console) Execute(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch command {
	case "":
	case "message":
		to, text, _ := strings.Cut(rest, " ")
		err = c.message(to, strings.TrimSpace(text))
	case "contacts":
		err = c.list(c.session.ContactsRequest, "No contacts")
	case "users":
		err = c.list(c.session.UsersRequest, "No users")
	case "add":
		err = c.addContact(rest)
	case "del":
		err = c.removeContact(rest)
	case "history":
		err = c.history(rest)
	case "search":
		err = c.search(ctx, rest)
	case "help":
		c.printf("%s\n", consoleHelp)
	case "exit":
		return false
	default:
		c.printf("Unknown command %q, type help\n", command)
	}
	if err != nil {
		c.printf("%s %v\n", color.FgRed.Render("Error:"), err)
	}
	return true
}

func (c *console) message(to, text string) error {
	if to == "" || text == "" {
		c.printf("Usage: message <user> <text>\n")
		return nil
	}
	known, err := c.storage.CheckUser(to)
	if err != nil {
		return err
	}
	if !known {
		c.printf("%s is not a known user, refresh with users\n", to)
		return nil
	}
	return c.session.SendMessage(to, text)
}

func (c *console) addContact(contact string) error {
	if contact == "" {
		c.printf("Usage: add <user>\n")
		return nil
	}
	if err := c.session.AddContact(contact); err != nil {
		return err
	}
	c.printf("%s added\n", contact)
	return nil
}

func (c *console) removeContact(contact string) error {
	if contact == "" {
		c.printf("Usage: del <user>\n")
		return nil
	}
	found, err := c.storage.CheckContact(contact)
	if err != nil {
		return err
	}
	if !found {
		c.printf("%s is not a contact\n", contact)
		return nil
	}
	if err := c.session.RemoveContact(contact); err != nil {
		return err
	}
	c.printf("%s removed\n", contact)
	return nil
}

func (c *console) list(request func() ([]string, error), empty string) error {
	names, err := request()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		c.printf("%s\n", empty)
		return nil
	}
	c.printf("%s\n", strings.Join(names, "\n"))
	return nil
}

// history shows the messages exchanged with user, or every message when user is empty.
func (c *console) history(user string) error {
	var messages []domain.HistoryMessage
	if user == "" {
		all, err := c.storage.GetHistory(nil, nil)
		if err != nil {
			return err
		}
		messages = all
	} else {
		sent, err := c.storage.GetHistory(nil, &user)
		if err != nil {
			return err
		}
		received, err := c.storage.GetHistory(&user, nil)
		if err != nil {
			return err
		}
		messages = lo.UniqBy(append(sent, received...), func(m domain.HistoryMessage) string { return m.ID.String() })
		sort.SliceStable(messages, func(i, j int) bool { return messages[i].At.Before(messages[j].At) })
	}
	c.printMessages(messages)
	return nil
}

func (c *console) search(ctx context.Context, text string) error {
	if text == "" {
		c.printf("Usage: search <words>\n")
		return nil
	}
	found, err := c.storage.SearchHistory(ctx, text, 0)
	if err != nil {
		return err
	}
	c.printMessages(found)
	return nil
}

func (c *console) printMessages(messages []domain.HistoryMessage) {
	if len(messages) == 0 {
		c.printf("No messages\n")
		return
	}
	for _, m := range messages {
		c.printf("%s %s -> %s: %s\n",
			color.FgGray.Render(m.At.Local().Format(time.DateTime)),
			color.FgCyan.Render(m.From), color.FgCyan.Render(m.To), m.Text)
	}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
