package main

import (
	"bufio"
	"chat-relay/contract"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

const consoleHelp = `Commands:
  users            all known users
  connected        users online now
  loghist [name]   login history, of one user or everyone
  stats            messages sent and accepted per user
  help             this help
  exit             stop the server`

// console is the admin prompt of the server. It only reads storage.
type console struct {
	out     io.Writer
	storage contract.IServerStorage
	online  func() []string
}

func newConsole(out io.Writer, storage contract.IServerStorage, online func() []string) *console {
	return &console{out: out, storage: storage, online: online}
}

// Run reads commands until end of input or ctx cancellation. It reports whether
// the exit command was given.
func (c *console) Run(ctx context.Context, in io.Reader) bool {
	fmt.Fprintln(c.out, consoleHelp)
	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil && scanner.Scan() {
		if !c.Execute(scanner.Text()) {
			return true
		}
	}
	return false
}

// Execute runs one command line and reports whether the console keeps going.
func (c *console) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	var err error
	switch fields[0] {
	case "users":
		err = c.users()
	case "connected":
		err = c.connected()
	case "loghist":
		var name *string
		if len(fields) > 1 {
			name = &fields[1]
		}
		err = c.loginHistory(name)
	case "stats":
		err = c.stats()
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
	case "exit":
		fmt.Fprintln(c.out, "Stopping server")
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command %q, type help\n", fields[0])
	}
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	return true
}

func (c *console) users() error {
	users, err := c.storage.UsersList()
	if err != nil {
		return err
	}
	table := c.table("Name", "Last login")
	for _, user := range users {
		table.Append([]string{user.Name, formatTime(user.LastLogin)})
	}
	table.Render()
	return nil
}

func (c *console) connected() error {
	users, err := c.storage.ActiveUsersList()
	if err != nil {
		return err
	}
	table := c.table("Name", "IP", "Port", "Since")
	for _, user := range users {
		table.Append([]string{user.Name, user.IP, strconv.Itoa(user.Port), formatTime(user.LoginTime)})
	}
	table.Render()
	fmt.Fprintf(c.out, "%d session(s) registered\n", len(c.online()))
	return nil
}

func (c *console) loginHistory(name *string) error {
	history, err := c.storage.LoginHistory(name)
	if err != nil {
		return err
	}
	table := c.table("Name", "IP", "Port", "At")
	for _, login := range history {
		table.Append([]string{login.Name, login.IP, strconv.Itoa(login.Port), formatTime(login.At)})
	}
	table.Render()
	return nil
}

func (c *console) stats() error {
	stats, err := c.storage.MessageHistory()
	if err != nil {
		return err
	}
	table := c.table("Name", "Last login", "Sent", "Accepted")
	for _, stat := range stats {
		table.Append([]string{stat.Name, formatTime(stat.LastLogin), strconv.Itoa(stat.Sent), strconv.Itoa(stat.Accepted)})
	}
	table.Render()
	return nil
}

func (c *console) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
