// Package hosts reads and updates a hosts(5) style override table.
package hosts

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const maxLineSize = 1 << 20

// Options tunes how the table rewrites records and URLs.
type Options struct {
	// PreserveAliases keeps the trailing tokens of a record that is
	// rewritten. By default the whole line becomes "<ip> <domain>".
	PreserveAliases bool

	// StructuredRewrite makes ResolveURL replace only the URL's host
	// component. By default every occurrence of the host in the URL text is
	// replaced.
	StructuredRewrite bool
}

// Table reads and updates a hosts file. Updates are serialised within the
// process; OSFile adds an advisory lock across processes.
type Table struct {
	file File
	opts Options
	log  *slog.Logger

	mu sync.Mutex
}

// NewTable creates a Table over file.
func NewTable(log *slog.Logger, file File, opts Options) *Table {
	if log == nil {
		log = slog.Default()
	}
	return &Table{
		file: file,
		opts: opts,
		log:  log.With("module", "hosts", "path", file.Path()),
	}
}

// File returns the underlying file.
func (t *Table) File() File {
	return t.file
}

// Update pins domain to targetIP. An invalid targetIP yields a Rejected
// outcome without touching the file. An existing record is rewritten in
// place; a missing one is appended. If the first matching record already
// carries targetIP the call returns Unchanged without writing.
func (t *Table) Update(ctx context.Context, domain, targetIP string) (Outcome, error) {
	if !IsValidIPv4(targetIP) {
		t.log.Warn("rejected update", "domain", domain, "ip", targetIP)
		return rejected(domain, targetIP), nil
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.file.EnsureWritable(); err != nil {
		return Outcome{}, err
	}

	h, err := t.file.OpenReadWrite()
	if err != nil {
		return Outcome{}, err
	}
	defer h.Close()

	var (
		lines    []string
		found    bool
		previous string
	)

	sc := newLineScanner(h)
	for sc.Scan() {
		line := sc.Text()

		if isComment(line) {
			lines = append(lines, line)
			continue
		}

		fields, ok := matchRecord(line, domain)
		if !ok {
			lines = append(lines, line)
			continue
		}

		if fields[0] == targetIP {
			t.log.Debug("record already correct", "domain", domain, "ip", targetIP)
			return unchanged(domain, targetIP), nil
		}

		if found {
			// An earlier record was already rewritten; keep only that one.
			continue
		}

		found = true
		previous = fields[0]
		lines = append(lines, t.rewrite(fields, targetIP, domain))
	}

	if err := sc.Err(); err != nil {
		return Outcome{}, ioFailure("read", t.file.Path(), err)
	}

	kind := Updated
	if !found {
		kind = Inserted
		lines = append(lines, targetIP+" "+domain)
	}

	if err := h.Replace([]byte(strings.Join(lines, "\n"))); err != nil {
		return Outcome{}, err
	}

	t.log.Info("hosts record written", "domain", domain, "ip", targetIP, "previous", previous, "kind", kind)
	return changed(kind, domain, targetIP, previous), nil
}

// Lookup returns the address of the first record for domain.
func (t *Table) Lookup(ctx context.Context, domain string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h, err := t.file.OpenRead()
	if err != nil {
		return "", err
	}
	defer h.Close()

	return t.find(h, domain)
}

func (t *Table) find(r io.Reader, domain string) (string, error) {
	sc := newLineScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if isComment(line) {
			continue
		}
		if fields, ok := matchRecord(line, domain); ok {
			return fields[0], nil
		}
	}

	if err := sc.Err(); err != nil {
		return "", ioFailure("read", t.file.Path(), err)
	}

	return "", &NotFoundError{Host: domain}
}

func (t *Table) rewrite(fields []string, targetIP, domain string) string {
	line := targetIP + " " + domain
	if t.opts.PreserveAliases && len(fields) > 2 {
		line += " " + strings.Join(fields[2:], " ")
	}
	return line
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#")
}

// matchRecord reports whether line is a record whose hostname token is
// exactly domain. The substring test only skips lines cheaply; the token
// comparison decides.
func matchRecord(line, domain string) ([]string, bool) {
	if !strings.Contains(line, domain) {
		return nil, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] != domain {
		return nil, false
	}

	return fields, true
}
